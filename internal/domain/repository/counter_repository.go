package repository

// CounterRepository contador monótono por (kind, year) para numeración de
// documentos y códigos de trazabilidad. Next debe ser increment-and-get
// atómico: dos llamadas concurrentes nunca devuelven el mismo valor.
type CounterRepository interface {
	Next(kind string, year int) (int64, error)
}
