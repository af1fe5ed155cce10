package postgres

import (
	"context"
	"fmt"

	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo contador monótono por (kind, year) sobre una fila dedicada.
// El upsert con incremento es atómico en PostgreSQL: dos llamadas concurrentes
// serializan sobre la fila y nunca devuelven el mismo valor. Sustituye el
// "SELECT max(...)" con incremento en memoria, que duplicaba números bajo
// creación concurrente.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next incrementa y devuelve el contador de (kind, year), creándolo en 1 si no existe.
func (r *CounterRepo) Next(kind string, year int) (int64, error) {
	query := `
		INSERT INTO sequence_counters (kind, year, n)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, year)
		DO UPDATE SET n = sequence_counters.n + 1
		RETURNING n`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, kind, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next counter %s/%d: %w", kind, year, err)
	}
	return n, nil
}
