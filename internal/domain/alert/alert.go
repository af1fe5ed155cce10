package alert

import "time"

// Level nivel de alerta derivado de una fecha de vencimiento/caducidad.
// Nunca se persiste: se calcula en cada lectura a partir de la fecha y el reloj.
type Level string

const (
	LevelNone     Level = "none"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Bucket tramo de antigüedad en días para reportes de envejecimiento de stock.
type Bucket string

const (
	Bucket0a30   Bucket = "0-30"
	Bucket30a60  Bucket = "30-60"
	Bucket60a90  Bucket = "60-90"
	Bucket90oMas Bucket = "90+"
)

// DaysUntil días completos desde now hasta date (negativo si ya pasó).
func DaysUntil(date, now time.Time) int {
	return int(date.Sub(now).Hours() / 24)
}

// ForDate calcula el nivel de alerta para una fecha de vencimiento.
// Regla compartida por lotes (caducidad), unidades (caducidad) y depósitos (dueDate):
// crítico si la fecha ya pasó, warning a 7 días o menos, info a 30 días o menos.
// Si date es nil el nivel es siempre none.
func ForDate(date *time.Time, now time.Time) Level {
	if date == nil {
		return LevelNone
	}
	if date.Before(now) {
		return LevelCritical
	}
	days := DaysUntil(*date, now)
	switch {
	case days <= 7:
		return LevelWarning
	case days <= 30:
		return LevelInfo
	default:
		return LevelNone
	}
}

// ForStatus igual que ForDate pero restringido a estados elegibles: fuera de
// ellos el nivel es none aunque la fecha esté vencida.
func ForStatus(date *time.Time, now time.Time, status string, eligible ...string) Level {
	for _, s := range eligible {
		if status == s {
			return ForDate(date, now)
		}
	}
	return LevelNone
}

// AgingBucket clasifica una fecha de recepción en tramos [0,30), [30,60), [60,90), [90,∞).
func AgingBucket(receivedDate, now time.Time) Bucket {
	days := int(now.Sub(receivedDate).Hours() / 24)
	switch {
	case days < 30:
		return Bucket0a30
	case days < 60:
		return Bucket30a60
	case days < 90:
		return Bucket60a90
	default:
		return Bucket90oMas
	}
}

// StockAgeLevel semáforo de antigüedad de stock: verde <60d, amarillo <90d, rojo ≥90d.
func StockAgeLevel(receivedDate, now time.Time) string {
	days := int(now.Sub(receivedDate).Hours() / 24)
	switch {
	case days < 60:
		return "green"
	case days < 90:
		return "yellow"
	default:
		return "red"
	}
}
