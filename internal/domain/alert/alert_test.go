package alert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmsanzl/custodia-api/internal/domain/alert"
)

// Reloj fijo para que los umbrales de días sean deterministas.
var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func datePtr(d time.Time) *time.Time { return &d }

func TestForDate_SinFecha(t *testing.T) {
	assert.Equal(t, alert.LevelNone, alert.ForDate(nil, now),
		"sin fecha de vencimiento el nivel debe ser none")
}

func TestForDate_Umbrales(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
		want alert.Level
	}{
		{"vencida ayer", now.AddDate(0, 0, -1), alert.LevelCritical},
		{"vencida hace un año", now.AddDate(-1, 0, 0), alert.LevelCritical},
		{"vence hoy mismo mas tarde", now.Add(2 * time.Hour), alert.LevelWarning},
		{"vence en 7 dias", now.AddDate(0, 0, 7), alert.LevelWarning},
		{"vence en 8 dias", now.AddDate(0, 0, 8), alert.LevelInfo},
		{"vence en 30 dias", now.AddDate(0, 0, 30), alert.LevelInfo},
		{"vence en 31 dias", now.AddDate(0, 0, 31), alert.LevelNone},
		{"vence en un año", now.AddDate(1, 0, 0), alert.LevelNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, alert.ForDate(datePtr(tc.date), now))
		})
	}
}

func TestForStatus_SoloEstadosElegibles(t *testing.T) {
	vencida := datePtr(now.AddDate(0, 0, -5))

	assert.Equal(t, alert.LevelCritical,
		alert.ForStatus(vencida, now, "available", "available", "reserved"),
		"en estado elegible la fecha vencida debe ser critical")

	assert.Equal(t, alert.LevelNone,
		alert.ForStatus(vencida, now, "shipped", "available", "reserved"),
		"fuera de los estados elegibles el nivel debe ser none aunque la fecha venció")

	assert.Equal(t, alert.LevelNone,
		alert.ForStatus(vencida, now, "closed", "active", "partial"))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 10, alert.DaysUntil(now.AddDate(0, 0, 10), now))
	assert.Equal(t, 0, alert.DaysUntil(now.Add(6*time.Hour), now))
	assert.Equal(t, -3, alert.DaysUntil(now.AddDate(0, 0, -3), now))
}

func TestAgingBucket_Tramos(t *testing.T) {
	cases := []struct {
		days int
		want alert.Bucket
	}{
		{0, alert.Bucket0a30},
		{29, alert.Bucket0a30},
		{30, alert.Bucket30a60},
		{59, alert.Bucket30a60},
		{60, alert.Bucket60a90},
		{89, alert.Bucket60a90},
		{90, alert.Bucket90oMas},
		{365, alert.Bucket90oMas},
	}
	for _, tc := range cases {
		received := now.AddDate(0, 0, -tc.days)
		assert.Equal(t, tc.want, alert.AgingBucket(received, now),
			"recepción hace %d días", tc.days)
	}
}

func TestStockAgeLevel_Semaforo(t *testing.T) {
	assert.Equal(t, "green", alert.StockAgeLevel(now.AddDate(0, 0, -10), now))
	assert.Equal(t, "green", alert.StockAgeLevel(now.AddDate(0, 0, -59), now))
	assert.Equal(t, "yellow", alert.StockAgeLevel(now.AddDate(0, 0, -60), now))
	assert.Equal(t, "yellow", alert.StockAgeLevel(now.AddDate(0, 0, -89), now))
	assert.Equal(t, "red", alert.StockAgeLevel(now.AddDate(0, 0, -90), now))
}
