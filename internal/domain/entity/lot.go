package entity

import (
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/alert"
)

// Tipos de lote: master agrupa unidades por origen; expo se talla de un master
// para exposición (referencia al padre, sin decremento de la cantidad declarada).
const (
	LotTypeMaster = "master"
	LotTypeExpo   = "expo"
)

// Estados de lote. depleted cuando el remanente llega a cero; expired cuando la
// caducidad pasó (independiente del remanente); blocked por intervención manual.
const (
	LotStatusActive   = "active"
	LotStatusExpired  = "expired"
	LotStatusDepleted = "depleted"
	LotStatusBlocked  = "blocked"
)

// Lot lote trazable de unidades de un mismo origen.
// RemainingQuantity es derivado: count(unidades en available/reserved con este
// lote maestro). Nunca se asigna desde fuera del recálculo.
type Lot struct {
	ID                string
	Code              string // único
	Type              string // master | expo
	ArticleID         string
	ParentLotID       string // solo lotes expo
	DeclaredQuantity  int
	RemainingQuantity int
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ExpiryDue indica si la caducidad ya pasó y el lote sigue activo (transición
// lazy pendiente de materializar).
func (l *Lot) ExpiryDue(now time.Time) bool {
	return l.Status == LotStatusActive && l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}

// ExpiryAlertLevel nivel de alerta de caducidad del lote.
func (l *Lot) ExpiryAlertLevel(now time.Time) alert.Level {
	return alert.ForStatus(l.ExpiryDate, now, l.Status, LotStatusActive)
}
