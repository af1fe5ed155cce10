package repository

import (
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/entity"
)

// LotRepository puerto de persistencia para lotes.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	GetByCode(code string) (*entity.Lot, error)
	Update(lot *entity.Lot) error
	List(limit, offset int) ([]*entity.Lot, error)
	// ExpiringBefore lotes activos con caducidad anterior a la fecha dada.
	ExpiringBefore(deadline time.Time) ([]*entity.Lot, error)
	// Expired lotes ya caducados (estado expired o caducidad pasada aún activa).
	Expired(now time.Time) ([]*entity.Lot, error)
}
