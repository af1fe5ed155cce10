package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// WarehouseUseCase catálogo de almacenes.
type WarehouseUseCase struct {
	warehouses repository.WarehouseRepository
	now        func() time.Time
}

// NewWarehouseUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewWarehouseUseCase(warehouses repository.WarehouseRepository, nowFn func() time.Time) *WarehouseUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &WarehouseUseCase{warehouses: warehouses, now: nowFn}
}

// Create da de alta un almacén.
func (uc *WarehouseUseCase) Create(name, address string) (*entity.Warehouse, error) {
	if name == "" {
		return nil, fmt.Errorf("crear almacén: nombre requerido: %w", domain.ErrValidation)
	}
	now := uc.now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.warehouses.Create(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// Get obtiene un almacén por ID.
func (uc *WarehouseUseCase) Get(id string) (*entity.Warehouse, error) {
	warehouse, err := uc.warehouses.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("almacén %s: %w", id, domain.ErrNotFound)
	}
	return warehouse, nil
}

// List lista almacenes.
func (uc *WarehouseUseCase) List(limit, offset int) ([]*entity.Warehouse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.warehouses.List(limit, offset)
}
