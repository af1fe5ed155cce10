package repository

import "github.com/jmsanzl/custodia-api/internal/domain/entity"

// UnitFilter filtros de listado de unidades: cliente, almacén, ubicación,
// artículo y estado. Campos vacíos no filtran.
type UnitFilter struct {
	ClientID    string
	WarehouseID string
	Location    string
	ArticleID   string
	LotID       string
	Status      string
	Limit       int
	Offset      int
}

// StockUnitRepository puerto de persistencia para unidades trazables (DIP).
type StockUnitRepository interface {
	Create(unit *entity.StockUnit) error
	GetByID(id string) (*entity.StockUnit, error)
	GetByCode(code string) (*entity.StockUnit, error)
	Update(unit *entity.StockUnit) error
	List(filter UnitFilter) ([]*entity.StockUnit, error)
	ListByIDs(ids []string) ([]*entity.StockUnit, error)
	// CountActiveByLot cuenta unidades en {available, reserved} del lote maestro.
	// Es la fuente autoritativa del remanente del lote.
	CountActiveByLot(lotID string) (int, error)
}
