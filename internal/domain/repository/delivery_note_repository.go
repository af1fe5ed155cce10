package repository

import "github.com/jmsanzl/custodia-api/internal/domain/entity"

// NoteFilter filtros de listado y estadísticas de albaranes.
type NoteFilter struct {
	Type        string
	Status      string
	ClientID    string
	WarehouseID string
	Limit       int
	Offset      int
}

// NoteStats agregados de albaranes (delegados al storage, sin lógica de negocio).
type NoteStats struct {
	ByStatus   map[string]int `json:"by_status"`
	ByType     map[string]int `json:"by_type"`
	TotalUnits int            `json:"total_units"`
}

// DeliveryNoteRepository puerto de persistencia para albaranes.
type DeliveryNoteRepository interface {
	Create(note *entity.DeliveryNote) error
	GetByID(id string) (*entity.DeliveryNote, error)
	GetByNumber(number string) (*entity.DeliveryNote, error)
	Update(note *entity.DeliveryNote) error
	List(filter NoteFilter) ([]*entity.DeliveryNote, error)
	Stats(filter NoteFilter) (*NoteStats, error)
}
