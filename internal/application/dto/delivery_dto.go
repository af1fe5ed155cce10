package dto

import (
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/entity"
)

// NoteItemRequest línea de albarán en peticiones.
type NoteItemRequest struct {
	ArticleID    string   `json:"article_id"`
	LotID        string   `json:"lot_id,omitempty"`
	Quantity     int      `json:"quantity"`
	StockUnitIDs []string `json:"stock_unit_ids,omitempty"`
}

// CreateNoteRequest body para POST /api/delivery-notes.
type CreateNoteRequest struct {
	Type        string            `json:"type"`
	Date        time.Time         `json:"date"`
	ClientID    string            `json:"client_id"`
	WarehouseID string            `json:"warehouse_id"`
	Items       []NoteItemRequest `json:"items"`
	Origin      string            `json:"origin,omitempty"`
	Destination string            `json:"destination,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// UpdateNoteRequest campos editables mientras el albarán no es terminal.
// Status solo admite avanzar a processing; completar y cancelar tienen
// endpoints propios.
type UpdateNoteRequest struct {
	Date        *time.Time        `json:"date,omitempty"`
	Items       []NoteItemRequest `json:"items,omitempty"`
	Origin      *string           `json:"origin,omitempty"`
	Destination *string           `json:"destination,omitempty"`
	Status      *string           `json:"status,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
}

// NoteResponse albarán tal como se expone por la API.
type NoteResponse struct {
	ID          string                `json:"id"`
	Number      string                `json:"number"`
	Type        string                `json:"type"`
	Date        time.Time             `json:"date"`
	ClientID    string                `json:"client_id"`
	WarehouseID string                `json:"warehouse_id"`
	Items       []entity.DeliveryItem `json:"items"`
	Origin      string                `json:"origin,omitempty"`
	Destination string                `json:"destination,omitempty"`
	Status      string                `json:"status"`
	TotalUnits  int                   `json:"total_units"`
	ProcessedBy string                `json:"processed_by,omitempty"`
	ProcessedAt *time.Time            `json:"processed_at,omitempty"`
	Notes       string                `json:"notes,omitempty"`
}

// NoteResponseFrom proyecta el albarán a su representación API.
func NoteResponseFrom(n *entity.DeliveryNote) *NoteResponse {
	return &NoteResponse{
		ID:          n.ID,
		Number:      n.Number,
		Type:        n.Type,
		Date:        n.Date,
		ClientID:    n.ClientID,
		WarehouseID: n.WarehouseID,
		Items:       n.Items,
		Origin:      n.Origin,
		Destination: n.Destination,
		Status:      n.Status,
		TotalUnits:  n.TotalUnits,
		ProcessedBy: n.ProcessedBy,
		ProcessedAt: n.ProcessedAt,
		Notes:       n.Notes,
	}
}
