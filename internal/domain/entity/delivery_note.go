package entity

import "time"

// Tipos de albarán y sus prefijos de numeración.
const (
	NoteTypeEntry    = "entry"    // ALB-E
	NoteTypeExit     = "exit"     // ALB-S
	NoteTypeTransfer = "transfer" // ALB-T
)

// Estados de albarán. completed y cancelled son terminales e inmutables;
// las transiciones solo avanzan (salvo a cancelled).
const (
	NoteStatusPending    = "pending"
	NoteStatusProcessing = "processing"
	NoteStatusCompleted  = "completed"
	NoteStatusCancelled  = "cancelled"
)

// NotePrefix devuelve el prefijo de numeración para un tipo de albarán
// ("" si el tipo no es válido).
func NotePrefix(noteType string) string {
	switch noteType {
	case NoteTypeEntry:
		return "ALB-E"
	case NoteTypeExit:
		return "ALB-S"
	case NoteTypeTransfer:
		return "ALB-T"
	}
	return ""
}

// DeliveryItem línea de albarán: artículo, lote, cantidad y opcionalmente las
// unidades trazables concretas que ampara.
type DeliveryItem struct {
	ArticleID    string   `json:"article_id"`
	LotID        string   `json:"lot_id,omitempty"`
	Quantity     int      `json:"quantity"`
	StockUnitIDs []string `json:"stock_unit_ids,omitempty"`
}

// DeliveryNote documento de entrada, salida o traslado físico de mercancía.
// TotalUnits es derivado: suma de item.Quantity, recalculado antes de cada persist.
type DeliveryNote struct {
	ID          string
	Number      string // <prefijo>-<año>-<secuencia>, único
	Type        string
	Date        time.Time
	ClientID    string
	WarehouseID string
	Items       []DeliveryItem
	Origin      string
	Destination string
	Status      string
	TotalUnits  int
	ProcessedBy string
	ProcessedAt *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecomputeTotalUnits recalcula TotalUnits a partir de las líneas.
func (n *DeliveryNote) RecomputeTotalUnits() {
	total := 0
	for _, it := range n.Items {
		total += it.Quantity
	}
	n.TotalUnits = total
}

// IsTerminal indica si el albarán es inmutable (completed/cancelled).
func (n *DeliveryNote) IsTerminal() bool {
	return n.Status == NoteStatusCompleted || n.Status == NoteStatusCancelled
}
