package dto

import (
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/alert"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
)

// LocationRequest ubicación destino/origen en peticiones.
type LocationRequest struct {
	ClientID    string `json:"client_id"`
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
}

// CreateUnitsRequest body para POST /api/stock-units. Quantity unidades se
// registran bajo el mismo lote maestro y ubicación (alta en bloque).
type CreateUnitsRequest struct {
	ArticleID    string          `json:"article_id"`
	LotMasterID  string          `json:"lot_master_id"`
	LotExpoID    string          `json:"lot_expo_id,omitempty"`
	OriginDocID  string          `json:"origin_doc_id,omitempty"`
	Quantity     int             `json:"quantity"`
	Location     LocationRequest `json:"location"`
	ReceivedDate time.Time       `json:"received_date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// MoveUnitRequest body para POST /api/stock-units/:id/move.
type MoveUnitRequest struct {
	Location LocationRequest `json:"location"`
	Notes    string          `json:"notes,omitempty"`
}

// UnitActionRequest body para reserve/release/damage.
type UnitActionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ShipUnitRequest body para POST /api/stock-units/:id/ship.
type ShipUnitRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// UnitResponse unidad con sus campos derivados (nunca persistidos).
type UnitResponse struct {
	ID                 string                 `json:"id"`
	Code               string                 `json:"code"`
	ArticleID          string                 `json:"article_id"`
	LotMasterID        string                 `json:"lot_master_id"`
	LotExpoID          string                 `json:"lot_expo_id,omitempty"`
	OriginDocID        string                 `json:"origin_doc_id,omitempty"`
	Location           entity.Location        `json:"location"`
	Status             string                 `json:"status"`
	Movements          []entity.MovementEntry `json:"movements"`
	ReceivedDate       time.Time              `json:"received_date"`
	ExpiryDate         *time.Time             `json:"expiry_date,omitempty"`
	LastMovementAt     time.Time              `json:"last_movement_at"`
	StockAge           int                    `json:"stock_age"`
	DaysUntilExpiry    *int                   `json:"days_until_expiry,omitempty"`
	StockAgeAlertLevel string                 `json:"stock_age_alert_level"`
	ExpiryAlertLevel   alert.Level            `json:"expiry_alert_level"`
}

// UnitResponseFrom proyecta la entidad con los derivados calculados a now.
func UnitResponseFrom(u *entity.StockUnit, now time.Time) *UnitResponse {
	return &UnitResponse{
		ID:                 u.ID,
		Code:               u.Code,
		ArticleID:          u.ArticleID,
		LotMasterID:        u.LotMasterID,
		LotExpoID:          u.LotExpoID,
		OriginDocID:        u.OriginDocID,
		Location:           u.Location,
		Status:             u.Status,
		Movements:          u.Movements,
		ReceivedDate:       u.ReceivedDate,
		ExpiryDate:         u.ExpiryDate,
		LastMovementAt:     u.LastMovementAt(),
		StockAge:           u.StockAge(now),
		DaysUntilExpiry:    u.DaysUntilExpiry(now),
		StockAgeAlertLevel: u.StockAgeAlertLevel(now),
		ExpiryAlertLevel:   u.ExpiryAlertLevel(now),
	}
}

// CreateLotRequest body para POST /api/lots (lote maestro).
type CreateLotRequest struct {
	Code              string     `json:"code"`
	ArticleID         string     `json:"article_id"`
	Quantity          int        `json:"quantity"`
	ManufacturingDate *time.Time `json:"manufacturing_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
}

// CreateExpoLotRequest body para POST /api/lots/:id/expo.
type CreateExpoLotRequest struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// LotResponse lote con su nivel de alerta de caducidad.
type LotResponse struct {
	ID                string      `json:"id"`
	Code              string      `json:"code"`
	Type              string      `json:"type"`
	ArticleID         string      `json:"article_id"`
	ParentLotID       string      `json:"parent_lot_id,omitempty"`
	DeclaredQuantity  int         `json:"declared_quantity"`
	RemainingQuantity int         `json:"remaining_quantity"`
	ManufacturingDate *time.Time  `json:"manufacturing_date,omitempty"`
	ExpiryDate        *time.Time  `json:"expiry_date,omitempty"`
	Status            string      `json:"status"`
	ExpiryAlertLevel  alert.Level `json:"expiry_alert_level"`
}

// LotResponseFrom proyecta el lote con derivados calculados a now.
func LotResponseFrom(l *entity.Lot, now time.Time) *LotResponse {
	return &LotResponse{
		ID:                l.ID,
		Code:              l.Code,
		Type:              l.Type,
		ArticleID:         l.ArticleID,
		ParentLotID:       l.ParentLotID,
		DeclaredQuantity:  l.DeclaredQuantity,
		RemainingQuantity: l.RemainingQuantity,
		ManufacturingDate: l.ManufacturingDate,
		ExpiryDate:        l.ExpiryDate,
		Status:            l.Status,
		ExpiryAlertLevel:  l.ExpiryAlertLevel(now),
	}
}

// AgingBucketDTO línea del reporte de envejecimiento de stock.
type AgingBucketDTO struct {
	Bucket alert.Bucket `json:"bucket"`
	Units  int          `json:"units"`
}
