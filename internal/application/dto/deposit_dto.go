package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jmsanzl/custodia-api/internal/domain/alert"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
)

// DepositItemRequest línea de depósito en peticiones. El nombre y SKU del
// artículo se desnormalizan en el servidor, no se aceptan del cliente.
type DepositItemRequest struct {
	ArticleID    string          `json:"article_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Value        decimal.Decimal `json:"value"`
	ReceivedDate time.Time       `json:"received_date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	LotNumber    string          `json:"lot_number,omitempty"`
}

// CreateDepositRequest body para POST /api/deposits. Code vacío = autogenerado.
type CreateDepositRequest struct {
	Code         string               `json:"code,omitempty"`
	ClientID     string               `json:"client_id"`
	Warehouse    string               `json:"warehouse,omitempty"`
	Location     string               `json:"location,omitempty"`
	Items        []DepositItemRequest `json:"items"`
	ReceivedDate time.Time            `json:"received_date"`
	DueDate      *time.Time           `json:"due_date,omitempty"`
}

// UpdateDepositRequest campos editables mientras el depósito es mutable.
type UpdateDepositRequest struct {
	Warehouse *string    `json:"warehouse,omitempty"`
	Location  *string    `json:"location,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// DepositResponse depósito con sus derivados de vencimiento.
type DepositResponse struct {
	ID           string               `json:"id"`
	Code         string               `json:"code"`
	ClientID     string               `json:"client_id"`
	ClientName   string               `json:"client_name"`
	Warehouse    string               `json:"warehouse,omitempty"`
	Location     string               `json:"location,omitempty"`
	Items        []entity.DepositItem `json:"items"`
	Status       string               `json:"status"`
	ReceivedDate time.Time            `json:"received_date"`
	DueDate      *time.Time           `json:"due_date,omitempty"`
	TotalValue   decimal.Decimal      `json:"total_value"`
	DaysUntilDue *int                 `json:"days_until_due,omitempty"`
	IsOverdue    bool                 `json:"is_overdue"`
	AlertLevel   alert.Level          `json:"alert_level"`
}

// DepositResponseFrom proyecta el depósito con derivados calculados a now.
func DepositResponseFrom(d *entity.Deposit, now time.Time) *DepositResponse {
	return &DepositResponse{
		ID:           d.ID,
		Code:         d.Code,
		ClientID:     d.ClientID,
		ClientName:   d.ClientName,
		Warehouse:    d.Warehouse,
		Location:     d.Location,
		Items:        d.Items,
		Status:       d.Status,
		ReceivedDate: d.ReceivedDate,
		DueDate:      d.DueDate,
		TotalValue:   d.TotalValue,
		DaysUntilDue: d.DaysUntilDue(now),
		IsOverdue:    d.IsOverdue(now),
		AlertLevel:   d.AlertLevel(now),
	}
}
