package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jmsanzl/custodia-api/internal/domain/alert"
)

// Estados de depósito. closed y cancelled son terminales; invoiced y partial
// los fija el subsistema de facturación (externo a este motor).
const (
	DepositStatusActive    = "active"
	DepositStatusInvoiced  = "invoiced"
	DepositStatusPartial   = "partial"
	DepositStatusClosed    = "closed"
	DepositStatusCancelled = "cancelled"
)

// DepositItem línea de un depósito. ArticleName y ArticleSKU se desnormalizan
// en la creación para sobrevivir renombres del artículo.
type DepositItem struct {
	ID           string          `json:"id"`
	ArticleID    string          `json:"article_id"`
	ArticleName  string          `json:"article_name"`
	ArticleSKU   string          `json:"article_sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Value        decimal.Decimal `json:"value"`
	ReceivedDate time.Time       `json:"received_date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	LotNumber    string          `json:"lot_number,omitempty"`
}

// Deposit mercancía en depósito de un cliente, de grano más grueso que las
// unidades trazables (sin trazabilidad por pieza).
// TotalValue es derivado: suma de item.Value, recalculado en cada alta/baja de línea.
type Deposit struct {
	ID           string
	Code         string // DEP-<año>-<secuencia>, autogenerado si falta
	ClientID     string
	ClientName   string // desnormalizado
	Warehouse    string // texto libre almacén/ubicación
	Location     string
	Items        []DepositItem
	Status       string
	ReceivedDate time.Time
	DueDate      *time.Time
	TotalValue   decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecomputeTotal recalcula TotalValue a partir de las líneas.
func (d *Deposit) RecomputeTotal() {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(it.Value)
	}
	d.TotalValue = total
}

// IsMutable indica si se admiten mutaciones de líneas (solo active/partial).
func (d *Deposit) IsMutable() bool {
	return d.Status == DepositStatusActive || d.Status == DepositStatusPartial
}

// IsTerminal indica si el depósito alcanzó un estado terminal.
func (d *Deposit) IsTerminal() bool {
	return d.Status == DepositStatusClosed || d.Status == DepositStatusCancelled
}

// DaysUntilDue días hasta el vencimiento; nil si no hay dueDate.
func (d *Deposit) DaysUntilDue(now time.Time) *int {
	if d.DueDate == nil {
		return nil
	}
	v := alert.DaysUntil(*d.DueDate, now)
	return &v
}

// IsOverdue indica si el depósito está vencido (solo en estados elegibles).
func (d *Deposit) IsOverdue(now time.Time) bool {
	return d.AlertLevel(now) == alert.LevelCritical
}

// AlertLevel nivel de alerta por vencimiento, solo mientras el depósito sigue
// siendo exigible (active/partial).
func (d *Deposit) AlertLevel(now time.Time) alert.Level {
	return alert.ForStatus(d.DueDate, now, d.Status, DepositStatusActive, DepositStatusPartial)
}
