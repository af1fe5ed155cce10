package entity

import (
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/alert"
)

// Estados de una unidad de stock. shipped es terminal (salió de custodia);
// expired y damaged siguen presentes pero inutilizables.
const (
	UnitStatusAvailable = "available"
	UnitStatusReserved  = "reserved"
	UnitStatusShipped   = "shipped"
	UnitStatusExpired   = "expired"
	UnitStatusDamaged   = "damaged"
)

// Tipos de entrada en el historial de movimientos.
const (
	MovementKindEntry       = "entry"
	MovementKindMovement    = "movement"
	MovementKindExit        = "exit"
	MovementKindReservation = "reservation"
	MovementKindRelease     = "release"
)

// Location ubicación física actual de una unidad: cliente + almacén + código de ubicación.
type Location struct {
	ClientID    string `json:"client_id"`
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
}

// MovementEntry entrada del historial de movimientos de una unidad (append-only).
// To es nil solo en salidas (exit): la unidad deja de tener ubicación en custodia.
type MovementEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
	From       *Location `json:"from,omitempty"`
	To         *Location `json:"to,omitempty"`
	Actor      string    `json:"actor"`
	DocumentID string    `json:"document_id,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// StockUnit unidad física individual con trazabilidad completa.
// El código TRZ-<año>-<secuencia> es inmutable una vez asignado.
// La ubicación actual es una proyección de la última entrada del historial;
// nunca se asigna directamente fuera de applyMovement.
type StockUnit struct {
	ID           string
	Code         string // TRZ-<año>-<secuencia>, único global
	ArticleID    string
	LotMasterID  string
	LotExpoID    string // opcional: lote de exposición
	OriginDocID  string // opcional: albarán de entrada que la originó
	Location     Location
	Status       string
	Movements    []MovementEntry
	ReceivedDate time.Time
	ExpiryDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LastMovement devuelve la última entrada del historial o nil si está vacío.
func (u *StockUnit) LastMovement() *MovementEntry {
	if len(u.Movements) == 0 {
		return nil
	}
	return &u.Movements[len(u.Movements)-1]
}

// LastMovementAt fecha del último movimiento (ReceivedDate si no hay historial).
func (u *StockUnit) LastMovementAt() time.Time {
	if m := u.LastMovement(); m != nil {
		return m.Timestamp
	}
	return u.ReceivedDate
}

// IsTerminal indica si la unidad está en un estado terminal de custodia.
func (u *StockUnit) IsTerminal() bool {
	return u.Status == UnitStatusShipped
}

// CountsForLot indica si la unidad suma en el remanente de su lote maestro.
func (u *StockUnit) CountsForLot() bool {
	return u.Status == UnitStatusAvailable || u.Status == UnitStatusReserved
}

// StockAge días en custodia desde la recepción.
func (u *StockUnit) StockAge(now time.Time) int {
	return int(now.Sub(u.ReceivedDate).Hours() / 24)
}

// DaysUntilExpiry días hasta caducidad; nil si la unidad no caduca.
func (u *StockUnit) DaysUntilExpiry(now time.Time) *int {
	if u.ExpiryDate == nil {
		return nil
	}
	d := alert.DaysUntil(*u.ExpiryDate, now)
	return &d
}

// StockAgeAlertLevel semáforo de antigüedad (verde <60d, amarillo <90d, rojo ≥90d).
func (u *StockUnit) StockAgeAlertLevel(now time.Time) string {
	return alert.StockAgeLevel(u.ReceivedDate, now)
}

// ExpiryAlertLevel nivel de alerta de caducidad; solo aplica mientras la unidad
// sigue contando para stock (available/reserved).
func (u *StockUnit) ExpiryAlertLevel(now time.Time) alert.Level {
	return alert.ForStatus(u.ExpiryDate, now, u.Status, UnitStatusAvailable, UnitStatusReserved)
}

// AgingBucket tramo de antigüedad para el reporte de envejecimiento.
func (u *StockUnit) AgingBucket(now time.Time) alert.Bucket {
	return alert.AgingBucket(u.ReceivedDate, now)
}
