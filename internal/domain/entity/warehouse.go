package entity

import "time"

// Warehouse almacén donde se custodian las unidades (las ubicaciones de las
// unidades lo referencian por ID).
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
