package entity

import "time"

// Article artículo de catálogo referenciado por unidades, lotes, depósitos y
// albaranes. La desactivación se rechaza mientras exista un depósito
// active/partial que lo referencie.
type Article struct {
	ID        string
	SKU       string // único
	Name      string
	Unit      string // unidad de medida
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
