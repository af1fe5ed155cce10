package entity

import "time"

// Client cliente propietario de la mercancía en custodia. El nombre se
// desnormaliza en los depósitos en el momento de la creación.
type Client struct {
	ID        string
	TaxID     string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
