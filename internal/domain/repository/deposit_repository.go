package repository

import "github.com/jmsanzl/custodia-api/internal/domain/entity"

// DepositFilter filtros de listado de depósitos.
type DepositFilter struct {
	ClientID string
	Status   string
	Limit    int
	Offset   int
}

// DepositRepository puerto de persistencia para depósitos de cliente.
type DepositRepository interface {
	Create(deposit *entity.Deposit) error
	GetByID(id string) (*entity.Deposit, error)
	GetByCode(code string) (*entity.Deposit, error)
	Update(deposit *entity.Deposit) error
	List(filter DepositFilter) ([]*entity.Deposit, error)
	// ExistsActiveByArticle true si algún depósito active/partial referencia el
	// artículo. Consumido por la guarda de desactivación de artículos.
	ExistsActiveByArticle(articleID string) (bool, error)
}
