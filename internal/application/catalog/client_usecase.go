package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// ClientUseCase catálogo de clientes.
type ClientUseCase struct {
	clients repository.ClientRepository
	now     func() time.Time
}

// NewClientUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewClientUseCase(clients repository.ClientRepository, nowFn func() time.Time) *ClientUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &ClientUseCase{clients: clients, now: nowFn}
}

// Create da de alta un cliente.
func (uc *ClientUseCase) Create(taxID, name, email, phone string) (*entity.Client, error) {
	if name == "" {
		return nil, fmt.Errorf("crear cliente: nombre requerido: %w", domain.ErrValidation)
	}
	now := uc.now()
	client := &entity.Client{
		ID:        uuid.New().String(),
		TaxID:     taxID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clients.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get obtiene un cliente por ID.
func (uc *ClientUseCase) Get(id string) (*entity.Client, error) {
	client, err := uc.clients.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	return client, nil
}

// List lista clientes.
func (uc *ClientUseCase) List(limit, offset int) ([]*entity.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.clients.List(limit, offset)
}
