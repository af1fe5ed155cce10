package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un cliente nuevo.
func (r *ClientRepo) Create(client *entity.Client) error {
	query := `
		INSERT INTO clients (id, tax_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		client.ID, nullIfEmpty(client.TaxID), client.Name, nullIfEmpty(client.Email),
		nullIfEmpty(client.Phone), client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID (nil si no existe).
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	query := `SELECT id, tax_id, name, email, phone, created_at, updated_at FROM clients WHERE id = $1`
	var (
		c                   entity.Client
		taxID, email, phone *string
	)
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &taxID, &c.Name, &email, &phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	c.TaxID = derefStr(taxID)
	c.Email = derefStr(email)
	c.Phone = derefStr(phone)
	return &c, nil
}

// List lista clientes paginados.
func (r *ClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	query := `SELECT id, tax_id, name, email, phone, created_at, updated_at FROM clients ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*entity.Client
	for rows.Next() {
		var (
			c                   entity.Client
			taxID, email, phone *string
		)
		if err := rows.Scan(&c.ID, &taxID, &c.Name, &email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.TaxID = derefStr(taxID)
		c.Email = derefStr(email)
		c.Phone = derefStr(phone)
		out = append(out, &c)
	}
	return out, rows.Err()
}
