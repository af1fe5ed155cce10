package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var _ repository.DepositRepository = (*DepositRepo)(nil)

// DepositRepo implementación de DepositRepository sobre PostgreSQL (usable con
// pool o tx). Las líneas viven embebidas como jsonb: el depósito entero es una
// escritura atómica de documento.
type DepositRepo struct {
	q Querier
}

// NewDepositRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepositRepository(q Querier) *DepositRepo {
	return &DepositRepo{q: q}
}

const depositColumns = `
	id, code, client_id, client_name, warehouse, location, items, status,
	received_date, due_date, total_value, created_at, updated_at`

// Create persiste un depósito nuevo. Código duplicado -> domain.ErrConflict.
func (r *DepositRepo) Create(deposit *entity.Deposit) error {
	items, err := json.Marshal(deposit.Items)
	if err != nil {
		return fmt.Errorf("serializar líneas: %w", err)
	}
	query := `
		INSERT INTO deposits (id, code, client_id, client_name, warehouse, location, items,
			status, received_date, due_date, total_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		deposit.ID, deposit.Code, deposit.ClientID, deposit.ClientName,
		nullIfEmpty(deposit.Warehouse), nullIfEmpty(deposit.Location), items,
		deposit.Status, deposit.ReceivedDate, deposit.DueDate, deposit.TotalValue,
		deposit.CreatedAt, deposit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código de depósito %s ya existe: %w", deposit.Code, domain.ErrConflict)
		}
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// GetByID obtiene un depósito por ID (nil si no existe).
func (r *DepositRepo) GetByID(id string) (*entity.Deposit, error) {
	return r.getOne(`SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id)
}

// GetByCode obtiene un depósito por código (nil si no existe).
func (r *DepositRepo) GetByCode(code string) (*entity.Deposit, error) {
	return r.getOne(`SELECT `+depositColumns+` FROM deposits WHERE code = $1`, code)
}

func (r *DepositRepo) getOne(query string, arg any) (*entity.Deposit, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	deposit, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	return deposit, nil
}

// Update persiste el estado completo del depósito.
func (r *DepositRepo) Update(deposit *entity.Deposit) error {
	items, err := json.Marshal(deposit.Items)
	if err != nil {
		return fmt.Errorf("serializar líneas: %w", err)
	}
	query := `
		UPDATE deposits
		SET warehouse = $2, location = $3, items = $4, status = $5,
		    due_date = $6, total_value = $7, updated_at = $8
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		deposit.ID, nullIfEmpty(deposit.Warehouse), nullIfEmpty(deposit.Location),
		items, deposit.Status, deposit.DueDate, deposit.TotalValue, deposit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	return nil
}

// List lista depósitos por filtro.
func (r *DepositRepo) List(filter repository.DepositFilter) ([]*entity.Deposit, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conds = append(conds, "client_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + depositColumns + ` FROM deposits`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY code"
	args = append(args, filter.Limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	var out []*entity.Deposit
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		out = append(out, deposit)
	}
	return out, rows.Err()
}

// ExistsActiveByArticle true si algún depósito active/partial contiene una
// línea del artículo (búsqueda sobre las líneas jsonb).
func (r *DepositRepo) ExistsActiveByArticle(articleID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM deposits d
			WHERE d.status IN ('active', 'partial')
			  AND EXISTS (
				SELECT 1 FROM jsonb_array_elements(d.items) item
				WHERE item->>'article_id' = $1
			  )
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, articleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check article reference: %w", err)
	}
	return exists, nil
}

func scanDeposit(row pgx.Row) (*entity.Deposit, error) {
	var (
		d                   entity.Deposit
		warehouse, location *string
		items               []byte
	)
	err := row.Scan(
		&d.ID, &d.Code, &d.ClientID, &d.ClientName, &warehouse, &location,
		&items, &d.Status, &d.ReceivedDate, &d.DueDate, &d.TotalValue,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Warehouse = derefStr(warehouse)
	d.Location = derefStr(location)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &d.Items); err != nil {
			return nil, fmt.Errorf("deserializar líneas: %w", err)
		}
	}
	if d.Items == nil {
		d.Items = []entity.DepositItem{}
	}
	return &d, nil
}
