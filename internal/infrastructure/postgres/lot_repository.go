package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `
	id, code, type, article_id, parent_lot_id, declared_quantity, remaining_quantity,
	manufacturing_date, expiry_date, status, created_at, updated_at`

// Create persiste un lote nuevo. Código duplicado -> domain.ErrConflict.
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, code, type, article_id, parent_lot_id, declared_quantity,
			remaining_quantity, manufacturing_date, expiry_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.Code, lot.Type, lot.ArticleID, nullIfEmpty(lot.ParentLotID),
		lot.DeclaredQuantity, lot.RemainingQuantity, lot.ManufacturingDate, lot.ExpiryDate,
		lot.Status, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código de lote %s ya existe: %w", lot.Code, domain.ErrConflict)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (nil si no existe).
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	return r.getOne(`SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetByCode obtiene un lote por código (nil si no existe).
func (r *LotRepo) GetByCode(code string) (*entity.Lot, error) {
	return r.getOne(`SELECT `+lotColumns+` FROM lots WHERE code = $1`, code)
}

func (r *LotRepo) getOne(query string, arg any) (*entity.Lot, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	lot, err := scanLot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// Update persiste remanente, estado y fechas del lote.
func (r *LotRepo) Update(lot *entity.Lot) error {
	query := `
		UPDATE lots
		SET remaining_quantity = $2, manufacturing_date = $3, expiry_date = $4,
		    status = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.RemainingQuantity, lot.ManufacturingDate, lot.ExpiryDate,
		lot.Status, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return nil
}

// List lista lotes paginados.
func (r *LotRepo) List(limit, offset int) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots ORDER BY code LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

// ExpiringBefore lotes activos con caducidad anterior a deadline.
func (r *LotRepo) ExpiringBefore(deadline time.Time) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1
		ORDER BY expiry_date`
	return r.list(query, deadline)
}

// Expired lotes en estado expired o con caducidad pasada aún activos
// (pendientes de materializar).
func (r *LotRepo) Expired(now time.Time) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE status = 'expired'
		   OR (status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1)
		ORDER BY expiry_date`
	return r.list(query, now)
}

func (r *LotRepo) list(query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var out []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l      entity.Lot
		parent *string
	)
	err := row.Scan(
		&l.ID, &l.Code, &l.Type, &l.ArticleID, &parent, &l.DeclaredQuantity,
		&l.RemainingQuantity, &l.ManufacturingDate, &l.ExpiryDate, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.ParentLotID = derefStr(parent)
	return &l, nil
}
