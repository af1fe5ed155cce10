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

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

// StockUnitRepo implementación de StockUnitRepository sobre PostgreSQL
// (usable con pool o tx). El historial de movimientos vive embebido en la
// fila como jsonb: la unidad se lee y escribe de forma atómica a nivel de
// documento.
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

const stockUnitColumns = `
	id, code, article_id, lot_master_id, lot_expo_id, origin_doc_id,
	client_id, warehouse_id, location_code, status, movements,
	received_date, expiry_date, created_at, updated_at`

// Create persiste una unidad nueva. Código duplicado -> domain.ErrConflict.
func (r *StockUnitRepo) Create(unit *entity.StockUnit) error {
	movements, err := json.Marshal(unit.Movements)
	if err != nil {
		return fmt.Errorf("serializar historial: %w", err)
	}
	query := `
		INSERT INTO stock_units (id, code, article_id, lot_master_id, lot_expo_id, origin_doc_id,
			client_id, warehouse_id, location_code, status, movements, received_date, expiry_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.q.Exec(context.Background(), query,
		unit.ID, unit.Code, unit.ArticleID, unit.LotMasterID,
		nullIfEmpty(unit.LotExpoID), nullIfEmpty(unit.OriginDocID),
		unit.Location.ClientID, unit.Location.WarehouseID, unit.Location.Code,
		unit.Status, movements, unit.ReceivedDate, unit.ExpiryDate,
		unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código %s ya existe: %w", unit.Code, domain.ErrConflict)
		}
		return fmt.Errorf("insert stock unit: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID (nil si no existe).
func (r *StockUnitRepo) GetByID(id string) (*entity.StockUnit, error) {
	return r.getOne(`SELECT `+stockUnitColumns+` FROM stock_units WHERE id = $1`, id)
}

// GetByCode obtiene una unidad por código de trazabilidad (nil si no existe).
func (r *StockUnitRepo) GetByCode(code string) (*entity.StockUnit, error) {
	return r.getOne(`SELECT `+stockUnitColumns+` FROM stock_units WHERE code = $1`, code)
}

func (r *StockUnitRepo) getOne(query string, arg any) (*entity.StockUnit, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	unit, err := scanStockUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock unit: %w", err)
	}
	return unit, nil
}

// Update persiste el estado completo de la unidad (escritura atómica de documento).
func (r *StockUnitRepo) Update(unit *entity.StockUnit) error {
	movements, err := json.Marshal(unit.Movements)
	if err != nil {
		return fmt.Errorf("serializar historial: %w", err)
	}
	query := `
		UPDATE stock_units
		SET client_id = $2, warehouse_id = $3, location_code = $4, status = $5,
		    movements = $6, expiry_date = $7, updated_at = $8
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		unit.ID, unit.Location.ClientID, unit.Location.WarehouseID, unit.Location.Code,
		unit.Status, movements, unit.ExpiryDate, unit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock unit: %w", err)
	}
	return nil
}

// List lista unidades por filtro. Limit <= 0 no pagina (reportes agregados).
func (r *StockUnitRepo) List(filter repository.UnitFilter) ([]*entity.StockUnit, error) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		if val != "" {
			args = append(args, val)
			conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
		}
	}
	add("client_id", filter.ClientID)
	add("warehouse_id", filter.WarehouseID)
	add("location_code", filter.Location)
	add("article_id", filter.ArticleID)
	add("lot_master_id", filter.LotID)
	add("status", filter.Status)

	query := `SELECT ` + stockUnitColumns + ` FROM stock_units`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY code"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock units: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockUnit
	for rows.Next() {
		unit, err := scanStockUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock unit: %w", err)
		}
		out = append(out, unit)
	}
	return out, rows.Err()
}

// ListByIDs obtiene varias unidades por sus IDs.
func (r *StockUnitRepo) ListByIDs(ids []string) ([]*entity.StockUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockUnitColumns + ` FROM stock_units WHERE id = ANY($1) ORDER BY code`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("list stock units by ids: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockUnit
	for rows.Next() {
		unit, err := scanStockUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock unit: %w", err)
		}
		out = append(out, unit)
	}
	return out, rows.Err()
}

// CountActiveByLot cuenta unidades en {available, reserved} del lote maestro.
func (r *StockUnitRepo) CountActiveByLot(lotID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM stock_units
		WHERE lot_master_id = $1 AND status IN ('available', 'reserved')`
	var count int
	if err := r.q.QueryRow(context.Background(), query, lotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active units: %w", err)
	}
	return count, nil
}

// scanStockUnit escanea una fila (pgx.Row o pgx.Rows comparten Scan).
func scanStockUnit(row pgx.Row) (*entity.StockUnit, error) {
	var (
		u                   entity.StockUnit
		lotExpo, originDoc  *string
		movements           []byte
	)
	err := row.Scan(
		&u.ID, &u.Code, &u.ArticleID, &u.LotMasterID, &lotExpo, &originDoc,
		&u.Location.ClientID, &u.Location.WarehouseID, &u.Location.Code,
		&u.Status, &movements, &u.ReceivedDate, &u.ExpiryDate,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.LotExpoID = derefStr(lotExpo)
	u.OriginDocID = derefStr(originDoc)
	if len(movements) > 0 {
		if err := json.Unmarshal(movements, &u.Movements); err != nil {
			return nil, fmt.Errorf("deserializar historial: %w", err)
		}
	}
	if u.Movements == nil {
		u.Movements = []entity.MovementEntry{}
	}
	return &u, nil
}
