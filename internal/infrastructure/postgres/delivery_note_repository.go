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

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// DeliveryNoteRepo implementación de DeliveryNoteRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas viven como jsonb en la fila.
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

const noteColumns = `
	id, number, type, date, client_id, warehouse_id, items, origin, destination,
	status, total_units, processed_by, processed_at, notes, created_at, updated_at`

// Create persiste un albarán nuevo. Número duplicado -> domain.ErrConflict.
func (r *DeliveryNoteRepo) Create(note *entity.DeliveryNote) error {
	items, err := json.Marshal(note.Items)
	if err != nil {
		return fmt.Errorf("serializar líneas: %w", err)
	}
	query := `
		INSERT INTO delivery_notes (id, number, type, date, client_id, warehouse_id, items,
			origin, destination, status, total_units, processed_by, processed_at, notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(context.Background(), query,
		note.ID, note.Number, note.Type, note.Date, note.ClientID, note.WarehouseID, items,
		nullIfEmpty(note.Origin), nullIfEmpty(note.Destination), note.Status, note.TotalUnits,
		nullIfEmpty(note.ProcessedBy), note.ProcessedAt, nullIfEmpty(note.Notes),
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de albarán %s ya existe: %w", note.Number, domain.ErrConflict)
		}
		return fmt.Errorf("insert delivery note: %w", err)
	}
	return nil
}

// GetByID obtiene un albarán por ID (nil si no existe).
func (r *DeliveryNoteRepo) GetByID(id string) (*entity.DeliveryNote, error) {
	return r.getOne(`SELECT `+noteColumns+` FROM delivery_notes WHERE id = $1`, id)
}

// GetByNumber obtiene un albarán por número (nil si no existe).
func (r *DeliveryNoteRepo) GetByNumber(number string) (*entity.DeliveryNote, error) {
	return r.getOne(`SELECT `+noteColumns+` FROM delivery_notes WHERE number = $1`, number)
}

func (r *DeliveryNoteRepo) getOne(query string, arg any) (*entity.DeliveryNote, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery note: %w", err)
	}
	return note, nil
}

// Update persiste el estado completo del albarán.
func (r *DeliveryNoteRepo) Update(note *entity.DeliveryNote) error {
	items, err := json.Marshal(note.Items)
	if err != nil {
		return fmt.Errorf("serializar líneas: %w", err)
	}
	query := `
		UPDATE delivery_notes
		SET date = $2, items = $3, origin = $4, destination = $5, status = $6,
		    total_units = $7, processed_by = $8, processed_at = $9, notes = $10, updated_at = $11
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		note.ID, note.Date, items, nullIfEmpty(note.Origin), nullIfEmpty(note.Destination),
		note.Status, note.TotalUnits, nullIfEmpty(note.ProcessedBy), note.ProcessedAt,
		nullIfEmpty(note.Notes), note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update delivery note: %w", err)
	}
	return nil
}

// List lista albaranes por filtro.
func (r *DeliveryNoteRepo) List(filter repository.NoteFilter) ([]*entity.DeliveryNote, error) {
	conds, args := noteConds(filter)
	query := `SELECT ` + noteColumns + ` FROM delivery_notes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY number DESC"
	args = append(args, filter.Limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list delivery notes: %w", err)
	}
	defer rows.Close()

	var out []*entity.DeliveryNote
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery note: %w", err)
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// Stats agregados por estado/tipo y suma de unidades (agregación en el storage).
func (r *DeliveryNoteRepo) Stats(filter repository.NoteFilter) (*repository.NoteStats, error) {
	conds, args := noteConds(filter)
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	query := `
		SELECT status, type, COUNT(*), COALESCE(SUM(total_units), 0)
		FROM delivery_notes` + where + `
		GROUP BY status, type`
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("delivery note stats: %w", err)
	}
	defer rows.Close()

	stats := &repository.NoteStats{
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}
	for rows.Next() {
		var (
			status, noteType string
			count, units     int
		)
		if err := rows.Scan(&status, &noteType, &count, &units); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[status] += count
		stats.ByType[noteType] += count
		stats.TotalUnits += units
	}
	return stats, rows.Err()
}

func noteConds(filter repository.NoteFilter) ([]string, []any) {
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
	add("type", filter.Type)
	add("status", filter.Status)
	add("client_id", filter.ClientID)
	add("warehouse_id", filter.WarehouseID)
	return conds, args
}

func scanNote(row pgx.Row) (*entity.DeliveryNote, error) {
	var (
		n                                      entity.DeliveryNote
		origin, destination, processedBy, note *string
		items                                  []byte
	)
	err := row.Scan(
		&n.ID, &n.Number, &n.Type, &n.Date, &n.ClientID, &n.WarehouseID, &items,
		&origin, &destination, &n.Status, &n.TotalUnits, &processedBy, &n.ProcessedAt,
		&note, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Origin = derefStr(origin)
	n.Destination = derefStr(destination)
	n.ProcessedBy = derefStr(processedBy)
	n.Notes = derefStr(note)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &n.Items); err != nil {
			return nil, fmt.Errorf("deserializar líneas: %w", err)
		}
	}
	if n.Items == nil {
		n.Items = []entity.DeliveryItem{}
	}
	return &n, nil
}
