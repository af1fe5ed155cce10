package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/application/sequence"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// NoteUseCase emisor de albaranes: numeración secuencial por (tipo, año),
// máquina de estados pending→processing→completed con cancelación, y
// movimiento de unidades como efecto de la finalización.
type NoteUseCase struct {
	tx         TxRunner
	notes      repository.DeliveryNoteRepository
	clients    repository.ClientRepository
	warehouses repository.WarehouseRepository
	articles   repository.ArticleRepository
	lots       repository.LotRepository
	seq        *sequence.Generator
	hook       CompletionHook
	now        func() time.Time
}

// NewNoteUseCase construye el caso de uso. hook nil desactiva el movimiento
// automático de unidades; nowFn nil usa time.Now.
func NewNoteUseCase(
	tx TxRunner,
	notes repository.DeliveryNoteRepository,
	clients repository.ClientRepository,
	warehouses repository.WarehouseRepository,
	articles repository.ArticleRepository,
	lots repository.LotRepository,
	seq *sequence.Generator,
	hook CompletionHook,
	nowFn func() time.Time,
) *NoteUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &NoteUseCase{
		tx: tx, notes: notes, clients: clients, warehouses: warehouses,
		articles: articles, lots: lots, seq: seq, hook: hook, now: nowFn,
	}
}

// Create emite un albarán pending con número asignado y total calculado.
func (uc *NoteUseCase) Create(in dto.CreateNoteRequest) (*entity.DeliveryNote, error) {
	if entity.NotePrefix(in.Type) == "" {
		return nil, fmt.Errorf("crear albarán: tipo %q no válido: %w", in.Type, domain.ErrValidation)
	}
	if in.ClientID == "" || in.WarehouseID == "" {
		return nil, fmt.Errorf("crear albarán: cliente y almacén requeridos: %w", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("crear albarán: sin líneas: %w", domain.ErrValidation)
	}
	client, err := uc.clients.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("crear albarán: cliente %s: %w", in.ClientID, domain.ErrNotFound)
	}
	warehouse, err := uc.warehouses.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("crear albarán: almacén %s: %w", in.WarehouseID, domain.ErrNotFound)
	}
	items, err := uc.validateItems(in.Items)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	note := &entity.DeliveryNote{
		ID:          uuid.New().String(),
		Type:        in.Type,
		Date:        date,
		ClientID:    in.ClientID,
		WarehouseID: in.WarehouseID,
		Items:       items,
		Origin:      in.Origin,
		Destination: in.Destination,
		Status:      entity.NoteStatusPending,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	note.RecomputeTotalUnits()
	if err := uc.createWithFreshNumber(note); err != nil {
		return nil, err
	}
	return note, nil
}

// createWithFreshNumber asigna número y persiste; ante conflicto de unicidad
// reintenta una única vez con número recién generado.
func (uc *NoteUseCase) createWithFreshNumber(note *entity.DeliveryNote) error {
	for attempt := 0; attempt < 2; attempt++ {
		number, err := uc.seq.NextNoteNumber(note.Type)
		if err != nil {
			return err
		}
		note.Number = number
		err = uc.notes.Create(note)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("crear albarán: número duplicado tras reintento: %w", domain.ErrConflict)
}

// validateItems comprueba referencias y cantidades de las líneas.
func (uc *NoteUseCase) validateItems(in []dto.NoteItemRequest) ([]entity.DeliveryItem, error) {
	items := make([]entity.DeliveryItem, 0, len(in))
	for i, it := range in {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("línea %d: cantidad %d no positiva: %w", i, it.Quantity, domain.ErrValidation)
		}
		article, err := uc.articles.GetByID(it.ArticleID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, fmt.Errorf("línea %d: artículo %s: %w", i, it.ArticleID, domain.ErrValidation)
		}
		if it.LotID != "" {
			lot, err := uc.lots.GetByID(it.LotID)
			if err != nil {
				return nil, err
			}
			if lot == nil {
				return nil, fmt.Errorf("línea %d: lote %s: %w", i, it.LotID, domain.ErrValidation)
			}
		}
		items = append(items, entity.DeliveryItem{
			ArticleID:    it.ArticleID,
			LotID:        it.LotID,
			Quantity:     it.Quantity,
			StockUnitIDs: it.StockUnitIDs,
		})
	}
	return items, nil
}

// Get obtiene un albarán por ID.
func (uc *NoteUseCase) Get(id string) (*entity.DeliveryNote, error) {
	note, err := uc.notes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("albarán %s: %w", id, domain.ErrNotFound)
	}
	return note, nil
}

// List lista albaranes por filtro.
func (uc *NoteUseCase) List(filter repository.NoteFilter) ([]*entity.DeliveryNote, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.notes.List(filter)
}

// Update edita un albarán. Legal solo en pending/processing; el total de
// unidades se recalcula antes de persistir. Status solo admite el avance
// pending→processing.
func (uc *NoteUseCase) Update(id string, in dto.UpdateNoteRequest) (*entity.DeliveryNote, error) {
	note, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if note.IsTerminal() {
		return nil, fmt.Errorf("editar albarán %s en estado %s: %w", note.Number, note.Status, domain.ErrInvalidState)
	}
	if in.Status != nil {
		if *in.Status != entity.NoteStatusProcessing {
			return nil, fmt.Errorf("transición de albarán %s de %s a %s: %w", note.Number, note.Status, *in.Status, domain.ErrInvalidState)
		}
		note.Status = entity.NoteStatusProcessing
	}
	if in.Date != nil {
		note.Date = *in.Date
	}
	if in.Items != nil {
		items, err := uc.validateItems(in.Items)
		if err != nil {
			return nil, err
		}
		note.Items = items
	}
	if in.Origin != nil {
		note.Origin = *in.Origin
	}
	if in.Destination != nil {
		note.Destination = *in.Destination
	}
	if in.Notes != nil {
		note.Notes = *in.Notes
	}
	note.RecomputeTotalUnits()
	note.UpdatedAt = uc.now()
	if err := uc.notes.Update(note); err != nil {
		return nil, err
	}
	return note, nil
}

// Complete finaliza el albarán (terminal): fija processedBy/processedAt y, vía
// hook, mueve las unidades referenciadas dentro de la misma transacción.
func (uc *NoteUseCase) Complete(ctx context.Context, id, actor string) (*entity.DeliveryNote, error) {
	var out *entity.DeliveryNote
	err := uc.tx.RunDelivery(ctx, func(
		notes repository.DeliveryNoteRepository,
		units repository.StockUnitRepository,
		lots repository.LotRepository,
	) error {
		note, err := notes.GetByID(id)
		if err != nil {
			return err
		}
		if note == nil {
			return fmt.Errorf("albarán %s: %w", id, domain.ErrNotFound)
		}
		if note.IsTerminal() {
			return fmt.Errorf("completar albarán %s en estado %s: %w", note.Number, note.Status, domain.ErrInvalidState)
		}
		now := uc.now()
		note.Status = entity.NoteStatusCompleted
		note.ProcessedBy = actor
		note.ProcessedAt = &now
		note.RecomputeTotalUnits()
		note.UpdatedAt = now
		if err := notes.Update(note); err != nil {
			return err
		}
		if uc.hook != nil {
			if err := uc.hook.NoteCompleted(units, lots, note, actor, now); err != nil {
				return fmt.Errorf("mover unidades del albarán %s: %w", note.Number, err)
			}
		}
		out = note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel anula el albarán (borrado blando). Rechazado si ya está completado.
func (uc *NoteUseCase) Cancel(id string) (*entity.DeliveryNote, error) {
	note, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if note.Status == entity.NoteStatusCompleted {
		return nil, fmt.Errorf("anular albarán %s ya completado: %w", note.Number, domain.ErrInvalidState)
	}
	if note.Status == entity.NoteStatusCancelled {
		return note, nil
	}
	note.Status = entity.NoteStatusCancelled
	note.UpdatedAt = uc.now()
	if err := uc.notes.Update(note); err != nil {
		return nil, err
	}
	return note, nil
}

// Stats agregados por estado/tipo y suma de unidades (delegado al storage).
func (uc *NoteUseCase) Stats(filter repository.NoteFilter) (*repository.NoteStats, error) {
	return uc.notes.Stats(filter)
}
