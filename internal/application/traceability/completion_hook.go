package traceability

import (
	"fmt"
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// NoteCompletionHook mueve las unidades referenciadas por un albarán al
// completarse este: salida→expedición, traslado→movimiento al destino del
// documento, entrada→sin efecto (las unidades se dan de alta explícitamente
// con el albarán de origen). Opera sobre los repositorios de la transacción
// del albarán: un fallo deshace también la finalización.
type NoteCompletionHook struct{}

// NewNoteCompletionHook construye el hook.
func NewNoteCompletionHook() *NoteCompletionHook {
	return &NoteCompletionHook{}
}

// NoteCompleted implementa delivery.CompletionHook.
func (h *NoteCompletionHook) NoteCompleted(
	units repository.StockUnitRepository,
	lots repository.LotRepository,
	note *entity.DeliveryNote,
	actor string,
	now time.Time,
) error {
	if note.Type == entity.NoteTypeEntry {
		return nil
	}
	touchedLots := map[string]bool{}
	for _, item := range note.Items {
		for _, unitID := range item.StockUnitIDs {
			unit, err := units.GetByID(unitID)
			if err != nil {
				return err
			}
			if unit == nil {
				return fmt.Errorf("unidad %s referenciada: %w", unitID, domain.ErrNotFound)
			}
			switch note.Type {
			case entity.NoteTypeExit:
				if unit.IsTerminal() {
					return fmt.Errorf("expedir unidad %s ya expedida: %w", unit.Code, domain.ErrInvalidState)
				}
				from := unit.Location
				unit.Status = entity.UnitStatusShipped
				appendMovement(unit, entity.MovementEntry{
					Timestamp:  now,
					Kind:       entity.MovementKindExit,
					From:       &from,
					Actor:      actor,
					DocumentID: note.Number,
				})
				touchedLots[unit.LotMasterID] = true
			case entity.NoteTypeTransfer:
				if unit.IsTerminal() {
					return fmt.Errorf("trasladar unidad %s ya expedida: %w", unit.Code, domain.ErrInvalidState)
				}
				from := unit.Location
				to := entity.Location{
					ClientID:    note.ClientID,
					WarehouseID: note.WarehouseID,
					Code:        note.Destination,
				}
				appendMovement(unit, entity.MovementEntry{
					Timestamp:  now,
					Kind:       entity.MovementKindMovement,
					From:       &from,
					To:         &to,
					Actor:      actor,
					DocumentID: note.Number,
				})
				unit.Location = to
			}
			unit.UpdatedAt = now
			if err := units.Update(unit); err != nil {
				return err
			}
		}
	}
	for lotID := range touchedLots {
		lot, err := lots.GetByID(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("lote %s: %w", lotID, domain.ErrNotFound)
		}
		if err := recomputeRemaining(units, lots, lot, now); err != nil {
			return err
		}
	}
	return nil
}
