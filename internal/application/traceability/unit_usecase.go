package traceability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/application/sequence"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/alert"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// UnitUseCase libro mayor de unidades trazables: alta en bloque, movimientos,
// reservas y salidas, con recálculo síncrono del remanente del lote dentro de
// la misma transacción.
type UnitUseCase struct {
	tx       TxRunner
	units    repository.StockUnitRepository
	lots     repository.LotRepository
	articles repository.ArticleRepository
	seq      *sequence.Generator
	now      func() time.Time
}

// NewUnitUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewUnitUseCase(
	tx TxRunner,
	units repository.StockUnitRepository,
	lots repository.LotRepository,
	articles repository.ArticleRepository,
	seq *sequence.Generator,
	nowFn func() time.Time,
) *UnitUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &UnitUseCase{tx: tx, units: units, lots: lots, articles: articles, seq: seq, now: nowFn}
}

// Create registra in.Quantity unidades nuevas bajo el mismo lote maestro y
// ubicación. Cada unidad recibe un código TRZ propio, estado available e
// historial vacío (la ubicación de creación hace de primera ubicación).
func (uc *UnitUseCase) Create(ctx context.Context, in dto.CreateUnitsRequest) ([]*entity.StockUnit, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("alta de unidades: cantidad %d no positiva: %w", in.Quantity, domain.ErrValidation)
	}
	if in.Location.ClientID == "" || in.Location.WarehouseID == "" || in.Location.Code == "" {
		return nil, fmt.Errorf("alta de unidades: ubicación incompleta: %w", domain.ErrValidation)
	}
	article, err := uc.articles.GetByID(in.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("alta de unidades: artículo %s: %w", in.ArticleID, domain.ErrValidation)
	}
	lot, err := uc.lots.GetByID(in.LotMasterID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("alta de unidades: lote maestro %s: %w", in.LotMasterID, domain.ErrValidation)
	}
	if lot.Type != entity.LotTypeMaster {
		return nil, fmt.Errorf("alta de unidades: el lote %s no es un lote maestro: %w", lot.Code, domain.ErrValidation)
	}
	if in.LotExpoID != "" {
		expo, err := uc.lots.GetByID(in.LotExpoID)
		if err != nil {
			return nil, err
		}
		if expo == nil {
			return nil, fmt.Errorf("alta de unidades: lote expo %s: %w", in.LotExpoID, domain.ErrValidation)
		}
	}

	now := uc.now()
	received := in.ReceivedDate
	if received.IsZero() {
		received = now
	}
	created := make([]*entity.StockUnit, 0, in.Quantity)
	err = uc.tx.Run(ctx, func(units repository.StockUnitRepository, lots repository.LotRepository) error {
		for i := 0; i < in.Quantity; i++ {
			unit := &entity.StockUnit{
				ID:          uuid.New().String(),
				ArticleID:   in.ArticleID,
				LotMasterID: in.LotMasterID,
				LotExpoID:   in.LotExpoID,
				OriginDocID: in.OriginDocID,
				Location: entity.Location{
					ClientID:    in.Location.ClientID,
					WarehouseID: in.Location.WarehouseID,
					Code:        in.Location.Code,
				},
				Status:       entity.UnitStatusAvailable,
				Movements:    []entity.MovementEntry{},
				ReceivedDate: received,
				ExpiryDate:   in.ExpiryDate,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := uc.createWithFreshCode(units, unit); err != nil {
				return err
			}
			created = append(created, unit)
		}
		lot, err := lots.GetByID(in.LotMasterID)
		if err != nil {
			return err
		}
		return recomputeRemaining(units, lots, lot, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// createWithFreshCode asigna código y persiste; ante un conflicto de unicidad
// reintenta una única vez con un código recién generado.
func (uc *UnitUseCase) createWithFreshCode(units repository.StockUnitRepository, unit *entity.StockUnit) error {
	for attempt := 0; attempt < 2; attempt++ {
		code, err := uc.seq.NextTraceabilityCode()
		if err != nil {
			return err
		}
		unit.Code = code
		err = units.Create(unit)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("alta de unidad: código duplicado tras reintento: %w", domain.ErrConflict)
}

// Get obtiene una unidad materializando antes su caducidad lazy.
func (uc *UnitUseCase) Get(ctx context.Context, id string) (*entity.StockUnit, error) {
	unit, err := uc.units.GetByID(id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
	}
	if err := uc.materializeIfDue(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// List lista unidades por filtro, materializando la caducidad de las vencidas.
func (uc *UnitUseCase) List(ctx context.Context, filter repository.UnitFilter) ([]*entity.StockUnit, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.units.List(filter)
	if err != nil {
		return nil, err
	}
	for _, unit := range list {
		if err := uc.materializeIfDue(ctx, unit); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Move traslada la unidad a otra ubicación añadiendo una entrada movement.
// Legal en cualquier estado salvo shipped.
func (uc *UnitUseCase) Move(ctx context.Context, id string, in dto.MoveUnitRequest, actor string) (*entity.StockUnit, error) {
	if in.Location.ClientID == "" || in.Location.WarehouseID == "" || in.Location.Code == "" {
		return nil, fmt.Errorf("mover unidad %s: ubicación incompleta: %w", id, domain.ErrValidation)
	}
	return uc.mutate(ctx, id, func(u *entity.StockUnit, now time.Time) (bool, error) {
		if u.Status == entity.UnitStatusShipped {
			return false, fmt.Errorf("mover unidad %s en estado shipped: %w", u.Code, domain.ErrInvalidState)
		}
		from := u.Location
		to := entity.Location{
			ClientID:    in.Location.ClientID,
			WarehouseID: in.Location.WarehouseID,
			Code:        in.Location.Code,
		}
		appendMovement(u, entity.MovementEntry{
			Timestamp: now,
			Kind:      entity.MovementKindMovement,
			From:      &from,
			To:        &to,
			Actor:     actor,
			Notes:     in.Notes,
		})
		u.Location = to
		return false, nil
	})
}

// Reserve marca la unidad como reservada. Legal solo desde available.
func (uc *UnitUseCase) Reserve(ctx context.Context, id string, in dto.UnitActionRequest, actor string) (*entity.StockUnit, error) {
	return uc.mutate(ctx, id, func(u *entity.StockUnit, now time.Time) (bool, error) {
		if u.Status != entity.UnitStatusAvailable {
			return false, fmt.Errorf("reservar unidad %s en estado %s: %w", u.Code, u.Status, domain.ErrInvalidState)
		}
		u.Status = entity.UnitStatusReserved
		loc := u.Location
		appendMovement(u, entity.MovementEntry{
			Timestamp: now,
			Kind:      entity.MovementKindReservation,
			From:      &loc,
			To:        &loc,
			Actor:     actor,
			Notes:     in.Notes,
		})
		return true, nil
	})
}

// Release libera una reserva devolviendo la unidad a available. Legal solo
// desde reserved.
func (uc *UnitUseCase) Release(ctx context.Context, id string, in dto.UnitActionRequest, actor string) (*entity.StockUnit, error) {
	return uc.mutate(ctx, id, func(u *entity.StockUnit, now time.Time) (bool, error) {
		if u.Status != entity.UnitStatusReserved {
			return false, fmt.Errorf("liberar unidad %s en estado %s: %w", u.Code, u.Status, domain.ErrInvalidState)
		}
		u.Status = entity.UnitStatusAvailable
		loc := u.Location
		appendMovement(u, entity.MovementEntry{
			Timestamp: now,
			Kind:      entity.MovementKindRelease,
			From:      &loc,
			To:        &loc,
			Actor:     actor,
			Notes:     in.Notes,
		})
		return true, nil
	})
}

// Ship saca la unidad de custodia (estado terminal). Legal desde cualquier
// estado no terminal; la entrada exit no tiene ubicación destino.
func (uc *UnitUseCase) Ship(ctx context.Context, id string, in dto.ShipUnitRequest, actor string) (*entity.StockUnit, error) {
	return uc.mutate(ctx, id, func(u *entity.StockUnit, now time.Time) (bool, error) {
		if u.IsTerminal() {
			return false, fmt.Errorf("expedir unidad %s ya expedida: %w", u.Code, domain.ErrInvalidState)
		}
		u.Status = entity.UnitStatusShipped
		from := u.Location
		appendMovement(u, entity.MovementEntry{
			Timestamp:  now,
			Kind:       entity.MovementKindExit,
			From:       &from,
			To:         nil,
			Actor:      actor,
			DocumentID: in.DocumentID,
			Notes:      in.Notes,
		})
		return true, nil
	})
}

// MarkDamaged marca la unidad como dañada (presente pero inutilizable).
// Legal desde available o reserved.
func (uc *UnitUseCase) MarkDamaged(ctx context.Context, id string, in dto.UnitActionRequest, actor string) (*entity.StockUnit, error) {
	return uc.mutate(ctx, id, func(u *entity.StockUnit, now time.Time) (bool, error) {
		if !u.CountsForLot() {
			return false, fmt.Errorf("marcar dañada la unidad %s en estado %s: %w", u.Code, u.Status, domain.ErrInvalidState)
		}
		u.Status = entity.UnitStatusDamaged
		loc := u.Location
		appendMovement(u, entity.MovementEntry{
			Timestamp: now,
			Kind:      entity.MovementKindMovement,
			From:      &loc,
			To:        &loc,
			Actor:     actor,
			Notes:     in.Notes,
		})
		return true, nil
	})
}

// AgingReport recuento del stock activo (available y reserved) por tramo de
// antigüedad. Las unidades expedidas, caducadas o dañadas no entran en los tramos.
func (uc *UnitUseCase) AgingReport(ctx context.Context, filter repository.UnitFilter) ([]dto.AgingBucketDTO, error) {
	filter.Limit = 0 // sin paginar: el reporte agrega todo el filtro
	list, err := uc.units.List(filter)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	counts := map[alert.Bucket]int{}
	for _, u := range list {
		if !u.CountsForLot() {
			continue
		}
		counts[u.AgingBucket(now)]++
	}
	out := make([]dto.AgingBucketDTO, 0, 4)
	for _, b := range []alert.Bucket{alert.Bucket0a30, alert.Bucket30a60, alert.Bucket60a90, alert.Bucket90oMas} {
		out = append(out, dto.AgingBucketDTO{Bucket: b, Units: counts[b]})
	}
	return out, nil
}

// mutate carga la unidad dentro de una transacción, materializa su caducidad,
// aplica fn y, si hubo cambio de estado, recalcula el remanente del lote en la
// misma transacción.
func (uc *UnitUseCase) mutate(ctx context.Context, id string, fn func(u *entity.StockUnit, now time.Time) (statusChanged bool, err error)) (*entity.StockUnit, error) {
	var out *entity.StockUnit
	err := uc.tx.Run(ctx, func(units repository.StockUnitRepository, lots repository.LotRepository) error {
		unit, err := units.GetByID(id)
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
		}
		now := uc.now()
		expired := materializeUnitExpiry(unit, now)
		changed, err := fn(unit, now)
		if err != nil {
			return err
		}
		unit.UpdatedAt = now
		if err := units.Update(unit); err != nil {
			return err
		}
		if expired || changed {
			lot, err := lots.GetByID(unit.LotMasterID)
			if err != nil {
				return err
			}
			if lot == nil {
				return fmt.Errorf("lote maestro %s de la unidad %s: %w", unit.LotMasterID, unit.Code, domain.ErrNotFound)
			}
			if err := recomputeRemaining(units, lots, lot, now); err != nil {
				return err
			}
		}
		out = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// materializeIfDue materializa la caducidad de una unidad leída fuera de
// transacción, abriendo una solo si hay transición pendiente.
func (uc *UnitUseCase) materializeIfDue(ctx context.Context, unit *entity.StockUnit) error {
	if !unitExpiryDue(unit, uc.now()) {
		return nil
	}
	return uc.tx.Run(ctx, func(units repository.StockUnitRepository, lots repository.LotRepository) error {
		fresh, err := units.GetByID(unit.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return nil
		}
		now := uc.now()
		expired := materializeUnitExpiry(fresh, now)
		if expired {
			if err := units.Update(fresh); err != nil {
				return err
			}
			lot, err := lots.GetByID(fresh.LotMasterID)
			if err != nil {
				return err
			}
			if lot != nil {
				if err := recomputeRemaining(units, lots, lot, now); err != nil {
					return err
				}
			}
		}
		*unit = *fresh
		return nil
	})
}

// unitExpiryDue indica transición lazy available→expired pendiente.
func unitExpiryDue(u *entity.StockUnit, now time.Time) bool {
	return u.Status == entity.UnitStatusAvailable && u.ExpiryDate != nil && u.ExpiryDate.Before(now)
}

// materializeUnitExpiry aplica la transición lazy en memoria; el caller
// persiste. Devuelve true si hubo transición.
func materializeUnitExpiry(u *entity.StockUnit, now time.Time) bool {
	if !unitExpiryDue(u, now) {
		return false
	}
	u.Status = entity.UnitStatusExpired
	u.UpdatedAt = now
	return true
}

// appendMovement añade una entrada al historial (append-only) de la unidad.
func appendMovement(u *entity.StockUnit, e entity.MovementEntry) {
	u.Movements = append(u.Movements, e)
}
