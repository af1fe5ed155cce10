package traceability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// LotUseCase registro de lotes: agrupación de unidades por origen, remanente
// derivado y caducidad lazy.
type LotUseCase struct {
	lots     repository.LotRepository
	units    repository.StockUnitRepository
	articles repository.ArticleRepository
	now      func() time.Time
}

// NewLotUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewLotUseCase(
	lots repository.LotRepository,
	units repository.StockUnitRepository,
	articles repository.ArticleRepository,
	nowFn func() time.Time,
) *LotUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LotUseCase{lots: lots, units: units, articles: articles, now: nowFn}
}

// CreateMaster crea un lote maestro. El remanente se inicializa a la cantidad
// declarada; pasa a ser derivado (recuento de unidades) en el primer recálculo.
func (uc *LotUseCase) CreateMaster(in dto.CreateLotRequest) (*entity.Lot, error) {
	if in.Code == "" || in.ArticleID == "" {
		return nil, fmt.Errorf("crear lote: código y artículo requeridos: %w", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("crear lote %s: cantidad %d no positiva: %w", in.Code, in.Quantity, domain.ErrValidation)
	}
	article, err := uc.articles.GetByID(in.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("crear lote %s: artículo %s: %w", in.Code, in.ArticleID, domain.ErrValidation)
	}
	now := uc.now()
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		Code:              in.Code,
		Type:              entity.LotTypeMaster,
		ArticleID:         in.ArticleID,
		DeclaredQuantity:  in.Quantity,
		RemainingQuantity: in.Quantity,
		ManufacturingDate: in.ManufacturingDate,
		ExpiryDate:        in.ExpiryDate,
		Status:            entity.LotStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.lots.Create(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// CreateExpo crea un lote de exposición tallado de un lote maestro. No se
// decrementa la cantidad declarada del padre: el remanente vía unidades es la
// única contabilidad autoritativa.
func (uc *LotUseCase) CreateExpo(parentLotID string, in dto.CreateExpoLotRequest) (*entity.Lot, error) {
	if in.Code == "" {
		return nil, fmt.Errorf("crear lote expo: código requerido: %w", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("crear lote expo %s: cantidad %d no positiva: %w", in.Code, in.Quantity, domain.ErrValidation)
	}
	parent, err := uc.lots.GetByID(parentLotID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("crear lote expo %s: lote padre %s: %w", in.Code, parentLotID, domain.ErrNotFound)
	}
	if parent.Type != entity.LotTypeMaster {
		return nil, fmt.Errorf("crear lote expo %s: el padre %s no es un lote maestro: %w", in.Code, parent.Code, domain.ErrValidation)
	}
	now := uc.now()
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		Code:              in.Code,
		Type:              entity.LotTypeExpo,
		ArticleID:         parent.ArticleID,
		ParentLotID:       parent.ID,
		DeclaredQuantity:  in.Quantity,
		RemainingQuantity: in.Quantity,
		ManufacturingDate: parent.ManufacturingDate,
		ExpiryDate:        parent.ExpiryDate,
		Status:            entity.LotStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.lots.Create(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// Get obtiene un lote materializando primero su caducidad lazy.
func (uc *LotUseCase) Get(id string) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	if err := materializeLotExpiry(uc.lots, lot, uc.now()); err != nil {
		return nil, err
	}
	return lot, nil
}

// List lista lotes materializando la caducidad de los vencidos.
func (uc *LotUseCase) List(limit, offset int) ([]*entity.Lot, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.lots.List(limit, offset)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	for _, lot := range list {
		if err := materializeLotExpiry(uc.lots, lot, now); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ExpiringWithin lotes activos que caducan dentro de days días. Los lotes con
// caducidad ya pasada se materializan a expired y no figuran en el aviso: ese
// conjunto pertenece a Expired.
func (uc *LotUseCase) ExpiringWithin(days int) ([]*entity.Lot, error) {
	if days <= 0 {
		return nil, fmt.Errorf("lotes por caducar: días %d no positivo: %w", days, domain.ErrValidation)
	}
	now := uc.now()
	deadline := now.AddDate(0, 0, days)
	list, err := uc.lots.ExpiringBefore(deadline)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Lot, 0, len(list))
	for _, lot := range list {
		if lot.ExpiryDue(now) {
			if err := materializeLotExpiry(uc.lots, lot, now); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, lot)
	}
	return out, nil
}

// Expired lotes ya caducados; materializa los que aún figuren activos.
func (uc *LotUseCase) Expired() ([]*entity.Lot, error) {
	now := uc.now()
	list, err := uc.lots.Expired(now)
	if err != nil {
		return nil, err
	}
	for _, lot := range list {
		if err := materializeLotExpiry(uc.lots, lot, now); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// RecomputeRemaining recalcula el remanente de un lote desde el recuento de
// unidades. Expuesto para reconciliación manual; la vía normal es el recálculo
// síncrono tras cada cambio de estado de unidad.
func (uc *LotUseCase) RecomputeRemaining(lotID string) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("lote %s: %w", lotID, domain.ErrNotFound)
	}
	if err := recomputeRemaining(uc.units, uc.lots, lot, uc.now()); err != nil {
		return nil, err
	}
	return lot, nil
}

// materializeLotExpiry transición lazy active→expired cuando la caducidad ya
// pasó. Idempotente; se invoca al inicio de cada lectura/mutación sobre lotes.
func materializeLotExpiry(lots repository.LotRepository, lot *entity.Lot, now time.Time) error {
	if !lot.ExpiryDue(now) {
		return nil
	}
	lot.Status = entity.LotStatusExpired
	lot.UpdatedAt = now
	if err := lots.Update(lot); err != nil {
		return fmt.Errorf("materializar caducidad del lote %s: %w", lot.Code, err)
	}
	return nil
}

// recomputeRemaining recuenta unidades en {available, reserved} del lote y
// actualiza el remanente. Con remanente cero el lote pasa a depleted, salvo
// que ya esté expired o blocked.
func recomputeRemaining(units repository.StockUnitRepository, lots repository.LotRepository, lot *entity.Lot, now time.Time) error {
	count, err := units.CountActiveByLot(lot.ID)
	if err != nil {
		return fmt.Errorf("recontar unidades del lote %s: %w", lot.Code, err)
	}
	lot.RemainingQuantity = count
	if count == 0 && lot.Status == entity.LotStatusActive {
		lot.Status = entity.LotStatusDepleted
	}
	lot.UpdatedAt = now
	if err := lots.Update(lot); err != nil {
		return fmt.Errorf("actualizar remanente del lote %s: %w", lot.Code, err)
	}
	return nil
}
