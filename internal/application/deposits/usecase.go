package deposits

import (
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

// UseCase seguimiento de depósitos de cliente: líneas con valor, total
// derivado, vencimiento con alertas y ciclo de vida con estados terminales.
type UseCase struct {
	deposits repository.DepositRepository
	clients  repository.ClientRepository
	articles repository.ArticleRepository
	seq      *sequence.Generator
	now      func() time.Time
}

// NewUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewUseCase(
	deposits repository.DepositRepository,
	clients repository.ClientRepository,
	articles repository.ArticleRepository,
	seq *sequence.Generator,
	nowFn func() time.Time,
) *UseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &UseCase{deposits: deposits, clients: clients, articles: articles, seq: seq, now: nowFn}
}

// Create crea un depósito activo. Cada línea se enriquece con nombre y SKU del
// artículo en el momento del alta (desnormalización deliberada para sobrevivir
// renombres); el código se autogenera si no viene.
func (uc *UseCase) Create(in dto.CreateDepositRequest) (*entity.Deposit, error) {
	if in.ClientID == "" {
		return nil, fmt.Errorf("crear depósito: cliente requerido: %w", domain.ErrValidation)
	}
	client, err := uc.clients.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("crear depósito: cliente %s: %w", in.ClientID, domain.ErrNotFound)
	}
	now := uc.now()
	received := in.ReceivedDate
	if received.IsZero() {
		received = now
	}
	items := make([]entity.DepositItem, 0, len(in.Items))
	for _, it := range in.Items {
		item, err := uc.enrichItem(it, received)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	deposit := &entity.Deposit{
		ID:           uuid.New().String(),
		Code:         in.Code,
		ClientID:     client.ID,
		ClientName:   client.Name,
		Warehouse:    in.Warehouse,
		Location:     in.Location,
		Items:        items,
		Status:       entity.DepositStatusActive,
		ReceivedDate: received,
		DueDate:      in.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	deposit.RecomputeTotal()
	if err := uc.createWithFreshCode(deposit, in.Code == ""); err != nil {
		return nil, err
	}
	return deposit, nil
}

// createWithFreshCode autogenera código si falta y persiste; con código
// autogenerado reintenta una única vez ante conflicto de unicidad.
func (uc *UseCase) createWithFreshCode(deposit *entity.Deposit, generated bool) error {
	attempts := 1
	if generated {
		attempts = 2
	}
	for i := 0; i < attempts; i++ {
		if generated {
			code, err := uc.seq.NextDepositCode()
			if err != nil {
				return err
			}
			deposit.Code = code
		}
		err := uc.deposits.Create(deposit)
		if err == nil {
			return nil
		}
		if !generated || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("crear depósito: código duplicado tras reintento: %w", domain.ErrConflict)
}

// Get obtiene un depósito por ID.
func (uc *UseCase) Get(id string) (*entity.Deposit, error) {
	deposit, err := uc.deposits.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, fmt.Errorf("depósito %s: %w", id, domain.ErrNotFound)
	}
	return deposit, nil
}

// List lista depósitos por filtro.
func (uc *UseCase) List(filter repository.DepositFilter) ([]*entity.Deposit, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.deposits.List(filter)
}

// Update edita campos generales. Legal solo mientras el depósito es mutable.
func (uc *UseCase) Update(id string, in dto.UpdateDepositRequest) (*entity.Deposit, error) {
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if !deposit.IsMutable() {
		return nil, fmt.Errorf("editar depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	if in.Warehouse != nil {
		deposit.Warehouse = *in.Warehouse
	}
	if in.Location != nil {
		deposit.Location = *in.Location
	}
	if in.DueDate != nil {
		deposit.DueDate = in.DueDate
	}
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// AddItem añade una línea y recalcula el total. Legal solo en active/partial.
func (uc *UseCase) AddItem(id string, in dto.DepositItemRequest) (*entity.Deposit, error) {
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if !deposit.IsMutable() {
		return nil, fmt.Errorf("añadir línea al depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	item, err := uc.enrichItem(in, uc.now())
	if err != nil {
		return nil, err
	}
	deposit.Items = append(deposit.Items, *item)
	deposit.RecomputeTotal()
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// RemoveItem retira una línea y recalcula el total. Legal solo en active/partial.
func (uc *UseCase) RemoveItem(id, itemID string) (*entity.Deposit, error) {
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if !deposit.IsMutable() {
		return nil, fmt.Errorf("retirar línea del depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	idx := -1
	for i, it := range deposit.Items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("línea %s del depósito %s: %w", itemID, deposit.Code, domain.ErrNotFound)
	}
	deposit.Items = append(deposit.Items[:idx], deposit.Items[idx+1:]...)
	deposit.RecomputeTotal()
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// Close cierra el depósito (terminal). Legal salvo que ya sea terminal.
func (uc *UseCase) Close(id string) (*entity.Deposit, error) {
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if deposit.IsTerminal() {
		return nil, fmt.Errorf("cerrar depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	deposit.Status = entity.DepositStatusClosed
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// Cancel anula el depósito. Rechazado en closed/invoiced: esos requieren un
// flujo de reversión, no un borrado.
func (uc *UseCase) Cancel(id string) (*entity.Deposit, error) {
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if deposit.Status == entity.DepositStatusClosed || deposit.Status == entity.DepositStatusInvoiced {
		return nil, fmt.Errorf("anular depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	if deposit.Status == entity.DepositStatusCancelled {
		return nil, fmt.Errorf("anular depósito %s ya anulado: %w", deposit.Code, domain.ErrInvalidState)
	}
	deposit.Status = entity.DepositStatusCancelled
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// SetBillingStatus refleja el estado de facturación externo (invoiced/partial).
// Ningún otro estado puede fijarse por esta vía.
func (uc *UseCase) SetBillingStatus(id, status string) (*entity.Deposit, error) {
	if status != entity.DepositStatusInvoiced && status != entity.DepositStatusPartial {
		return nil, fmt.Errorf("estado de facturación %q no admitido: %w", status, domain.ErrValidation)
	}
	deposit, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if deposit.IsTerminal() {
		return nil, fmt.Errorf("facturar depósito %s en estado %s: %w", deposit.Code, deposit.Status, domain.ErrInvalidState)
	}
	deposit.Status = status
	deposit.UpdatedAt = uc.now()
	if err := uc.deposits.Update(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// HasActiveReference true si algún depósito active/partial referencia el
// artículo. Lo consume la guarda de desactivación de artículos.
func (uc *UseCase) HasActiveReference(articleID string) (bool, error) {
	return uc.deposits.ExistsActiveByArticle(articleID)
}

// enrichItem valida la línea y desnormaliza nombre y SKU del artículo.
func (uc *UseCase) enrichItem(in dto.DepositItemRequest, fallbackReceived time.Time) (*entity.DepositItem, error) {
	if in.ArticleID == "" {
		return nil, fmt.Errorf("línea de depósito: artículo requerido: %w", domain.ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("línea de depósito: cantidad %s no positiva: %w", in.Quantity, domain.ErrValidation)
	}
	if in.Value.IsNegative() {
		return nil, fmt.Errorf("línea de depósito: valor %s negativo: %w", in.Value, domain.ErrValidation)
	}
	article, err := uc.articles.GetByID(in.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("línea de depósito: artículo %s: %w", in.ArticleID, domain.ErrValidation)
	}
	received := in.ReceivedDate
	if received.IsZero() {
		received = fallbackReceived
	}
	return &entity.DepositItem{
		ID:           uuid.New().String(),
		ArticleID:    article.ID,
		ArticleName:  article.Name,
		ArticleSKU:   article.SKU,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		Value:        in.Value,
		ReceivedDate: received,
		ExpiryDate:   in.ExpiryDate,
		LotNumber:    in.LotNumber,
	}, nil
}
