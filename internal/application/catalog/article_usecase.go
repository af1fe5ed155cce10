package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// DepositReferenceChecker contrato expuesto por el motor de depósitos:
// indica si un artículo sigue referenciado por depósitos active/partial.
type DepositReferenceChecker interface {
	HasActiveReference(articleID string) (bool, error)
}

// ArticleUseCase catálogo de artículos con guarda de desactivación.
type ArticleUseCase struct {
	articles repository.ArticleRepository
	deposits DepositReferenceChecker
	now      func() time.Time
}

// NewArticleUseCase construye el caso de uso. nowFn nil usa time.Now.
func NewArticleUseCase(articles repository.ArticleRepository, deposits DepositReferenceChecker, nowFn func() time.Time) *ArticleUseCase {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &ArticleUseCase{articles: articles, deposits: deposits, now: nowFn}
}

// Create da de alta un artículo activo.
func (uc *ArticleUseCase) Create(sku, name, unit string) (*entity.Article, error) {
	if sku == "" || name == "" {
		return nil, fmt.Errorf("crear artículo: SKU y nombre requeridos: %w", domain.ErrValidation)
	}
	existing, err := uc.articles.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("crear artículo: SKU %s ya existe: %w", sku, domain.ErrConflict)
	}
	now := uc.now()
	article := &entity.Article{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      name,
		Unit:      unit,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.articles.Create(article); err != nil {
		return nil, err
	}
	return article, nil
}

// Get obtiene un artículo por ID.
func (uc *ArticleUseCase) Get(id string) (*entity.Article, error) {
	article, err := uc.articles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("artículo %s: %w", id, domain.ErrNotFound)
	}
	return article, nil
}

// List lista artículos.
func (uc *ArticleUseCase) List(limit, offset int) ([]*entity.Article, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.articles.List(limit, offset)
}

// Deactivate desactiva un artículo. Rechazado mientras un depósito
// active/partial lo referencie.
func (uc *ArticleUseCase) Deactivate(id string) (*entity.Article, error) {
	article, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	referenced, err := uc.deposits.HasActiveReference(id)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, fmt.Errorf("desactivar artículo %s referenciado por depósitos activos: %w", article.SKU, domain.ErrInvalidState)
	}
	article.Active = false
	article.UpdatedAt = uc.now()
	if err := uc.articles.Update(article); err != nil {
		return nil, err
	}
	return article, nil
}
