package repository

import "github.com/jmsanzl/custodia-api/internal/domain/entity"

// ArticleRepository puerto de persistencia para artículos de catálogo.
type ArticleRepository interface {
	Create(article *entity.Article) error
	GetByID(id string) (*entity.Article, error)
	GetBySKU(sku string) (*entity.Article, error)
	Update(article *entity.Article) error
	List(limit, offset int) ([]*entity.Article, error)
}
