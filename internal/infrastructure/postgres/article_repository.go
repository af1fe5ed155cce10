package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación de ArticleRepository sobre PostgreSQL.
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// Create persiste un artículo nuevo. SKU duplicado -> domain.ErrConflict.
func (r *ArticleRepo) Create(article *entity.Article) error {
	query := `
		INSERT INTO articles (id, sku, name, unit, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		article.ID, article.SKU, article.Name, article.Unit, article.Active,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("SKU %s ya existe: %w", article.SKU, domain.ErrConflict)
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID (nil si no existe).
func (r *ArticleRepo) GetByID(id string) (*entity.Article, error) {
	return r.getOne(`SELECT id, sku, name, unit, active, created_at, updated_at FROM articles WHERE id = $1`, id)
}

// GetBySKU obtiene un artículo por SKU (nil si no existe).
func (r *ArticleRepo) GetBySKU(sku string) (*entity.Article, error) {
	return r.getOne(`SELECT id, sku, name, unit, active, created_at, updated_at FROM articles WHERE sku = $1`, sku)
}

func (r *ArticleRepo) getOne(query string, arg any) (*entity.Article, error) {
	var a entity.Article
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&a.ID, &a.SKU, &a.Name, &a.Unit, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

// Update persiste nombre, unidad y estado activo.
func (r *ArticleRepo) Update(article *entity.Article) error {
	query := `UPDATE articles SET name = $2, unit = $3, active = $4, updated_at = $5 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		article.ID, article.Name, article.Unit, article.Active, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// List lista artículos paginados.
func (r *ArticleRepo) List(limit, offset int) ([]*entity.Article, error) {
	query := `SELECT id, sku, name, unit, active, created_at, updated_at FROM articles ORDER BY sku LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []*entity.Article
	for rows.Next() {
		var a entity.Article
		if err := rows.Scan(&a.ID, &a.SKU, &a.Name, &a.Unit, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
