package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/catalog"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
)

// ArticleHandler maneja las peticiones HTTP del catálogo de artículos (protegido).
type ArticleHandler struct {
	uc *catalog.ArticleUseCase
}

// NewArticleHandler construye el handler.
func NewArticleHandler(uc *catalog.ArticleUseCase) *ArticleHandler {
	return &ArticleHandler{uc: uc}
}

// Create da de alta un artículo.
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var in struct {
		SKU  string `json:"sku"`
		Name string `json:"name"`
		Unit string `json:"unit"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	article, err := h.uc.Create(in.SKU, in.Name, in.Unit)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// GetByID devuelve un artículo.
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	article, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(article)
}

// List lista artículos paginados.
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	articles, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(articles), "articles": articles})
}

// Deactivate desactiva el artículo. Se rechaza si algún depósito activo lo referencia.
func (h *ArticleHandler) Deactivate(c *fiber.Ctx) error {
	article, err := h.uc.Deactivate(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(article)
}
