package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/catalog"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
)

// ClientHandler maneja las peticiones HTTP del catálogo de clientes (protegido).
type ClientHandler struct {
	uc *catalog.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *catalog.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Create da de alta un cliente depositante.
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in struct {
		TaxID string `json:"tax_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	client, err := h.uc.Create(in.TaxID, in.Name, in.Email, in.Phone)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// GetByID devuelve un cliente.
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	client, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(client)
}

// List lista clientes paginados.
func (h *ClientHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	clients, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(clients), "clients": clients})
}
