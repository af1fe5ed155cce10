package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/catalog"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
)

// WarehouseHandler maneja las peticiones HTTP del catálogo de almacenes (protegido).
type WarehouseHandler struct {
	uc *catalog.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *catalog.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// Create da de alta un almacén.
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	wh, err := h.uc.Create(in.Name, in.Address)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(wh)
}

// GetByID devuelve un almacén.
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	wh, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(wh)
}

// List lista almacenes paginados.
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	whs, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(whs), "warehouses": whs})
}
