package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/deposits"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// DepositHandler maneja las peticiones HTTP de depósitos de cliente (protegido).
type DepositHandler struct {
	uc *deposits.UseCase
}

// NewDepositHandler construye el handler.
func NewDepositHandler(uc *deposits.UseCase) *DepositHandler {
	return &DepositHandler{uc: uc}
}

// Create registra un depósito. Code vacío = código DEP autogenerado.
func (h *DepositHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDepositRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dep, err := h.uc.Create(in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// GetByID devuelve un depósito con sus derivados de vencimiento.
func (h *DepositHandler) GetByID(c *fiber.Ctx) error {
	dep, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// List lista depósitos con filtros por cliente y estado.
func (h *DepositHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	filter := repository.DepositFilter{
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	deps, err := h.uc.List(filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.DepositResponse, 0, len(deps))
	for _, d := range deps {
		out = append(out, dto.DepositResponseFrom(d, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "deposits": out})
}

// Update edita almacén, ubicación o vencimiento mientras el depósito es mutable.
func (h *DepositHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDepositRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dep, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// AddItem añade una línea; el total se recalcula en el servidor.
func (h *DepositHandler) AddItem(c *fiber.Ctx) error {
	var in dto.DepositItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dep, err := h.uc.AddItem(c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// RemoveItem elimina la línea :itemId; el total se recalcula en el servidor.
func (h *DepositHandler) RemoveItem(c *fiber.Ctx) error {
	dep, err := h.uc.RemoveItem(c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// Close cierra el depósito (estado terminal closed).
func (h *DepositHandler) Close(c *fiber.Ctx) error {
	dep, err := h.uc.Close(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// Cancel anula el depósito.
func (h *DepositHandler) Cancel(c *fiber.Ctx) error {
	dep, err := h.uc.Cancel(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}

// SetBillingStatus marca el depósito como facturado total o parcialmente.
func (h *DepositHandler) SetBillingStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dep, err := h.uc.SetBillingStatus(c.Params("id"), in.Status)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.DepositResponseFrom(dep, time.Now()))
}
