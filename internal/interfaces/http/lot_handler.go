package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/application/traceability"
)

// LotHandler maneja las peticiones HTTP del registro de lotes (protegido).
type LotHandler struct {
	uc *traceability.LotUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *traceability.LotUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create crea un lote maestro.
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lot, err := h.uc.CreateMaster(in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LotResponseFrom(lot, time.Now()))
}

// CreateExpo crea un lote de exportación derivado del lote maestro :id.
func (h *LotHandler) CreateExpo(c *fiber.Ctx) error {
	var in dto.CreateExpoLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lot, err := h.uc.CreateExpo(c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LotResponseFrom(lot, time.Now()))
}

// GetByID devuelve un lote con su remanente y nivel de alerta de caducidad.
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.LotResponseFrom(lot, time.Now()))
}

// List lista lotes paginados.
func (h *LotHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	lots, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponseFrom(l, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// Expiring lotes activos que caducan dentro de ?days días (por defecto 30).
func (h *LotHandler) Expiring(c *fiber.Ctx) error {
	days := 30
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser un entero no negativo"})
		}
		days = n
	}
	lots, err := h.uc.ExpiringWithin(days)
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponseFrom(l, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// Expired lotes ya caducados.
func (h *LotHandler) Expired(c *fiber.Ctx) error {
	lots, err := h.uc.Expired()
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponseFrom(l, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// Recompute recalcula el remanente del lote a partir de sus unidades activas.
func (h *LotHandler) Recompute(c *fiber.Ctx) error {
	lot, err := h.uc.RecomputeRemaining(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.LotResponseFrom(lot, time.Now()))
}
