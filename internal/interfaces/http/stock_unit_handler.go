package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/application/traceability"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// StockUnitHandler maneja las peticiones HTTP de unidades trazables (protegido).
type StockUnitHandler struct {
	uc *traceability.UnitUseCase
}

// NewStockUnitHandler construye el handler.
func NewStockUnitHandler(uc *traceability.UnitUseCase) *StockUnitHandler {
	return &StockUnitHandler{uc: uc}
}

// Create alta en bloque: registra Quantity unidades bajo el mismo lote y
// ubicación, cada una con su código TRZ propio.
func (h *StockUnitHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUnitsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	units, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.UnitResponseFrom(u, now))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"total": len(out), "units": out})
}

// GetByID devuelve una unidad con sus derivados (edad, alertas, último movimiento).
func (h *StockUnitHandler) GetByID(c *fiber.Ctx) error {
	unit, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// List lista unidades con filtros por cliente, almacén, artículo, lote y estado.
func (h *StockUnitHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	filter := repository.UnitFilter{
		ClientID:    c.Query("client_id"),
		WarehouseID: c.Query("warehouse_id"),
		Location:    c.Query("location"),
		ArticleID:   c.Query("article_id"),
		LotID:       c.Query("lot_id"),
		Status:      c.Query("status"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	units, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	now := time.Now()
	out := make([]*dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.UnitResponseFrom(u, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "units": out})
}

// Move traslada la unidad a otra ubicación y añade la entrada al log.
func (h *StockUnitHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unit, err := h.uc.Move(c.Context(), c.Params("id"), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// Reserve pasa la unidad de available a reserved.
func (h *StockUnitHandler) Reserve(c *fiber.Ctx) error {
	var in dto.UnitActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unit, err := h.uc.Reserve(c.Context(), c.Params("id"), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// Release devuelve la unidad de reserved a available.
func (h *StockUnitHandler) Release(c *fiber.Ctx) error {
	var in dto.UnitActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unit, err := h.uc.Release(c.Context(), c.Params("id"), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// Ship expide la unidad (estado terminal shipped).
func (h *StockUnitHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unit, err := h.uc.Ship(c.Context(), c.Params("id"), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// Damage marca la unidad como dañada (estado terminal damaged).
func (h *StockUnitHandler) Damage(c *fiber.Ctx) error {
	var in dto.UnitActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unit, err := h.uc.MarkDamaged(c.Context(), c.Params("id"), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.UnitResponseFrom(unit, time.Now()))
}

// AgingReport agrupa el stock activo en tramos de antigüedad (0-30, 30-60, 60-90, 90+).
func (h *StockUnitHandler) AgingReport(c *fiber.Ctx) error {
	filter := repository.UnitFilter{
		ClientID:    c.Query("client_id"),
		WarehouseID: c.Query("warehouse_id"),
		ArticleID:   c.Query("article_id"),
	}
	report, err := h.uc.AgingReport(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"buckets": report})
}
