package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/delivery"
	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// DeliveryNoteHandler maneja las peticiones HTTP de albaranes (protegido).
type DeliveryNoteHandler struct {
	uc *delivery.NoteUseCase
}

// NewDeliveryNoteHandler construye el handler.
func NewDeliveryNoteHandler(uc *delivery.NoteUseCase) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{uc: uc}
}

// Create emite un albarán con número ALB correlativo por tipo y año.
func (h *DeliveryNoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	note, err := h.uc.Create(in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NoteResponseFrom(note))
}

// GetByID devuelve un albarán.
func (h *DeliveryNoteHandler) GetByID(c *fiber.Ctx) error {
	note, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NoteResponseFrom(note))
}

// List lista albaranes con filtros por tipo, estado, cliente y almacén.
func (h *DeliveryNoteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	filter := repository.NoteFilter{
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		ClientID:    c.Query("client_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	notes, err := h.uc.List(filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]*dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.NoteResponseFrom(n))
	}
	return c.JSON(fiber.Map{"total": len(out), "delivery_notes": out})
}

// Update edita un albarán no terminal. Status solo admite avanzar a processing.
func (h *DeliveryNoteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	note, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NoteResponseFrom(note))
}

// Complete completa el albarán y aplica su efecto sobre las unidades
// referenciadas (expedición o traslado) en la misma transacción.
func (h *DeliveryNoteHandler) Complete(c *fiber.Ctx) error {
	note, err := h.uc.Complete(c.Context(), c.Params("id"), GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NoteResponseFrom(note))
}

// Cancel anula un albarán no completado.
func (h *DeliveryNoteHandler) Cancel(c *fiber.Ctx) error {
	note, err := h.uc.Cancel(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NoteResponseFrom(note))
}

// Stats agregados de albaranes por estado y tipo.
func (h *DeliveryNoteHandler) Stats(c *fiber.Ctx) error {
	filter := repository.NoteFilter{
		Type:        c.Query("type"),
		ClientID:    c.Query("client_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	stats, err := h.uc.Stats(filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(stats)
}
