package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
)

// NCFHandler administración de secuencias NCF (solo admin).
type NCFHandler struct {
	allocator *fiscal.Allocator
	log       zerolog.Logger
}

// NewNCFHandler construye el handler.
func NewNCFHandler(allocator *fiscal.Allocator, log zerolog.Logger) *NCFHandler {
	return &NCFHandler{allocator: allocator, log: log}
}

// List godoc
// @Summary      Listar secuencias NCF
// @Tags         ncf
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.SequenceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ncf/sequences [get]
func (h *NCFHandler) List(c *fiber.Ctx) error {
	seqs, err := h.allocator.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "sequences", seqs)
}

// Set godoc
// @Summary      Fijar secuencia NCF
// @Description  Rechaza valores por debajo del último NCF emitido del tipo.
// @Tags         ncf
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path      string                  true  "tipo (B01, B02, B04, B14, B15)"
// @Param        body  body      dto.SetSequenceRequest  true  "último número usado, fin de rango, vencimiento"
// @Success      200   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ncf/sequences/{type} [put]
func (h *NCFHandler) Set(c *fiber.Ctx) error {
	var in dto.SetSequenceRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	seq, err := h.allocator.SetSequence(c.Context(), ncfTypeParam(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "sequence", seq)
}

// Resync godoc
// @Summary      Resincronizar secuencia NCF
// @Description  Lleva el contador al máximo NCF emitido del tipo.
// @Tags         ncf
// @Security     Bearer
// @Produce      json
// @Param        type  path      string  true  "tipo de NCF"
// @Success      200   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ncf/sequences/{type}/resync [post]
func (h *NCFHandler) Resync(c *fiber.Ctx) error {
	seq, err := h.allocator.Resync(c.Context(), ncfTypeParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "sequence", seq)
}

func ncfTypeParam(c *fiber.Ctx) string {
	return strings.ToUpper(strings.TrimSpace(c.Params("type")))
}
