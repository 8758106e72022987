package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
)

// CreditNoteHandler notas de crédito (B04).
type CreditNoteHandler struct {
	uc  *billing.CreditNoteUseCase
	pdf *billing.PDFUseCase
	log zerolog.Logger
}

// NewCreditNoteHandler construye el handler.
func NewCreditNoteHandler(uc *billing.CreditNoteUseCase, pdf *billing.PDFUseCase, log zerolog.Logger) *CreditNoteHandler {
	return &CreditNoteHandler{uc: uc, pdf: pdf, log: log}
}

// Create godoc
// @Summary      Emitir nota de crédito
// @Description  Acredita líneas de una factura, repone su stock y asigna un NCF B04.
// @Tags         credit-notes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateCreditNoteRequest  true  "factura, motivo y líneas"
// @Success      201   {object}  dto.CreditNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit-notes [post]
func (h *CreditNoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCreditNoteRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	note, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "credit_note", note)
}

// Get godoc
// @Summary      Obtener nota de crédito
// @Tags         credit-notes
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la nota"
// @Success      200  {object}  dto.CreditNoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-notes/{id} [get]
func (h *CreditNoteHandler) Get(c *fiber.Ctx) error {
	note, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "credit_note", note)
}

// PDF godoc
// @Summary      Descargar nota de crédito en PDF
// @Tags         credit-notes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la nota"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-notes/{id}/pdf [get]
func (h *CreditNoteHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.CreditNotePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, "application/pdf", filename, data)
}
