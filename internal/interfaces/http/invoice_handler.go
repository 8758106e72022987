package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/billing"
	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc     *billing.InvoiceUseCase
	credit *billing.CreditNoteUseCase
	pdf    *billing.PDFUseCase
	log    zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, credit *billing.CreditNoteUseCase, pdf *billing.PDFUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, credit: credit, pdf: pdf, log: log}
}

// Create godoc
// @Summary      Crear factura
// @Description  Valida stock, asigna número y NCF, descuenta inventario en una sola operación.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateInvoiceRequest  true  "cliente, líneas, tipo de NCF"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	invoice, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "invoice", invoice)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "cliente"
// @Param        status     query  string  false  "estado"
// @Param        from       query  string  false  "desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "hasta (YYYY-MM-DD)"
// @Param        limit      query  int     false  "límite"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.InvoiceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListRequest
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.uc.List(c.Context(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"success": true, "invoices": list.Items, "page": list.Page})
}

// Get godoc
// @Summary      Obtener factura por ID
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	invoice, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "invoice", invoice)
}

// Delete godoc
// @Summary      Eliminar factura
// @Description  Repone el stock no acreditado y elimina la factura y sus pagos.
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return okMessage(c, "factura eliminada")
}

// PDF godoc
// @Summary      Descargar factura en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.InvoicePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, "application/pdf", filename, data)
}

// CreditNotes godoc
// @Summary      Notas de crédito de una factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {array}   dto.CreditNoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/credit-notes [get]
func (h *InvoiceHandler) CreditNotes(c *fiber.Ctx) error {
	notes, err := h.credit.ListByInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "credit_notes", notes)
}

// OverdueSweep godoc
// @Summary      Marcar facturas vencidas
// @Description  Pasa a Vencida las facturas con saldo cuya fecha de vencimiento ya pasó.
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OverdueSweepResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/invoices/overdue-sweep [post]
func (h *InvoiceHandler) OverdueSweep(c *fiber.Ctx) error {
	res, err := h.uc.MarkOverdue(c.Context(), time.Now())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "sweep", res)
}

// sendFile responde un adjunto binario.
func sendFile(c *fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(data)
}
