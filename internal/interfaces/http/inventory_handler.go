package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc            *inventory.InventoryUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.InventoryUseCase, replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment, log: log}
}

// AddStock godoc
// @Summary      Entrada de mercancía
// @Description  Suma stock, registra una ENTRADA y recalcula el costo promedio si viene unit_cost.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID del producto"
// @Param        body  body      dto.AddStockRequest  true  "cantidad, fecha, costo unitario"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [post]
func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.uc.AddProductStock(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "stock", res)
}

// Adjust godoc
// @Summary      Ajuste de inventario
// @Description  Delta positivo o negativo; nunca deja el stock por debajo de cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID del producto"
// @Param        body  body      dto.AdjustStockRequest  true  "delta y motivo"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.uc.AdjustStock(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "stock", res)
}

// Movements godoc
// @Summary      Movimientos del mes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        month       query  int     false  "mes (1-12), por defecto el actual"
// @Param        year        query  int     false  "año, por defecto el actual"
// @Param        product_id  query  string  false  "producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementsQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, h.log, err)
	}
	movements, err := h.uc.ListMovements(c.Context(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "movements", movements)
}

// Export godoc
// @Summary      Exportar movimientos del mes a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        month  query  int  false  "mes (1-12)"
// @Param        year   query  int  false  "año"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	var q dto.MovementsQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, h.log, err)
	}
	data, filename, err := h.uc.ExportMovements(c.Context(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, xlsxContentType, filename, data)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos en o bajo su mínimo con la cantidad sugerida, priorizados por salidas de 90 días.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"total":          len(list),
		"replenishments": list,
	})
}
