package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// StockHandler maneja las consultas de stock y el barrido de vencidos.
type StockHandler struct {
	uc *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Get godoc
// @Summary      Stock de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  true  "ID de la sucursal"
// @Param        product_id  query  string  false "ID del producto; vacío = listar sucursal"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	productID := c.Query("product_id")
	if productID == "" {
		return h.listByBranch(c, branchID)
	}
	stock, err := h.uc.GetStock(c.Context(), branchID, productID)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.ToStockResponse(stock))
}

func (h *StockHandler) listByBranch(c *fiber.Ctx, branchID string) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	stocks, err := h.uc.ListByBranch(c.Context(), branchID, page.Limit, page.Offset)
	if err != nil {
		return stockError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.ToStockResponse(s))
	}
	return c.JSON(out)
}

// Sellable godoc
// @Summary      Cantidad vendible (solo lotes ACTIVE)
// @Description  Los lotes ON_HOLD (cuarentena de traslado) y EXPIRED quedan fuera.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  true  "ID de la sucursal"
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/sellable [get]
func (h *StockHandler) Sellable(c *fiber.Ctx) error {
	qty, err := h.uc.SellableQuantity(c.Context(), c.Query("branch_id"), c.Query("product_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"sellable_quantity": qty})
}

// ExpirySweep godoc
// @Summary      Pasar a EXPIRED los lotes ACTIVE vencidos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/stock/expiry-sweep [post]
func (h *StockHandler) ExpirySweep(c *fiber.Ctx) error {
	updated, err := h.uc.ExpirySweep(c.Context(), time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"expired_batches": updated})
}

func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id y product_id son requeridos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sucursal no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
