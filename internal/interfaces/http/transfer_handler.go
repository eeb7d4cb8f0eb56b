package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	apptransfer "github.com/jhoicas/Farmacia-api/internal/application/transfer"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TransferHandler maneja el flujo de traslados: despacho, verificación del
// bodeguero, verificación del controlador, listados y la guía PDF.
type TransferHandler struct {
	uc *apptransfer.WorkflowUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *apptransfer.WorkflowUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Dispatch godoc
// @Summary      Despachar un traslado entre sucursales
// @Description  Crea el traslado en IN_TRANSIT con sus dos códigos de verificación.
//
//	Los códigos se devuelven UNA sola vez en esta respuesta.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchTransferRequest  true  "source_branch_id, target_branch_id, items, notes"
// @Success      201   {object}  dto.DispatchTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.DispatchTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.uc.Dispatch(c.Context(), GetUserID(c), in)
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToDispatchResponse(t))
}

// VerifyKeeper godoc
// @Summary      Verificación del bodeguero (código 1)
// @Description  Con código correcto los lotes entran al destino en ON_HOLD y el
//
//	traslado pasa a RECEIVED_KEEPER. Intentos ilimitados; un código
//	incorrecto no muta nada.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del traslado"
// @Param        body  body  dto.VerifyCodeRequest  true  "code"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/verify-keeper [post]
func (h *TransferHandler) VerifyKeeper(c *fiber.Ctx) error {
	var in dto.VerifyCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.uc.VerifyKeeper(c.Context(), c.Params("id"), in.Code, GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// VerifyController godoc
// @Summary      Verificación del controlador (código 2)
// @Description  Con código correcto los lotes ON_HOLD pasan a ACTIVE (quedan
//
//	vendibles) y el traslado queda COMPLETED.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del traslado"
// @Param        body  body  dto.VerifyCodeRequest  true  "code"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/verify-controller [post]
func (h *TransferHandler) VerifyController(c *fiber.Ctx) error {
	var in dto.VerifyCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.uc.VerifyController(c.Context(), c.Params("id"), in.Code, GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// GetByID godoc
// @Summary      Obtener un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Description  La casa matriz ve todos; las demás sucursales solo aquellos
//
//	donde son origen o destino.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        source_branch_id  query  string  false  "Filtrar por origen"
// @Param        target_branch_id  query  string  false  "Filtrar por destino"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.TransferFilter{
		SourceBranchID: c.Query("source_branch_id"),
		TargetBranchID: c.Query("target_branch_id"),
	}
	transfers, err := h.uc.List(c.Context(), GetBranchID(c), filter, page.Limit, page.Offset)
	if err != nil {
		return transferError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, dto.ToTransferResponse(t))
	}
	return c.JSON(out)
}

// TransferNotePDF godoc
// @Summary      Guía de traslado en PDF
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/pdf [get]
func (h *TransferHandler) TransferNotePDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.TransferNotePDF(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="guia-traslado.pdf"`)
	return c.Send(pdfBytes)
}

// transferError mapea los errores del motor a HTTP: 400 validación, 404 no
// encontrado, 409 conflicto de estado, 422 código incorrecto.
func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "traslado no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en la sucursal origen"})
	case errors.Is(err, domain.ErrInvalidTransferState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "el traslado no está en el estado esperado"})
	case errors.Is(err, domain.ErrInvalidKeeperCode), errors.Is(err, domain.ErrInvalidControllerCode):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_CODE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
