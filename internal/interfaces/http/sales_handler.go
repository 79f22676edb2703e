package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/dto"
	"github.com/jhoicas/maquipaes-api/internal/application/sales"
)

// SalesHandler ventas manuales y recálculo de totales (protegido).
type SalesHandler struct {
	uc *sales.UseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.UseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// Save godoc
// @Summary      Guardar venta manual
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveSaleRequest  true  "venta"
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := in.ToEntity()
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.SaveManual(c.UserContext(), v)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleResponse{Venta: res.Venta, Source: string(res.Source), Queued: res.Queued})
}

// Recalculate godoc
// @Summary      Recalcular subtotales y total de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/recalculate [post]
func (h *SalesHandler) Recalculate(c *fiber.Ctx) error {
	res, changed, err := h.uc.Recalculate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SaleResponse{Venta: res.Venta, Source: string(res.Source), Queued: res.Queued, Changed: &changed})
}
