package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/dto"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
)

// InventoryHandler saldos del acopio y ajustes manuales (protegido).
type InventoryHandler struct {
	uc *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Balances godoc
// @Summary      Saldos del acopio por material
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) Balances(c *fiber.Ctx) error {
	items, src, err := h.uc.Balances(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.InventoryResponse{Source: string(src), Items: make([]dto.InventoryItemDTO, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, dto.InventoryItemDTO{
			Material:           it.Material,
			CantidadDisponible: it.CantidadDisponible,
			UpdatedAt:          it.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste manual de inventario
// @Description  Corrección del saldo mediante un asiento ajuste_manual; no se editan asientos previos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "material, cantidad con signo, observaciones"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	obs := in.Observaciones
	if user := GetUserID(c); user != "" {
		if obs != "" {
			obs += " "
		}
		obs += "(por " + user + ")"
	}
	res, err := h.uc.RegisterAdjustment(c.UserContext(), in.Material, in.Cantidad, obs)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustmentResponse{
		MovimientoID:      res.MovimientoID,
		Material:          res.Material,
		CantidadAnterior:  res.CantidadAnterior,
		CantidadPosterior: res.CantidadPosterior,
		Source:            string(res.Source),
	})
}
