package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/dto"
	"github.com/jhoicas/maquipaes-api/internal/application/report"
)

// ReportHandler maneja el registro de reportes de actividad (protegido).
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// AddReport godoc
// @Summary      Registrar reporte de actividad
// @Description  Guarda el reporte; si es un viaje mueve inventario del acopio y genera la venta
//
//	automática. Sin remoto disponible se guarda local y se encola.
//
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddReportRequest  true  "reporte"
// @Success      201   {object}  dto.AddReportResponse
// @Success      200   {object}  dto.AddReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) AddReport(c *fiber.Ctx) error {
	var in dto.AddReportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := in.ToEntity()
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.AddReport(c.UserContext(), r)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AddReportResponse{
		Exito:       res.Exito,
		Mensaje:     res.Mensaje,
		Advertencia: res.Advertencia,
		ReportID:    res.ReportID,
		Source:      string(res.Source),
		Queued:      res.Queued,
		Actualizado: res.Actualizado,
		VentaID:     res.VentaID,
	}
	if m := res.Movement; m != nil {
		ids := m.MovimientoIDs
		if len(ids) == 0 && m.MovimientoID != "" {
			ids = []string{m.MovimientoID}
		}
		out.Movement = &dto.MovementDTO{
			Exito:             m.Exito,
			Mensaje:           m.Mensaje,
			MovimientoIDs:     ids,
			Tipo:              string(m.Tipo),
			Material:          m.Material,
			CantidadAnterior:  m.CantidadAnterior,
			CantidadPosterior: m.CantidadPosterior,
			StockInsuficiente: m.StockInsuficiente,
		}
	}
	status := fiber.StatusCreated
	if res.Actualizado {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}
