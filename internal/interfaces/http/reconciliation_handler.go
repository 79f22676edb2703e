package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/dto"
	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/xmlexport"
)

// ReportPDFGenerator genera el PDF del informe de conciliación.
type ReportPDFGenerator interface {
	Generate(ctx context.Context, rep reconciliation.Report) ([]byte, error)
}

// ReconciliationHandler ejecuta la conciliación bajo demanda.
type ReconciliationHandler struct {
	checker *reconciliation.Checker
	pdf     ReportPDFGenerator
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(checker *reconciliation.Checker, pdf ReportPDFGenerator) *ReconciliationHandler {
	return &ReconciliationHandler{checker: checker, pdf: pdf}
}

// Run godoc
// @Summary      Conciliación de reportes, inventario y ventas
// @Description  Solo informa discrepancias; no corrige datos.
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Produce      application/xml
// @Param        format  query  string  false  "json (defecto) | pdf | xml"
// @Success      200  {object}  reconciliation.Report
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reconciliation [get]
func (h *ReconciliationHandler) Run(c *fiber.Ctx) error {
	format := c.Query("format", "json")
	if format != "json" && format != "pdf" && format != "xml" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "format debe ser json, pdf o xml"})
	}
	rep, err := h.checker.Run(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	switch format {
	case "pdf":
		if h.pdf == nil {
			return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_UNAVAILABLE", Message: "generador PDF no configurado"})
		}
		body, err := h.pdf.Generate(c.UserContext(), rep)
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="conciliacion.pdf"`)
		return c.Send(body)
	case "xml":
		body, err := xmlexport.Reconciliation(rep)
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		return c.Send(body)
	}
	return c.JSON(rep)
}
