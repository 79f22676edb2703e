package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// AddReportRequest body para POST /api/reports.
type AddReportRequest struct {
	ID              string           `json:"id,omitempty" validate:"omitempty,max=64"`
	MachineID       string           `json:"machineId" validate:"required"`
	ReportType      string           `json:"reportType" validate:"required,oneof=HorasTrabajadas HorasExtras Combustible Mantenimiento Novedades Viajes RecepcionEscombrera"`
	ReportDate      string           `json:"reportDate" validate:"required"`
	Origin          string           `json:"origin,omitempty"`
	Destination     string           `json:"destination,omitempty"`
	Material        string           `json:"material,omitempty"`
	MaterialDestino string           `json:"materialDestino,omitempty"`
	Cliente         string           `json:"cliente,omitempty"`
	CantidadM3      *decimal.Decimal `json:"cantidadM3,omitempty"`
	Trips           *int             `json:"trips,omitempty" validate:"omitempty,min=0"`
	Hours           *decimal.Decimal `json:"hours,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`
}

// reportDateLayouts fechas aceptadas: ISO-8601 completo o solo día.
var reportDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ToEntity convierte el request al reporte de dominio.
func (r AddReportRequest) ToEntity() (entity.ActivityReport, error) {
	if err := Validate(r); err != nil {
		return entity.ActivityReport{}, err
	}
	rt, err := entity.ParseReportType(r.ReportType)
	if err != nil {
		return entity.ActivityReport{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fecha, err := parseDate(r.ReportDate)
	if err != nil {
		return entity.ActivityReport{}, err
	}
	return entity.ActivityReport{
		ID:              r.ID,
		MachineID:       r.MachineID,
		ReportType:      rt,
		ReportDate:      fecha,
		Origin:          r.Origin,
		Destination:     r.Destination,
		Material:        r.Material,
		MaterialDestino: r.MaterialDestino,
		Cliente:         r.Cliente,
		CantidadM3:      r.CantidadM3,
		Trips:           r.Trips,
		Hours:           r.Hours,
		Value:           r.Value,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: fecha %q no es ISO-8601", domain.ErrInvalidInput, s)
}

// MovementDTO resumen del movimiento aplicado por un reporte.
type MovementDTO struct {
	Exito             bool            `json:"exito"`
	Mensaje           string          `json:"mensaje"`
	MovimientoIDs     []string        `json:"movimientoIds,omitempty"`
	Tipo              string          `json:"tipo,omitempty"`
	Material          string          `json:"material,omitempty"`
	CantidadAnterior  decimal.Decimal `json:"cantidadAnterior"`
	CantidadPosterior decimal.Decimal `json:"cantidadPosterior"`
	StockInsuficiente bool            `json:"stockInsuficiente"`
}

// AddReportResponse respuesta de POST /api/reports.
type AddReportResponse struct {
	Exito       bool         `json:"exito"`
	Mensaje     string       `json:"mensaje"`
	Advertencia string       `json:"advertencia,omitempty"`
	ReportID    string       `json:"reportId"`
	Source      string       `json:"source"`
	Queued      int          `json:"queued"`
	Actualizado bool         `json:"actualizado"`
	VentaID     string       `json:"ventaId,omitempty"`
	Movement    *MovementDTO `json:"movement,omitempty"`
}
