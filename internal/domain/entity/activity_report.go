package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType tipos de reporte de actividad de una máquina.
type ReportType string

const (
	ReportHorasTrabajadas     ReportType = "HorasTrabajadas"
	ReportHorasExtras         ReportType = "HorasExtras"
	ReportCombustible         ReportType = "Combustible"
	ReportMantenimiento       ReportType = "Mantenimiento"
	ReportNovedades           ReportType = "Novedades"
	ReportViajes              ReportType = "Viajes"
	ReportRecepcionEscombrera ReportType = "RecepcionEscombrera"
)

// ParseReportType convierte el valor recibido en el borde; valores desconocidos se rechazan.
func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(s); t {
	case ReportHorasTrabajadas, ReportHorasExtras, ReportCombustible, ReportMantenimiento,
		ReportNovedades, ReportViajes, ReportRecepcionEscombrera:
		return t, nil
	}
	return "", fmt.Errorf("tipo de reporte desconocido %q", s)
}

// IsTrip indica si el reporte mueve material (viajes o recepción en escombrera).
func (t ReportType) IsTrip() bool {
	return t == ReportViajes || t == ReportRecepcionEscombrera
}

// IsHours indica si el reporte registra horas de trabajo.
func (t ReportType) IsHours() bool {
	return t == ReportHorasTrabajadas || t == ReportHorasExtras
}

// ActivityReport reporte de actividad creado por la capa de formularios.
// Los campos de procesamiento (TarifaEncontrada, ProcesamientoOmitido, MensajeProcesamiento)
// los fija el orquestador al registrar el reporte.
type ActivityReport struct {
	ID              string           `json:"id"`
	MachineID       string           `json:"machineId"`
	ReportType      ReportType       `json:"reportType"`
	ReportDate      time.Time        `json:"reportDate"`
	Origin          string           `json:"origin,omitempty"`
	Destination     string           `json:"destination,omitempty"`
	Material        string           `json:"material,omitempty"`
	MaterialDestino string           `json:"materialDestino,omitempty"`
	Cliente         string           `json:"cliente,omitempty"`
	CantidadM3      *decimal.Decimal `json:"cantidadM3,omitempty"`
	Trips           *int             `json:"trips,omitempty"`
	Hours           *decimal.Decimal `json:"hours,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`

	TarifaEncontrada     bool   `json:"tarifaEncontrada"`
	ProcesamientoOmitido bool   `json:"procesamientoOmitido"`
	MensajeProcesamiento string `json:"mensajeProcesamiento,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// M3 devuelve la cantidad en m3 o cero si no viene informada.
func (r *ActivityReport) M3() decimal.Decimal {
	if r.CantidadM3 == nil {
		return decimal.Zero
	}
	return *r.CantidadM3
}
