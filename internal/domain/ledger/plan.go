package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/pkg/textnorm"
)

// PlanKind efecto de inventario que corresponde a un viaje.
type PlanKind int

const (
	PlanNone PlanKind = iota
	PlanEntrada
	PlanSalida
	PlanDesglose
)

func (k PlanKind) String() string {
	switch k {
	case PlanEntrada:
		return string(entity.MovimientoEntrada)
	case PlanSalida:
		return string(entity.MovimientoSalida)
	case PlanDesglose:
		return string(entity.MovimientoDesglose)
	}
	return "ninguno"
}

// TripPlan resultado puro de clasificar un viaje; no toca saldos.
type TripPlan struct {
	Kind            PlanKind
	Material        string
	MaterialDestino string
	Cantidad        decimal.Decimal
	Origen          string
	Destino         string
	// Motivo explica por qué Kind es PlanNone.
	Motivo string
}

// ValidateTrip comprueba las precondiciones de un reporte de viaje.
func ValidateTrip(r *entity.ActivityReport) error {
	if r == nil || !r.ReportType.IsTrip() {
		return fmt.Errorf("%w: el reporte no es de viajes", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Origin) == "" && strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: el viaje requiere origen o destino", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Material) == "" {
		return fmt.Errorf("%w: el viaje requiere material", domain.ErrInvalidInput)
	}
	if !r.M3().GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: cantidadM3 debe ser mayor que cero", domain.ErrInvalidInput)
	}
	return nil
}

// PlanTrip clasifica el viaje en entrada, salida, desglose o sin efecto según el acopio
// y la política del tipo de máquina.
func PlanTrip(r *entity.ActivityReport, caps Capabilities, acopio *AcopioResolver) (TripPlan, error) {
	if err := ValidateTrip(r); err != nil {
		return TripPlan{}, err
	}
	plan := TripPlan{
		Material:        strings.TrimSpace(r.Material),
		MaterialDestino: strings.TrimSpace(r.MaterialDestino),
		Cantidad:        r.M3(),
		Origen:          r.Origin,
		Destino:         r.Destination,
	}

	var originAcopio bool
	switch {
	case caps.ForceOriginAcopio:
		originAcopio = true
	case strings.TrimSpace(r.Origin) == "" && caps.IsAlwaysAtAcopio:
		originAcopio = true
	default:
		originAcopio = acopio.IsAcopio(r.Origin)
	}
	destAcopio := acopio.IsAcopio(r.Destination)

	switch {
	case originAcopio && destAcopio:
		if plan.MaterialDestino == "" || textnorm.Equal(plan.MaterialDestino, plan.Material) {
			plan.Motivo = "movimiento interno en el acopio sin cambio de material"
			return plan, nil
		}
		plan.Kind = PlanDesglose
	case destAcopio:
		if !caps.CanEnter {
			plan.Motivo = "el tipo de máquina no registra entradas al acopio"
			return plan, nil
		}
		plan.Kind = PlanEntrada
	case originAcopio:
		if !caps.CanExit {
			plan.Motivo = "el tipo de máquina no registra salidas del acopio"
			return plan, nil
		}
		plan.Kind = PlanSalida
	default:
		plan.Motivo = "ni el origen ni el destino corresponden al acopio"
	}
	return plan, nil
}
