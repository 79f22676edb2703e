package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

var automaticSaleNamespace = uuid.MustParse("5b0f7c1e-8f0a-4c57-9a53-1f6f3f0d2a41")

// FormaPagoAutomatica forma de pago de las ventas generadas desde reportes.
const FormaPagoAutomatica = "Crédito"

// AutomaticSaleID id determinista de la venta automática de un reporte: volver a sintetizar
// la venta del mismo reporte produce el mismo id y sobrescribe en lugar de duplicar.
func AutomaticSaleID(reporteID string) string {
	return uuid.NewSHA1(automaticSaleNamespace, []byte("venta-automatica:"+reporteID)).String()
}

// SaleInput datos para sintetizar la venta automática.
type SaleInput struct {
	Report  *entity.ActivityReport
	Machine entity.Machine
	// MaterialLeavesAcopio: el viaje fue una salida del acopio, se factura también el material.
	MaterialLeavesAcopio bool
}

// SynthesizeAutomaticSale construye la venta por defecto de un reporte. El segundo valor
// indica si todas las tarifas salieron de los catálogos registrados (false = tarifa por defecto).
func SynthesizeAutomaticSale(in SaleInput, rates Rates) (entity.Venta, bool, error) {
	r := in.Report
	if r == nil || r.ID == "" {
		return entity.Venta{}, false, fmt.Errorf("%w: reporte sin id", domain.ErrInvalidInput)
	}
	def, ok := DefaultRateFor(in.Machine.Tipo)
	if !ok {
		return entity.Venta{}, false, fmt.Errorf("%w: sin tarifa por defecto para %q", domain.ErrInvalidInput, in.Machine.Tipo)
	}

	var (
		detalles []entity.DetalleVenta
		found    = true
	)
	switch {
	case r.ReportType == entity.ReportViajes:
		line, ok := freightLine(r, in.Machine, def, rates)
		if line.ValorUnitario.IsZero() {
			return entity.Venta{}, false, fmt.Errorf("%w: sin tarifa de flete para %q", domain.ErrInvalidInput, in.Machine.Tipo)
		}
		found = found && ok
		if in.MaterialLeavesAcopio {
			price, ok := rates.MaterialPrice(r.Material)
			found = found && ok
			if ok {
				detalles = append(detalles, entity.DetalleVenta{
					Tipo:             entity.DetalleMaterial,
					ProductoServicio: r.Material,
					CantidadM3:       r.M3(),
					ValorUnitario:    price,
				})
			}
		}
		detalles = append(detalles, line)

	case r.ReportType == entity.ReportRecepcionEscombrera:
		price, ok := rates.Escombrera(r.Destination)
		if !ok {
			price = DefaultEscombreraM3
		}
		found = ok
		detalles = append(detalles, entity.DetalleVenta{
			Tipo:             entity.DetalleServicio,
			ProductoServicio: "Recepción escombrera " + strings.TrimSpace(r.Destination),
			CantidadM3:       r.M3(),
			ValorUnitario:    price,
		})

	case r.ReportType.IsHours():
		if r.Hours == nil || !r.Hours.GreaterThan(decimal.Zero) {
			return entity.Venta{}, false, fmt.Errorf("%w: el reporte de horas requiere horas > 0", domain.ErrInvalidInput)
		}
		if def.Hora.IsZero() {
			return entity.Venta{}, false, fmt.Errorf("%w: sin tarifa horaria para %q", domain.ErrInvalidInput, in.Machine.Tipo)
		}
		rate, label := def.Hora, "Alquiler "
		if r.ReportType == entity.ReportHorasExtras {
			rate, label = Round2(def.Hora.Mul(HorasExtrasFactor)), "Horas extras "
		}
		detalles = append(detalles, entity.DetalleVenta{
			Tipo:             entity.DetalleAlquiler,
			ProductoServicio: label + machineLabel(in.Machine),
			CantidadM3:       *r.Hours,
			ValorUnitario:    rate,
		})

	default:
		return entity.Venta{}, false, fmt.Errorf("%w: el reporte %s no genera venta", domain.ErrInvalidInput, r.ReportType)
	}

	fecha := r.ReportDate
	if fecha.IsZero() {
		fecha = time.Now()
	}
	venta := entity.Venta{
		ID:              AutomaticSaleID(r.ID),
		Fecha:           fecha,
		Cliente:         clientFor(r),
		TipoVenta:       string(detalles[len(detalles)-1].Tipo),
		OrigenMaterial:  r.Origin,
		DestinoMaterial: r.Destination,
		FormaPago:       FormaPagoAutomatica,
		Detalles:        detalles,
		TipoRegistro:    entity.RegistroAutomatico,
		ReporteID:       r.ID,
	}
	return UpdateVentaTotal(venta), found, nil
}

// freightLine línea de flete (o cargue para cargadores): tarifa registrada por m3 o,
// en su defecto, tarifa por viaje o por m3 del tipo de máquina.
func freightLine(r *entity.ActivityReport, m entity.Machine, def DefaultRate, rates Rates) (entity.DetalleVenta, bool) {
	if m.Tipo == entity.MachineCargador {
		return entity.DetalleVenta{
			Tipo:             entity.DetalleServicio,
			ProductoServicio: "Cargue de material",
			CantidadM3:       r.M3(),
			ValorUnitario:    def.M3,
		}, true
	}
	label := fmt.Sprintf("Flete %s - %s", strings.TrimSpace(r.Origin), strings.TrimSpace(r.Destination))
	if price, ok := rates.Flete(r.Origin, r.Destination); ok {
		return entity.DetalleVenta{Tipo: entity.DetalleFlete, ProductoServicio: label, CantidadM3: r.M3(), ValorUnitario: price}, true
	}
	if !def.Viaje.IsZero() {
		trips := 1
		if r.Trips != nil && *r.Trips > 0 {
			trips = *r.Trips
		}
		return entity.DetalleVenta{
			Tipo:             entity.DetalleFlete,
			ProductoServicio: label + " (por viaje)",
			CantidadM3:       decimal.NewFromInt(int64(trips)),
			ValorUnitario:    def.Viaje,
		}, false
	}
	return entity.DetalleVenta{Tipo: entity.DetalleFlete, ProductoServicio: label, CantidadM3: r.M3(), ValorUnitario: def.M3}, false
}

func clientFor(r *entity.ActivityReport) string {
	if c := strings.TrimSpace(r.Cliente); c != "" {
		return c
	}
	if d := strings.TrimSpace(r.Destination); d != "" {
		return d
	}
	return "Cliente general"
}

func machineLabel(m entity.Machine) string {
	if m.Nombre != "" {
		return m.Nombre
	}
	return string(m.Tipo)
}
