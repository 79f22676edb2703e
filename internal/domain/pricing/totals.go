// Package pricing deriva los totales monetarios de una venta y la venta automática
// que corresponde a un reporte de actividad.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// Round2 redondea a 2 decimales, mitad hacia arriba (cantidades y precios no negativos).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineSubtotal subtotal de una línea: round2(cantidad_m3 × valor_unitario).
func LineSubtotal(d entity.DetalleVenta) decimal.Decimal {
	return Round2(d.CantidadM3.Mul(d.ValorUnitario))
}

// ComputeTotal recalcula cada subtotal desde cantidad y valor unitario (nunca usa el
// subtotal guardado) y los suma.
func ComputeTotal(detalles []entity.DetalleVenta) decimal.Decimal {
	total := decimal.Zero
	for _, d := range detalles {
		total = total.Add(LineSubtotal(d))
	}
	return total
}

// UpdateVentaTotal devuelve una copia de la venta con subtotales y total recalculados.
// No modifica la venta recibida.
func UpdateVentaTotal(v entity.Venta) entity.Venta {
	out := v
	out.Detalles = make([]entity.DetalleVenta, len(v.Detalles))
	for i, d := range v.Detalles {
		d.Subtotal = LineSubtotal(d)
		out.Detalles[i] = d
	}
	out.TotalVenta = ComputeTotal(out.Detalles)
	return out
}
