package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoMovimiento tipos de movimiento del libro de inventario.
type TipoMovimiento string

const (
	MovimientoEntrada      TipoMovimiento = "entrada"
	MovimientoSalida       TipoMovimiento = "salida"
	MovimientoDesglose     TipoMovimiento = "desglose"
	MovimientoAjusteManual TipoMovimiento = "ajuste_manual"
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t TipoMovimiento) Valid() bool {
	switch t {
	case MovimientoEntrada, MovimientoSalida, MovimientoDesglose, MovimientoAjusteManual:
		return true
	}
	return false
}

// MovementRecord asiento inmutable del libro de inventario. Las correcciones son
// nuevos asientos ajuste_manual, nunca ediciones.
type MovementRecord struct {
	ID                string          `json:"id"`
	Fecha             time.Time       `json:"fecha"`
	Tipo              TipoMovimiento  `json:"tipo"`
	Material          string          `json:"material"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	CantidadAnterior  decimal.Decimal `json:"cantidadAnterior"`
	CantidadPosterior decimal.Decimal `json:"cantidadPosterior"`
	Origen            string          `json:"origen,omitempty"`
	Destino           string          `json:"destino,omitempty"`
	ReporteID         string          `json:"reporteId,omitempty"`
	MaquinaID         string          `json:"maquinaId,omitempty"`
	Observaciones     string          `json:"observaciones,omitempty"`
}

// Delta efecto con signo del asiento sobre el saldo del material.
// entrada y ajuste_manual suman (el ajuste admite cantidad negativa), salida resta.
// En un par de desglose la pierna origen resta y la pierna destino suma; la dirección
// de la pierna se toma del sentido anterior -> posterior.
func (m MovementRecord) Delta() decimal.Decimal {
	switch m.Tipo {
	case MovimientoEntrada, MovimientoAjusteManual:
		return m.Cantidad
	case MovimientoSalida:
		return m.Cantidad.Neg()
	case MovimientoDesglose:
		if m.CantidadPosterior.GreaterThan(m.CantidadAnterior) {
			return m.Cantidad
		}
		return m.Cantidad.Neg()
	}
	return decimal.Zero
}

// Valid verifica cantidadPosterior = cantidadAnterior + Delta() y que el saldo no quede negativo.
func (m MovementRecord) Valid() bool {
	if !m.Tipo.Valid() || m.Material == "" {
		return false
	}
	if m.Tipo != MovimientoAjusteManual && !m.Cantidad.GreaterThan(decimal.Zero) {
		return false
	}
	if m.CantidadPosterior.IsNegative() {
		return false
	}
	return m.CantidadAnterior.Add(m.Delta()).Equal(m.CantidadPosterior)
}
