package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoDetalle tipo de línea de una venta.
type TipoDetalle string

const (
	DetalleMaterial TipoDetalle = "Material"
	DetalleFlete    TipoDetalle = "Flete"
	DetalleAlquiler TipoDetalle = "Alquiler"
	DetalleServicio TipoDetalle = "Servicio"
)

// TipoRegistro origen del registro de venta.
type TipoRegistro string

const (
	RegistroAutomatico TipoRegistro = "Automática"
	RegistroManual     TipoRegistro = "Manual"
)

// DetalleVenta línea de venta. Subtotal = round2(CantidadM3 × ValorUnitario).
type DetalleVenta struct {
	Tipo             TipoDetalle     `json:"tipo" validate:"required,oneof=Material Flete Alquiler Servicio"`
	ProductoServicio string          `json:"producto_servicio" validate:"required"`
	CantidadM3       decimal.Decimal `json:"cantidad_m3"`
	ValorUnitario    decimal.Decimal `json:"valor_unitario"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// Venta registro de venta; TotalVenta = Σ Subtotal.
// Las ventas Automática pertenecen al motor de movimientos/precios.
type Venta struct {
	ID              string          `json:"id"`
	Fecha           time.Time       `json:"fecha"`
	Cliente         string          `json:"cliente"`
	TipoVenta       string          `json:"tipo_venta"`
	OrigenMaterial  string          `json:"origen_material"`
	DestinoMaterial string          `json:"destino_material"`
	FormaPago       string          `json:"forma_pago"`
	TotalVenta      decimal.Decimal `json:"total_venta"`
	Detalles        []DetalleVenta  `json:"detalles"`
	TipoRegistro    TipoRegistro    `json:"tipo_registro"`
	ReporteID       string          `json:"reporteId,omitempty"`
}
