package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// DetalleVentaRequest línea de una venta manual.
type DetalleVentaRequest struct {
	Tipo             string          `json:"tipo" validate:"required,oneof=Material Flete Alquiler Servicio"`
	ProductoServicio string          `json:"producto_servicio" validate:"required"`
	CantidadM3       decimal.Decimal `json:"cantidad_m3"`
	ValorUnitario    decimal.Decimal `json:"valor_unitario"`
}

// SaveSaleRequest body para POST /api/sales.
type SaveSaleRequest struct {
	ID              string                `json:"id,omitempty"`
	Fecha           string                `json:"fecha,omitempty"`
	Cliente         string                `json:"cliente" validate:"required"`
	TipoVenta       string                `json:"tipo_venta,omitempty"`
	OrigenMaterial  string                `json:"origen_material,omitempty"`
	DestinoMaterial string                `json:"destino_material,omitempty"`
	FormaPago       string                `json:"forma_pago,omitempty"`
	Detalles        []DetalleVentaRequest `json:"detalles" validate:"required,min=1,dive"`
}

// ToEntity convierte a venta de dominio; subtotales y total los calcula el caso de uso.
func (r SaveSaleRequest) ToEntity() (entity.Venta, error) {
	if err := Validate(r); err != nil {
		return entity.Venta{}, err
	}
	fecha := time.Now().UTC()
	if r.Fecha != "" {
		t, err := parseDate(r.Fecha)
		if err != nil {
			return entity.Venta{}, fmt.Errorf("fecha de venta: %w", err)
		}
		fecha = t
	}
	v := entity.Venta{
		ID:              r.ID,
		Fecha:           fecha,
		Cliente:         r.Cliente,
		TipoVenta:       r.TipoVenta,
		OrigenMaterial:  r.OrigenMaterial,
		DestinoMaterial: r.DestinoMaterial,
		FormaPago:       r.FormaPago,
	}
	for _, d := range r.Detalles {
		v.Detalles = append(v.Detalles, entity.DetalleVenta{
			Tipo:             entity.TipoDetalle(d.Tipo),
			ProductoServicio: d.ProductoServicio,
			CantidadM3:       d.CantidadM3,
			ValorUnitario:    d.ValorUnitario,
		})
	}
	return v, nil
}

// SaleResponse respuesta de POST /api/sales y de recalcular.
type SaleResponse struct {
	Venta   entity.Venta `json:"venta"`
	Source  string       `json:"source"`
	Queued  int          `json:"queued"`
	Changed *bool        `json:"changed,omitempty"`
}
