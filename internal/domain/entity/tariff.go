package entity

import "github.com/shopspring/decimal"

// Material catálogo de materiales con su precio de venta por m3.
type Material struct {
	ID      string          `json:"id"`
	Nombre  string          `json:"nombre"`
	ValorM3 decimal.Decimal `json:"valor_m3"`
}

// TarifaFlete tarifa de transporte por m3 entre un origen y un destino.
type TarifaFlete struct {
	ID      string          `json:"id"`
	Origen  string          `json:"origen"`
	Destino string          `json:"destino"`
	ValorM3 decimal.Decimal `json:"valor_m3"`
}

// TarifaEscombrera tarifa de recepción por m3 en una escombrera.
type TarifaEscombrera struct {
	ID         string          `json:"id"`
	Escombrera string          `json:"escombrera"`
	ValorM3    decimal.Decimal `json:"valor_m3"`
}
