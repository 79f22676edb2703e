package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/pkg/textnorm"
)

// DefaultRate tarifas por defecto de un tipo de máquina (COP) cuando no hay tarifa registrada.
// Todo tipo cuyos viajes mueven material tiene Viaje o M3.
type DefaultRate struct {
	Hora  decimal.Decimal // alquiler por hora trabajada
	Viaje decimal.Decimal // flete por viaje
	M3    decimal.Decimal // flete o cargue por m3
}

// HorasExtrasFactor recargo sobre la tarifa horaria para horas extras.
var HorasExtrasFactor = decimal.RequireFromString("1.25")

// DefaultEscombreraM3 tarifa de recepción en escombrera sin tarifa registrada.
var DefaultEscombreraM3 = decimal.NewFromInt(12000)

var defaultRates = map[entity.MachineType]DefaultRate{
	entity.MachineCargador:         {Hora: decimal.NewFromInt(180000), M3: decimal.NewFromInt(3500)},
	entity.MachineVolqueta:         {Hora: decimal.NewFromInt(120000), Viaje: decimal.NewFromInt(250000), M3: decimal.NewFromInt(18000)},
	entity.MachineExcavadora:       {Hora: decimal.NewFromInt(220000), M3: decimal.NewFromInt(7000)},
	entity.MachineRetroexcavadora:  {Hora: decimal.NewFromInt(150000), M3: decimal.NewFromInt(9000)},
	entity.MachineBulldozer:        {Hora: decimal.NewFromInt(260000)},
	entity.MachineMotoniveladora:   {Hora: decimal.NewFromInt(240000)},
	entity.MachineVibrocompactador: {Hora: decimal.NewFromInt(140000)},
}

// DefaultRateFor devuelve la tarifa por defecto del tipo.
func DefaultRateFor(t entity.MachineType) (DefaultRate, bool) {
	r, ok := defaultRates[t]
	return r, ok
}

// Rates catálogos de precios registrados (materiales, fletes, escombreras).
type Rates struct {
	Materiales  []entity.Material
	Fletes      []entity.TarifaFlete
	Escombreras []entity.TarifaEscombrera
}

// MaterialPrice precio por m3 del material.
func (r Rates) MaterialPrice(material string) (decimal.Decimal, bool) {
	for _, m := range r.Materiales {
		if textnorm.Equal(m.Nombre, material) {
			return m.ValorM3, true
		}
	}
	return decimal.Zero, false
}

// Flete tarifa por m3 para el trayecto origen -> destino.
func (r Rates) Flete(origen, destino string) (decimal.Decimal, bool) {
	for _, t := range r.Fletes {
		if textnorm.Equal(t.Origen, origen) && textnorm.Equal(t.Destino, destino) {
			return t.ValorM3, true
		}
	}
	return decimal.Zero, false
}

// Escombrera tarifa de recepción por m3 de la escombrera indicada.
func (r Rates) Escombrera(nombre string) (decimal.Decimal, bool) {
	for _, t := range r.Escombreras {
		if textnorm.Equal(t.Escombrera, nombre) {
			return t.ValorM3, true
		}
	}
	return decimal.Zero, false
}
