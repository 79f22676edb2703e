package ledger

import (
	"fmt"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// Capabilities política de inventario por tipo de máquina.
//   - CanEnter: sus viajes pueden generar entradas al acopio.
//   - CanExit: sus viajes pueden generar salidas del acopio.
//   - ForceOriginAcopio: el origen se trata siempre como acopio, diga lo que diga el reporte.
//   - IsAlwaysAtAcopio: si el reporte no trae origen, se asume el acopio.
type Capabilities struct {
	CanEnter          bool
	CanExit           bool
	ForceOriginAcopio bool
	IsAlwaysAtAcopio  bool
}

var capabilityTable = map[entity.MachineType]Capabilities{
	entity.MachineCargador:         {CanEnter: false, CanExit: true, ForceOriginAcopio: true, IsAlwaysAtAcopio: true},
	entity.MachineVolqueta:         {CanEnter: true, CanExit: true},
	entity.MachineExcavadora:       {CanEnter: true, CanExit: false},
	entity.MachineRetroexcavadora:  {CanEnter: true, CanExit: true},
	entity.MachineBulldozer:        {},
	entity.MachineMotoniveladora:   {},
	entity.MachineVibrocompactador: {},
}

// CapabilitiesFor devuelve la política del tipo; tipos fuera de la tabla son entrada inválida.
func CapabilitiesFor(t entity.MachineType) (Capabilities, error) {
	c, ok := capabilityTable[t]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: sin política de inventario para %q", domain.ErrInvalidInput, t)
	}
	return c, nil
}
