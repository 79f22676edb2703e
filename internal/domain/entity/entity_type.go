package entity

import "fmt"

// EntityType colecciones que el núcleo sabe enrutar. El valor es también la clave
// de la caché local y el nombre de la tabla remota.
type EntityType string

const (
	EntityMachines            EntityType = "machines"
	EntityMateriales          EntityType = "materiales"
	EntityTarifasFlete        EntityType = "tarifas_flete"
	EntityTarifasEscombrera   EntityType = "tarifas_escombrera"
	EntityServiciosTransporte EntityType = "servicios_transporte"
	EntityVentas              EntityType = "ventas"
	EntityInventarioAcopio    EntityType = "inventario_acopio"
	EntityUsers               EntityType = "users"
	EntityReportes            EntityType = "reportes"
	EntityMovimientos         EntityType = "movimientos_inventario"
)

// EntityTypes todas las colecciones sincronizables, en orden estable.
var EntityTypes = []EntityType{
	EntityMachines, EntityMateriales, EntityTarifasFlete, EntityTarifasEscombrera,
	EntityServiciosTransporte, EntityVentas, EntityInventarioAcopio, EntityUsers,
	EntityReportes, EntityMovimientos,
}

// ParseEntityType valida el nombre recibido en el borde.
func ParseEntityType(s string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("tipo de entidad desconocido %q", s)
}

// IDField campo JSON que actúa como clave primaria de la colección.
func (t EntityType) IDField() string {
	if t == EntityInventarioAcopio {
		return "material"
	}
	return "id"
}

// LocalKey clave de la colección en la caché local.
func (t EntityType) LocalKey() string { return string(t) }
