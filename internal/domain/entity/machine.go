package entity

import (
	"fmt"
	"strings"
)

// MachineType tipo de equipo pesado.
type MachineType string

const (
	MachineCargador         MachineType = "Cargador"
	MachineVolqueta         MachineType = "Volqueta"
	MachineExcavadora       MachineType = "Excavadora"
	MachineRetroexcavadora  MachineType = "Retroexcavadora"
	MachineBulldozer        MachineType = "Bulldozer"
	MachineMotoniveladora   MachineType = "Motoniveladora"
	MachineVibrocompactador MachineType = "Vibrocompactador"
)

var machineTypes = []MachineType{
	MachineCargador, MachineVolqueta, MachineExcavadora, MachineRetroexcavadora,
	MachineBulldozer, MachineMotoniveladora, MachineVibrocompactador,
}

// ParseMachineType acepta el nombre sin distinguir mayúsculas; desconocidos se rechazan.
func ParseMachineType(s string) (MachineType, error) {
	s = strings.TrimSpace(s)
	for _, t := range machineTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("tipo de máquina desconocido %q", s)
}

// Machine equipo de la flota (value object consumido por el núcleo).
type Machine struct {
	ID     string      `json:"id"`
	Nombre string      `json:"nombre"`
	Tipo   MachineType `json:"tipo"`
	Placa  string      `json:"placa,omitempty"`
}
