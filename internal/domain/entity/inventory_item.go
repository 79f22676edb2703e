package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem saldo de un material en el acopio. Una fila por material.
// CantidadDisponible nunca es negativa: la operación que la dejaría negativa se rechaza.
type InventoryItem struct {
	Material           string          `json:"material"`
	CantidadDisponible decimal.Decimal `json:"cantidad_disponible"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
