package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments. Cantidad con signo:
// positiva suma al saldo, negativa resta.
type AdjustmentRequest struct {
	Material      string          `json:"material" validate:"required"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Observaciones string          `json:"observaciones,omitempty" validate:"max=500"`
}

// InventoryItemDTO saldo de un material en el acopio.
type InventoryItemDTO struct {
	Material           string          `json:"material"`
	CantidadDisponible decimal.Decimal `json:"cantidad_disponible"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// InventoryResponse respuesta de GET /api/inventory.
type InventoryResponse struct {
	Source string             `json:"source"`
	Items  []InventoryItemDTO `json:"items"`
}

// AdjustmentResponse respuesta de POST /api/inventory/adjustments.
type AdjustmentResponse struct {
	MovimientoID      string          `json:"movimientoId"`
	Material          string          `json:"material"`
	CantidadAnterior  decimal.Decimal `json:"cantidadAnterior"`
	CantidadPosterior decimal.Decimal `json:"cantidadPosterior"`
	Source            string          `json:"source"`
}
