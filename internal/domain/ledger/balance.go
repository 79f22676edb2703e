package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/pkg/textnorm"
)

// MaterialKey clave canónica de un material en el libro (sin tildes ni mayúsculas).
func MaterialKey(material string) string {
	return textnorm.Fold(material)
}

// NextBalance aplica delta sobre el saldo actual; un resultado negativo se rechaza, no se recorta.
func NextBalance(current, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// ReplayBalances reconstruye el saldo de cada material desde cero aplicando los asientos
// en orden de fecha (estable para fechas iguales). La clave del mapa es MaterialKey.
func ReplayBalances(movs []entity.MovementRecord) map[string]decimal.Decimal {
	ordered := make([]entity.MovementRecord, len(movs))
	copy(ordered, movs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Fecha.Before(ordered[j].Fecha)
	})
	balances := make(map[string]decimal.Decimal)
	for _, m := range ordered {
		k := MaterialKey(m.Material)
		balances[k] = balances[k].Add(m.Delta())
	}
	return balances
}
