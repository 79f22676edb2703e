package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// RegisterAdjustment registra un ajuste_manual (cantidad con signo) sobre el saldo del material.
// Un ajuste que dejaría el saldo negativo se rechaza con ErrInsufficientStock.
func (uc *MovementUseCase) RegisterAdjustment(ctx context.Context, material string, cantidad decimal.Decimal, observaciones string) (MovementResult, error) {
	if strings.TrimSpace(material) == "" {
		return MovementResult{}, fmt.Errorf("%w: material requerido", domain.ErrInvalidInput)
	}
	if cantidad.IsZero() {
		return MovementResult{}, fmt.Errorf("%w: la cantidad del ajuste no puede ser cero", domain.ErrInvalidInput)
	}

	var res MovementResult
	commit, err := uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		item, exists, err := loadItem(ctx, tx, material)
		if err != nil {
			return err
		}
		next, err := ledger.NextBalance(item.CantidadDisponible, cantidad)
		if errors.Is(err, domain.ErrInsufficientStock) {
			res = insufficient(item, cantidad.Abs())
			return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, res.Mensaje)
		}
		mov := uc.record(nil, entity.Machine{}, entity.MovimientoAjusteManual, item.Material, cantidad, item.CantidadDisponible, next)
		mov.Observaciones = strings.TrimSpace(observaciones)
		if err := uc.stage(tx, mov, item, exists, next); err != nil {
			return err
		}
		res = MovementResult{
			Exito:             true,
			Mensaje:           fmt.Sprintf("ajuste de %s m3 sobre %s registrado", cantidad.String(), item.Material),
			MovimientoID:      mov.ID,
			Tipo:              entity.MovimientoAjusteManual,
			Material:          item.Material,
			CantidadAnterior:  item.CantidadDisponible,
			CantidadPosterior: next,
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Source = commit.Source
	return res, nil
}

// Balances saldos actuales del acopio ordenados por material.
func (uc *MovementUseCase) Balances(ctx context.Context) ([]entity.InventoryItem, datasource.DataSource, error) {
	rows, src, err := uc.reader.List(ctx, entity.EntityInventarioAcopio)
	if err != nil {
		return nil, "", err
	}
	items, skipped := localstore.Decode[entity.InventoryItem](rows)
	if skipped > 0 {
		uc.log.Warn().Int("skipped", skipped).Msg("filas de inventario ilegibles")
	}
	sort.Slice(items, func(i, j int) bool {
		return ledger.MaterialKey(items[i].Material) < ledger.MaterialKey(items[j].Material)
	})
	return items, src, nil
}
