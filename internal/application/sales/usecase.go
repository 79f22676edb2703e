// Package sales guarda ventas manuales y recalcula totales a pedido.
package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/pricing"
)

// Result venta persistida y dónde quedó.
type Result struct {
	Venta  entity.Venta          `json:"venta"`
	Source datasource.DataSource `json:"source"`
	Queued int                   `json:"queued"`
}

// UseCase ventas.
type UseCase struct {
	txRunner inventory.TxRunner
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, validate: validator.New(), log: log}
}

// SaveManual guarda una venta registrada a mano. Siempre queda como Manual y con subtotales
// y total recalculados; una venta Automática existente con el mismo id no se sobrescribe.
func (uc *UseCase) SaveManual(ctx context.Context, v entity.Venta) (Result, error) {
	if strings.TrimSpace(v.Cliente) == "" {
		return Result{}, fmt.Errorf("%w: cliente requerido", domain.ErrInvalidInput)
	}
	if len(v.Detalles) == 0 {
		return Result{}, fmt.Errorf("%w: la venta requiere al menos un detalle", domain.ErrInvalidInput)
	}
	for i, d := range v.Detalles {
		if err := uc.validate.Struct(d); err != nil {
			return Result{}, fmt.Errorf("%w: detalle %d: %v", domain.ErrInvalidInput, i+1, err)
		}
		if d.CantidadM3.IsNegative() || d.ValorUnitario.IsNegative() {
			return Result{}, fmt.Errorf("%w: detalle %d con valores negativos", domain.ErrInvalidInput, i+1)
		}
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Fecha.IsZero() {
		v.Fecha = time.Now().UTC()
	}
	v.TipoRegistro = entity.RegistroManual
	v.ReporteID = ""
	if v.TipoVenta == "" {
		v.TipoVenta = string(v.Detalles[0].Tipo)
	}
	v = pricing.UpdateVentaTotal(v)

	commit, err := uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		current, ok, err := getVenta(ctx, tx, v.ID)
		if err != nil {
			return err
		}
		op := entity.SyncCreate
		if ok {
			if current.TipoRegistro == entity.RegistroAutomatico {
				return fmt.Errorf("%w: la venta %s es automática", domain.ErrConflict, v.ID)
			}
			op = entity.SyncUpdate
		}
		return tx.Put(entity.EntityVentas, op, v.ID, v)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Venta: v, Source: commit.Source, Queued: commit.Queued}, nil
}

// Recalculate recalcula subtotales y total de una venta existente (manual o automática).
// Si ya estaban al día no escribe nada.
func (uc *UseCase) Recalculate(ctx context.Context, id string) (Result, bool, error) {
	var (
		out     entity.Venta
		changed bool
	)
	commit, err := uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		current, ok, err := getVenta(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
		}
		out = pricing.UpdateVentaTotal(current)
		changed = !sameTotals(current, out)
		if !changed {
			return nil
		}
		uc.log.Info().
			Str("venta_id", id).
			Str("anterior", current.TotalVenta.String()).
			Str("nuevo", out.TotalVenta.String()).
			Msg("total de venta recalculado")
		return tx.Put(entity.EntityVentas, entity.SyncUpdate, id, out)
	})
	if err != nil {
		return Result{}, false, err
	}
	return Result{Venta: out, Source: commit.Source, Queued: commit.Queued}, changed, nil
}

func sameTotals(a, b entity.Venta) bool {
	if !a.TotalVenta.Equal(b.TotalVenta) || len(a.Detalles) != len(b.Detalles) {
		return false
	}
	for i := range a.Detalles {
		if !a.Detalles[i].Subtotal.Equal(b.Detalles[i].Subtotal) {
			return false
		}
	}
	return true
}

func getVenta(ctx context.Context, tx datasource.LedgerTx, id string) (entity.Venta, bool, error) {
	row, ok, err := tx.Get(ctx, entity.EntityVentas, id)
	if err != nil || !ok {
		return entity.Venta{}, false, err
	}
	var v entity.Venta
	if err := json.Unmarshal(row, &v); err != nil {
		return entity.Venta{}, false, fmt.Errorf("%w: venta %s ilegible", domain.ErrCorruptCache, id)
	}
	return v, true, nil
}
