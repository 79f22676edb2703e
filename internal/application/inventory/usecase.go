package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// MovementResult resultado de aplicar un viaje al inventario del acopio.
// En un desglose MovimientoIDs lleva ambos asientos (origen, destino).
type MovementResult struct {
	Exito             bool                  `json:"exito"`
	Mensaje           string                `json:"mensaje"`
	MovimientoID      string                `json:"movimientoId,omitempty"`
	MovimientoIDs     []string              `json:"movimientoIds,omitempty"`
	Tipo              entity.TipoMovimiento `json:"tipo,omitempty"`
	Material          string                `json:"material,omitempty"`
	CantidadAnterior  decimal.Decimal       `json:"cantidadAnterior"`
	CantidadPosterior decimal.Decimal       `json:"cantidadPosterior"`
	StockInsuficiente bool                  `json:"stockInsuficiente,omitempty"`
	Source            datasource.DataSource `json:"source,omitempty"`
}

// MovementUseCase motor de movimientos: traduce reportes de viaje en asientos del libro y
// saldos del acopio, en una sola transacción por reporte.
type MovementUseCase struct {
	txRunner TxRunner
	reader   Reader
	acopio   *ledger.AcopioResolver
	log      zerolog.Logger
	now      func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, reader Reader, acopio *ledger.AcopioResolver, log zerolog.Logger) *MovementUseCase {
	return &MovementUseCase{
		txRunner: txRunner,
		reader:   reader,
		acopio:   acopio,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *MovementUseCase) WithClock(now func() time.Time) *MovementUseCase {
	uc.now = now
	return uc
}

// ApplyTripMovement aplica el viaje en su propia transacción.
func (uc *MovementUseCase) ApplyTripMovement(ctx context.Context, report *entity.ActivityReport, machine entity.Machine) (MovementResult, error) {
	var res MovementResult
	commit, err := uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		var err error
		res, err = uc.ApplyInTx(ctx, tx, report, machine)
		return err
	})
	if err != nil {
		return MovementResult{}, err
	}
	res.Source = commit.Source
	return res, nil
}

// ApplyInTx aplica el viaje dentro de la transacción del llamador. Devuelve error solo por
// entrada inválida o fallas de lectura; stock insuficiente o un viaje sin efecto en el
// acopio se informan con Exito=false y no dejan escrituras en tx.
func (uc *MovementUseCase) ApplyInTx(ctx context.Context, tx datasource.LedgerTx, report *entity.ActivityReport, machine entity.Machine) (MovementResult, error) {
	caps, err := ledger.CapabilitiesFor(machine.Tipo)
	if err != nil {
		return MovementResult{}, err
	}
	plan, err := ledger.PlanTrip(report, caps, uc.acopio)
	if err != nil {
		return MovementResult{}, err
	}

	switch plan.Kind {
	case ledger.PlanEntrada:
		return uc.single(ctx, tx, report, machine, plan, entity.MovimientoEntrada, plan.Cantidad)
	case ledger.PlanSalida:
		return uc.single(ctx, tx, report, machine, plan, entity.MovimientoSalida, plan.Cantidad.Neg())
	case ledger.PlanDesglose:
		return uc.desglose(ctx, tx, report, machine, plan)
	default:
		return MovementResult{Exito: false, Mensaje: "sin movimiento de inventario: " + plan.Motivo}, nil
	}
}

func (uc *MovementUseCase) single(
	ctx context.Context,
	tx datasource.LedgerTx,
	report *entity.ActivityReport,
	machine entity.Machine,
	plan ledger.TripPlan,
	tipo entity.TipoMovimiento,
	delta decimal.Decimal,
) (MovementResult, error) {
	item, exists, err := loadItem(ctx, tx, plan.Material)
	if err != nil {
		return MovementResult{}, err
	}
	next, err := ledger.NextBalance(item.CantidadDisponible, delta)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return insufficient(item, plan.Cantidad), nil
	}

	mov := uc.record(report, machine, tipo, item.Material, plan.Cantidad, item.CantidadDisponible, next)
	if err := uc.stage(tx, mov, item, exists, next); err != nil {
		return MovementResult{}, err
	}
	uc.log.Info().
		Str("material", item.Material).
		Str("tipo", string(tipo)).
		Str("reporte_id", report.ID).
		Str("posterior", next.String()).
		Msg("movimiento de inventario")
	return MovementResult{
		Exito:             true,
		Mensaje:           fmt.Sprintf("%s de %s m3 de %s registrada", tipo, plan.Cantidad.String(), item.Material),
		MovimientoID:      mov.ID,
		Tipo:              tipo,
		Material:          item.Material,
		CantidadAnterior:  item.CantidadDisponible,
		CantidadPosterior: next,
	}, nil
}

// desglose resta del material origen y suma al material destino; ambas piernas o ninguna.
func (uc *MovementUseCase) desglose(ctx context.Context, tx datasource.LedgerTx, report *entity.ActivityReport, machine entity.Machine, plan ledger.TripPlan) (MovementResult, error) {
	src, srcExists, err := loadItem(ctx, tx, plan.Material)
	if err != nil {
		return MovementResult{}, err
	}
	dst, dstExists, err := loadItem(ctx, tx, plan.MaterialDestino)
	if err != nil {
		return MovementResult{}, err
	}
	srcNext, err := ledger.NextBalance(src.CantidadDisponible, plan.Cantidad.Neg())
	if errors.Is(err, domain.ErrInsufficientStock) {
		return insufficient(src, plan.Cantidad), nil
	}
	dstNext, err := ledger.NextBalance(dst.CantidadDisponible, plan.Cantidad)
	if err != nil {
		return MovementResult{}, err
	}

	out := uc.record(report, machine, entity.MovimientoDesglose, src.Material, plan.Cantidad, src.CantidadDisponible, srcNext)
	in := uc.record(report, machine, entity.MovimientoDesglose, dst.Material, plan.Cantidad, dst.CantidadDisponible, dstNext)
	out.Observaciones = "desglose hacia " + dst.Material
	in.Observaciones = "desglose desde " + src.Material
	if err := uc.stage(tx, out, src, srcExists, srcNext); err != nil {
		return MovementResult{}, err
	}
	if err := uc.stage(tx, in, dst, dstExists, dstNext); err != nil {
		return MovementResult{}, err
	}
	return MovementResult{
		Exito:             true,
		Mensaje:           fmt.Sprintf("desglose de %s m3: %s -> %s", plan.Cantidad.String(), src.Material, dst.Material),
		MovimientoID:      out.ID,
		MovimientoIDs:     []string{out.ID, in.ID},
		Tipo:              entity.MovimientoDesglose,
		Material:          src.Material,
		CantidadAnterior:  src.CantidadDisponible,
		CantidadPosterior: srcNext,
	}, nil
}

func insufficient(item entity.InventoryItem, requerido decimal.Decimal) MovementResult {
	return MovementResult{
		Exito: false,
		Mensaje: fmt.Sprintf("stock insuficiente de %s: disponible %s m3, requerido %s m3",
			item.Material, item.CantidadDisponible.String(), requerido.String()),
		Material:          item.Material,
		CantidadAnterior:  item.CantidadDisponible,
		CantidadPosterior: item.CantidadDisponible,
		StockInsuficiente: true,
	}
}

func (uc *MovementUseCase) record(
	report *entity.ActivityReport,
	machine entity.Machine,
	tipo entity.TipoMovimiento,
	material string,
	cantidad, anterior, posterior decimal.Decimal,
) entity.MovementRecord {
	m := entity.MovementRecord{
		ID:                uuid.New().String(),
		Fecha:             uc.now(),
		Tipo:              tipo,
		Material:          material,
		Cantidad:          cantidad,
		CantidadAnterior:  anterior,
		CantidadPosterior: posterior,
		MaquinaID:         machine.ID,
	}
	if report != nil {
		m.Origen = report.Origin
		m.Destino = report.Destination
		m.ReporteID = report.ID
	}
	return m
}

// stage deja en tx el asiento y el saldo nuevo del material.
func (uc *MovementUseCase) stage(tx datasource.LedgerTx, mov entity.MovementRecord, item entity.InventoryItem, exists bool, next decimal.Decimal) error {
	if !mov.Valid() {
		return fmt.Errorf("%w: asiento inconsistente para %s", domain.ErrConflict, mov.Material)
	}
	if err := tx.Put(entity.EntityMovimientos, entity.SyncCreate, mov.ID, mov); err != nil {
		return err
	}
	item.CantidadDisponible = next
	item.UpdatedAt = mov.Fecha
	op := entity.SyncUpdate
	if !exists {
		op = entity.SyncCreate
	}
	return tx.Put(entity.EntityInventarioAcopio, op, item.Material, item)
}

// loadItem busca el saldo del material comparando sin tildes ni mayúsculas. Un material sin
// fila arranca en cero con el nombre tal como llegó.
func loadItem(ctx context.Context, tx datasource.LedgerTx, material string) (entity.InventoryItem, bool, error) {
	rows, err := tx.List(ctx, entity.EntityInventarioAcopio)
	if err != nil {
		return entity.InventoryItem{}, false, err
	}
	items, _ := localstore.Decode[entity.InventoryItem](rows)
	key := ledger.MaterialKey(material)
	for _, it := range items {
		if ledger.MaterialKey(it.Material) == key {
			return it, true, nil
		}
	}
	return entity.InventoryItem{Material: strings.TrimSpace(material), CantidadDisponible: decimal.Zero}, false, nil
}
