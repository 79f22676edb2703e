// Package reconciliation verifica en lote que reportes, libro de inventario y ventas
// automáticas sean consistentes. Solo informa; no corrige.
package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/domain/pricing"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// Kind tipo de discrepancia.
type Kind string

const (
	KindOrphanedReport    Kind = "orphaned_report"
	KindOrphanedMovement  Kind = "orphaned_movement"
	KindDuplicateMovement Kind = "duplicate_movement"
	KindInvalidMovement   Kind = "invalid_movement"
	KindMissingSale       Kind = "missing_sale"
	KindDuplicateSale     Kind = "duplicate_sale"
	KindDrift             Kind = "drift"
	KindStaleTotal        Kind = "stale_total"
)

// Discrepancy hallazgo con valor esperado y actual.
type Discrepancy struct {
	Kind       Kind   `json:"kind"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	Message    string `json:"message"`
}

// Report resultado de una corrida.
type Report struct {
	GeneratedAt   time.Time             `json:"generatedAt"`
	Source        datasource.DataSource `json:"source"`
	Reports       int                   `json:"reports"`
	Movements     int                   `json:"movements"`
	Sales         int                   `json:"sales"`
	Items         int                   `json:"items"`
	Discrepancies []Discrepancy         `json:"discrepancies"`
}

// Consistent sin discrepancias.
func (r Report) Consistent() bool { return len(r.Discrepancies) == 0 }

// CountByKind cantidad de discrepancias por tipo.
func (r Report) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for _, d := range r.Discrepancies {
		out[d.Kind]++
	}
	return out
}

// Reader lectura ruteada de colecciones; lo implementa datasource.Router.
type Reader interface {
	List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, datasource.DataSource, error)
}

// Checker verificador de consistencia.
type Checker struct {
	reader Reader
	log    zerolog.Logger
	now    func() time.Time
}

// NewChecker construye el verificador.
func NewChecker(reader Reader, log zerolog.Logger) *Checker {
	return &Checker{reader: reader, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Dataset colecciones a verificar.
type Dataset struct {
	Reports   []entity.ActivityReport
	Movements []entity.MovementRecord
	Sales     []entity.Venta
	Items     []entity.InventoryItem
}

// Run carga las colecciones y las verifica.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	var (
		ds  Dataset
		src datasource.DataSource
	)
	load := func(et entity.EntityType) ([]json.RawMessage, error) {
		rows, s, err := c.reader.List(ctx, et)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", et, err)
		}
		if src == "" || s != datasource.SourceSupabase {
			src = s
		}
		return rows, nil
	}

	rows, err := load(entity.EntityReportes)
	if err != nil {
		return Report{}, err
	}
	ds.Reports, _ = localstore.Decode[entity.ActivityReport](rows)
	if rows, err = load(entity.EntityMovimientos); err != nil {
		return Report{}, err
	}
	ds.Movements, _ = localstore.Decode[entity.MovementRecord](rows)
	if rows, err = load(entity.EntityVentas); err != nil {
		return Report{}, err
	}
	ds.Sales, _ = localstore.Decode[entity.Venta](rows)
	if rows, err = load(entity.EntityInventarioAcopio); err != nil {
		return Report{}, err
	}
	ds.Items, _ = localstore.Decode[entity.InventoryItem](rows)

	rep := Check(ds)
	rep.GeneratedAt = c.now()
	rep.Source = src
	c.log.Info().
		Int("reports", rep.Reports).
		Int("movements", rep.Movements).
		Int("discrepancies", len(rep.Discrepancies)).
		Str("source", string(src)).
		Msg("conciliación ejecutada")
	return rep, nil
}

// Check verificación pura sobre un dataset ya cargado.
func Check(ds Dataset) Report {
	rep := Report{
		Reports:       len(ds.Reports),
		Movements:     len(ds.Movements),
		Sales:         len(ds.Sales),
		Items:         len(ds.Items),
		Discrepancies: []Discrepancy{},
	}
	add := func(d Discrepancy) { rep.Discrepancies = append(rep.Discrepancies, d) }

	reports := make(map[string]entity.ActivityReport, len(ds.Reports))
	for _, r := range ds.Reports {
		reports[r.ID] = r
	}
	movsByReport := make(map[string][]entity.MovementRecord)
	for _, m := range ds.Movements {
		if !m.Valid() {
			add(Discrepancy{
				Kind: KindInvalidMovement, EntityType: string(entity.EntityMovimientos), EntityID: m.ID,
				Expected: m.CantidadAnterior.Add(m.Delta()).String(), Actual: m.CantidadPosterior.String(),
				Message: fmt.Sprintf("asiento %s de %s no cumple posterior = anterior ± cantidad", m.Tipo, m.Material),
			})
		}
		if m.ReporteID == "" {
			continue
		}
		movsByReport[m.ReporteID] = append(movsByReport[m.ReporteID], m)
		if _, ok := reports[m.ReporteID]; !ok {
			add(Discrepancy{
				Kind: KindOrphanedMovement, EntityType: string(entity.EntityMovimientos), EntityID: m.ID,
				Expected: "reporte " + m.ReporteID, Actual: "sin reporte",
				Message: fmt.Sprintf("movimiento %s apunta a un reporte inexistente", m.ID),
			})
		}
	}

	salesByReport := make(map[string][]entity.Venta)
	for _, v := range ds.Sales {
		if v.TipoRegistro != entity.RegistroAutomatico {
			continue
		}
		if v.ReporteID != "" {
			salesByReport[v.ReporteID] = append(salesByReport[v.ReporteID], v)
		}
		fresh := pricing.ComputeTotal(v.Detalles)
		if !fresh.Equal(v.TotalVenta) {
			add(Discrepancy{
				Kind: KindStaleTotal, EntityType: string(entity.EntityVentas), EntityID: v.ID,
				Expected: fresh.StringFixed(2), Actual: v.TotalVenta.StringFixed(2),
				Message: "total_venta no coincide con la suma recalculada de los detalles",
			})
		}
	}

	for _, r := range ds.Reports {
		expectsSale := r.ReportType.IsHours()
		if r.ReportType.IsTrip() && !r.ProcesamientoOmitido {
			expectsSale = true
			movs := movsByReport[r.ID]
			want := 1
			if len(movs) > 0 && movs[0].Tipo == entity.MovimientoDesglose {
				want = 2
			}
			switch {
			case len(movs) == 0:
				add(Discrepancy{
					Kind: KindOrphanedReport, EntityType: string(entity.EntityReportes), EntityID: r.ID,
					Expected: "1", Actual: "0",
					Message: "reporte de viaje sin movimiento de inventario",
				})
			case len(movs) != want:
				add(Discrepancy{
					Kind: KindDuplicateMovement, EntityType: string(entity.EntityReportes), EntityID: r.ID,
					Expected: strconv.Itoa(want), Actual: strconv.Itoa(len(movs)),
					Message: "reporte con más asientos de inventario de los esperados",
				})
			}
		}
		if !expectsSale || r.ProcesamientoOmitido {
			continue
		}
		switch n := len(salesByReport[r.ID]); {
		case n == 0:
			msg := "reporte sin venta automática"
			if r.MensajeProcesamiento != "" {
				msg += " (" + r.MensajeProcesamiento + ")"
			}
			add(Discrepancy{
				Kind: KindMissingSale, EntityType: string(entity.EntityReportes), EntityID: r.ID,
				Expected: "1", Actual: "0",
				Message: msg,
			})
		case n > 1:
			add(Discrepancy{
				Kind: KindDuplicateSale, EntityType: string(entity.EntityReportes), EntityID: r.ID,
				Expected: "1", Actual: strconv.Itoa(n),
				Message: "reporte con varias ventas automáticas",
			})
		}
	}

	replayed := ledger.ReplayBalances(ds.Movements)
	stored := make(map[string]entity.InventoryItem, len(ds.Items))
	for _, it := range ds.Items {
		stored[ledger.MaterialKey(it.Material)] = it
	}
	keys := make(map[string]bool)
	for k := range replayed {
		keys[k] = true
	}
	for k := range stored {
		keys[k] = true
	}
	for k := range keys {
		want := replayed[k]
		it, ok := stored[k]
		have := decimal.Zero
		name := k
		if ok {
			have = it.CantidadDisponible
			name = it.Material
		}
		if want.Equal(have) {
			continue
		}
		add(Discrepancy{
			Kind: KindDrift, EntityType: string(entity.EntityInventarioAcopio), EntityID: name,
			Expected: want.String(), Actual: have.String(),
			Message: fmt.Sprintf("el saldo guardado de %s difiere del replay de movimientos", name),
		})
	}

	sort.SliceStable(rep.Discrepancies, func(i, j int) bool {
		a, b := rep.Discrepancies[i], rep.Discrepancies[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.EntityID < b.EntityID
	})
	return rep
}
