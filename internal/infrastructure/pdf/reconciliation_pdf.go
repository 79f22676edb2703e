// Package pdf genera el informe de conciliación en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de corrida + fuente de datos        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: reportes | movimientos | ventas | saldos          │
//	│  CONTEO por tipo de discrepancia                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Tipo | Entidad | Id | Esperado | Actual | Detalle   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorOK      = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReconciliationPDF genera el informe con Maroto v2.
type ReconciliationPDF struct {
	company string
}

// NewReconciliationPDF construye el generador; company aparece como autor del documento.
func NewReconciliationPDF(company string) *ReconciliationPDF {
	return &ReconciliationPDF{company: company}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *ReconciliationPDF) Generate(_ context.Context, rep reconciliation.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Conciliación de inventario y ventas", true).
		WithAuthor(nonEmpty(g.company, "Maquipaes"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep, g.company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rep))
	for _, r := range countRows(rep) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if rep.Consistent() {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin discrepancias: reportes, libro de inventario y ventas son consistentes.", props.Text{
				Style: fontstyle.Bold, Size: 10, Color: colorOK, Top: 3,
			}),
		)))
	} else {
		m.AddRows(tableHeaderRow())
		for _, r := range tableRows(rep.Discrepancies) {
			m.AddRows(r)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep reconciliation.Report, company string) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(nonEmpty(company, "Maquipaes"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Informe de conciliación", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Fuente: "+nonEmpty(string(rep.Source), "—"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func summaryRow(rep reconciliation.Report) core.Row {
	cell := func(label string, n int) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Center}),
			text.New(strconv.Itoa(n), props.Text{Size: 11, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Reportes", rep.Reports),
		cell("Movimientos", rep.Movements),
		cell("Ventas", rep.Sales),
		cell("Saldos", rep.Items),
	)
}

// countRows una fila por tipo de discrepancia encontrado, en orden alfabético.
func countRows(rep reconciliation.Report) []core.Row {
	counts := rep.CountByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	rows := make([]core.Row, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, row.New(5).Add(
			col.New(6).Add(text.New(k, props.Text{Size: 8, Left: 2})),
			col.New(6).Add(text.New(strconv.Itoa(counts[reconciliation.Kind(k)]), props.Text{
				Size: 8, Align: align.Right, Color: colorAlert,
			})),
		))
	}
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tipo", 2),
		h("Entidad", 2),
		h("Id", 2),
		h("Esperado", 1),
		h("Actual", 1),
		h("Detalle", 4),
	)
}

func tableRows(ds []reconciliation.Discrepancy) []core.Row {
	out := make([]core.Row, 0, len(ds))
	for _, d := range ds {
		cell := func(s string, size int) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 7, Top: 1, Left: 1, Right: 1}))
		}
		out = append(out, row.New(9).Add(
			col.New(2).Add(text.New(string(d.Kind), props.Text{Size: 7, Top: 1, Left: 1, Color: colorAlert})),
			cell(d.EntityType, 2),
			cell(shortID(d.EntityID), 2),
			cell(d.Expected, 1),
			cell(d.Actual, 1),
			cell(d.Message, 4),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID recorta uuids largos para que quepan en la columna.
func shortID(id string) string {
	if len(id) <= 13 {
		return id
	}
	return id[:8] + "…" + id[len(id)-4:]
}
