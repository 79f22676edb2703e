package report_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
	"github.com/jhoicas/maquipaes-api/internal/application/report"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/domain/pricing"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type harness struct {
	uc     *report.UseCase
	router *datasource.Router
	queue  *syncqueue.Queue
	conn   *connectivity.State
	remote *memory.RemoteStore
}

func newHarness(t *testing.T, online bool) *harness {
	t.Helper()
	log := zerolog.Nop()
	h := &harness{remote: memory.NewRemoteStore(), conn: connectivity.New(online, online, log)}
	store := localstore.New(memory.NewLocalCache(), log)
	h.queue = syncqueue.New(store, h.remote, h.conn, syncqueue.Config{}, log)
	h.router = datasource.NewRouter(store, h.queue, h.remote, h.conn, log)
	runner := datasource.NewTxRunner(h.router)
	movements := inventory.NewMovementUseCase(runner, h.router, ledger.NewAcopioResolver(), log)
	h.uc = report.NewUseCase(runner, movements, log)

	// catálogos base, ya sincronizados
	h.commit(t,
		put(t, entity.EntityMachines, "volq-1", entity.Machine{ID: "volq-1", Nombre: "Volqueta 1", Tipo: entity.MachineVolqueta}),
		put(t, entity.EntityMachines, "exc-1", entity.Machine{ID: "exc-1", Nombre: "Excavadora 1", Tipo: entity.MachineExcavadora}),
		put(t, entity.EntityMateriales, "mat-1", entity.Material{ID: "mat-1", Nombre: "Arena", ValorM3: d("45000")}),
		put(t, entity.EntityTarifasFlete, "tf-1", entity.TarifaFlete{ID: "tf-1", Origen: "Acopio Maquipaes", Destino: "Cliente Y", ValorM3: d("12000")}),
		put(t, entity.EntityInventarioAcopio, "Arena", entity.InventoryItem{Material: "Arena", CantidadDisponible: d("100")}),
	)
	return h
}

func put(t *testing.T, et entity.EntityType, id string, v any) datasource.Write {
	t.Helper()
	w, err := datasource.Put(et, entity.SyncCreate, id, v)
	require.NoError(t, err)
	return w
}

func (h *harness) commit(t *testing.T, writes ...datasource.Write) {
	t.Helper()
	_, err := h.router.Commit(context.Background(), writes...)
	require.NoError(t, err)
	// el seed no cuenta como pendiente
	pending, _ := h.queue.Pending(context.Background())
	if len(pending) > 0 {
		h.conn.SetRemoteConnected(true)
		online := h.conn.Snapshot().IsOnline
		h.conn.SetOnline(true)
		_, err := h.queue.Process(context.Background())
		require.NoError(t, err)
		h.conn.SetOnline(online)
		h.conn.SetRemoteConnected(online)
	}
}

// drain hace a mano lo que el Watcher hace en segundo plano.
func (h *harness) drain(t *testing.T) syncqueue.ProcessResult {
	t.Helper()
	pr, err := h.queue.Process(context.Background())
	require.NoError(t, err)
	return pr
}

func (h *harness) local(t *testing.T, et entity.EntityType) []json.RawMessage {
	t.Helper()
	rows, err := h.router.LocalList(context.Background(), et)
	require.NoError(t, err)
	return rows
}

func trip(id, origin, dest, m3 string) entity.ActivityReport {
	q := d(m3)
	return entity.ActivityReport{
		ID:          id,
		MachineID:   "volq-1",
		ReportType:  entity.ReportViajes,
		ReportDate:  time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Origin:      origin,
		Destination: dest,
		Material:    "Arena",
		CantidadM3:  &q,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AddReport
// ──────────────────────────────────────────────────────────────────────────────

func TestAddReport_SalidaGeneraMovimientoYVenta(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	res, err := h.uc.AddReport(ctx, trip("r1", "Acopio Maquipaes", "Cliente Y", "10"))
	require.NoError(t, err)
	assert.True(t, res.Exito)
	assert.Equal(t, datasource.SourceSupabase, res.Source)
	require.NotNil(t, res.Movement)
	assert.Equal(t, entity.MovimientoSalida, res.Movement.Tipo)
	assert.Equal(t, pricing.AutomaticSaleID("r1"), res.VentaID)

	h.drain(t)
	row, err := h.remote.Get(ctx, "ventas", res.VentaID)
	require.NoError(t, err)
	var venta entity.Venta
	require.NoError(t, json.Unmarshal(row, &venta))
	assert.Equal(t, entity.RegistroAutomatico, venta.TipoRegistro)
	// 10 m3 × 45000 material + 10 m3 × 12000 flete
	assert.True(t, d("570000").Equal(venta.TotalVenta))

	rrow, err := h.remote.Get(ctx, "reportes", "r1")
	require.NoError(t, err)
	var saved entity.ActivityReport
	require.NoError(t, json.Unmarshal(rrow, &saved))
	assert.True(t, saved.TarifaEncontrada)
	assert.False(t, saved.ProcesamientoOmitido)
}

func TestAddReport_StockInsuficienteGuardaReporteMarcado(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	res, err := h.uc.AddReport(ctx, trip("r2", "Acopio Maquipaes", "Cliente Y", "150"))
	require.NoError(t, err)
	assert.True(t, res.Exito, "el reporte se guarda igual")
	assert.Contains(t, res.Advertencia, "stock insuficiente")
	assert.Empty(t, res.VentaID)

	reports := h.local(t, entity.EntityReportes)
	require.Len(t, reports, 1)
	var saved entity.ActivityReport
	require.NoError(t, json.Unmarshal(reports[0], &saved))
	assert.True(t, saved.ProcesamientoOmitido)
	assert.False(t, saved.TarifaEncontrada)
	assert.Empty(t, h.local(t, entity.EntityMovimientos))
	assert.Empty(t, h.local(t, entity.EntityVentas))
}

func TestAddReport_OfflineSeEncolaYSeReproduceConMismoID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	in := trip("", "Cantera X", "Acopio Maquipaes", "30")
	in.ReportType = entity.ReportViajes
	res, err := h.uc.AddReport(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceOffline, res.Source)
	require.NotEmpty(t, res.ReportID)
	assert.Len(t, h.local(t, entity.EntityReportes), 1, "escrito en la caché de inmediato")
	assert.Equal(t, 0, h.remote.Count("reportes"))

	pending, err := h.queue.Pending(ctx)
	require.NoError(t, err)
	var creates int
	for _, e := range pending {
		if e.EntityType == string(entity.EntityReportes) {
			assert.Equal(t, entity.SyncCreate, e.Operation)
			assert.Equal(t, res.ReportID, e.EntityID)
			creates++
		}
	}
	assert.Equal(t, 1, creates)

	h.conn.SetOnline(true)
	h.conn.SetRemoteConnected(true)
	pr, err := h.queue.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pr.Remaining)

	assert.Equal(t, 1, h.remote.Count("reportes"))
	row, err := h.remote.Get(ctx, "reportes", res.ReportID)
	require.NoError(t, err)
	assert.NotNil(t, row)
	var inv entity.InventoryItem
	irow, _ := h.remote.Get(ctx, "inventario_acopio", "Arena")
	require.NoError(t, json.Unmarshal(irow, &inv))
	assert.True(t, d("130").Equal(inv.CantidadDisponible))
}

func TestAddReport_ReenvioNoDuplicaMovimientoNiVenta(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	_, err := h.uc.AddReport(ctx, trip("r3", "Cantera X", "Acopio Maquipaes", "30"))
	require.NoError(t, err)
	res, err := h.uc.AddReport(ctx, trip("r3", "Cantera X", "Acopio Maquipaes", "35"))
	require.NoError(t, err)
	assert.True(t, res.Actualizado)
	assert.Contains(t, res.Advertencia, "no revierte")

	assert.Len(t, h.local(t, entity.EntityMovimientos), 1)
	assert.Len(t, h.local(t, entity.EntityVentas), 1)
	assert.Len(t, h.local(t, entity.EntityReportes), 1)
}

func TestAddReport_HorasGeneraAlquiler(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	hours := d("8")
	res, err := h.uc.AddReport(ctx, entity.ActivityReport{
		ID: "h1", MachineID: "exc-1", ReportType: entity.ReportHorasTrabajadas, Hours: &hours,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Movement)
	require.NotEmpty(t, res.VentaID)

	ventas := h.local(t, entity.EntityVentas)
	require.Len(t, ventas, 1)
	var v entity.Venta
	require.NoError(t, json.Unmarshal(ventas[0], &v))
	assert.Equal(t, entity.DetalleAlquiler, v.Detalles[0].Tipo)
	assert.True(t, d("1760000").Equal(v.TotalVenta))
}

func TestAddReport_CombustibleSoloGuardaReporte(t *testing.T) {
	h := newHarness(t, false)
	value := d("350000")
	res, err := h.uc.AddReport(context.Background(), entity.ActivityReport{
		MachineID: "volq-1", ReportType: entity.ReportCombustible, Value: &value,
	})
	require.NoError(t, err)
	assert.Empty(t, res.VentaID)
	assert.Len(t, h.local(t, entity.EntityReportes), 1)
}

func TestAddReport_Validaciones(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	_, err := h.uc.AddReport(ctx, trip("x", "Cantera", "Acopio", "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := trip("y", "Cantera", "Acopio", "5")
	bad.ReportType = "Vuelo"
	_, err = h.uc.AddReport(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	noMachine := trip("z", "Cantera", "Acopio", "5")
	noMachine.MachineID = "fantasma"
	_, err = h.uc.AddReport(ctx, noMachine)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.uc.AddReport(ctx, entity.ActivityReport{MachineID: "exc-1", ReportType: entity.ReportHorasExtras})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, h.local(t, entity.EntityReportes), "nada se persiste")
}

func TestAddReport_ExcavadoraEntradaGeneraVentaYConcilia(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	in := trip("rx", "Cantera X", "Acopio Maquipaes", "30")
	in.MachineID = "exc-1"
	res, err := h.uc.AddReport(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, res.Movement)
	assert.Equal(t, entity.MovimientoEntrada, res.Movement.Tipo)
	assert.Equal(t, pricing.AutomaticSaleID("rx"), res.VentaID)
	assert.Empty(t, res.Advertencia)

	var ds reconciliation.Dataset
	ds.Reports, _ = localstore.Decode[entity.ActivityReport](h.local(t, entity.EntityReportes))
	ds.Movements, _ = localstore.Decode[entity.MovementRecord](h.local(t, entity.EntityMovimientos))
	ds.Sales, _ = localstore.Decode[entity.Venta](h.local(t, entity.EntityVentas))
	ds.Items, _ = localstore.Decode[entity.InventoryItem](h.local(t, entity.EntityInventarioAcopio))
	rep := reconciliation.Check(ds)
	assert.Zero(t, rep.CountByKind()[reconciliation.KindMissingSale], "%+v", rep.Discrepancies)
}

func TestAddReport_CambioDeTipoEsConflicto(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	hours := d("4")
	_, err := h.uc.AddReport(ctx, entity.ActivityReport{
		ID: "h2", MachineID: "volq-1", ReportType: entity.ReportHorasTrabajadas, Hours: &hours,
	})
	require.NoError(t, err)

	_, err = h.uc.AddReport(ctx, trip("h2", "Cantera X", "Acopio Maquipaes", "30"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, h.local(t, entity.EntityMovimientos), "no se aplica movimiento")

	var saved entity.ActivityReport
	reports := h.local(t, entity.EntityReportes)
	require.Len(t, reports, 1)
	require.NoError(t, json.Unmarshal(reports[0], &saved))
	assert.Equal(t, entity.ReportHorasTrabajadas, saved.ReportType)
}

func TestAddReport_ReporteIlegibleNoSeSobrescribe(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.commit(t, put(t, entity.EntityReportes, "rc", map[string]any{"id": "rc", "reportDate": "ayer"}))

	_, err := h.uc.AddReport(ctx, trip("rc", "Cantera X", "Acopio Maquipaes", "30"))
	assert.ErrorIs(t, err, domain.ErrCorruptCache)
	assert.Empty(t, h.local(t, entity.EntityMovimientos))
}

// slowRemote demora cada Upsert.
type slowRemote struct {
	*memory.RemoteStore
	delay time.Duration
}

func (s *slowRemote) Upsert(ctx context.Context, collection, id string, row json.RawMessage) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.RemoteStore.Upsert(ctx, collection, id, row)
}

func TestAddReport_RemotoLentoNoDemoraLaRespuesta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := zerolog.Nop()
	remote := &slowRemote{RemoteStore: memory.NewRemoteStore(), delay: 200 * time.Millisecond}
	conn := connectivity.New(true, false, log)
	store := localstore.New(memory.NewLocalCache(), log)
	queue := syncqueue.New(store, remote, conn, syncqueue.Config{}, log)
	router := datasource.NewRouter(store, queue, remote, conn, log)
	runner := datasource.NewTxRunner(router)
	uc := report.NewUseCase(runner, inventory.NewMovementUseCase(runner, router, ledger.NewAcopioResolver(), log), log)

	// catálogo escrito sin sesión remota: queda atraso en la cola
	writes := []datasource.Write{
		put(t, entity.EntityMachines, "volq-1", entity.Machine{ID: "volq-1", Nombre: "Volqueta 1", Tipo: entity.MachineVolqueta}),
	}
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("mat-%d", i)
		writes = append(writes, put(t, entity.EntityMateriales, id, entity.Material{ID: id, Nombre: id, ValorM3: d("1000")}))
	}
	_, err := router.Commit(ctx, writes...)
	require.NoError(t, err)

	conn.SetRemoteConnected(true)
	go syncqueue.NewWatcher(queue, conn, time.Hour, log).Run(ctx)

	start := time.Now()
	res, err := uc.AddReport(ctx, trip("rs", "Cantera X", "Acopio Maquipaes", "30"))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "la respuesta no espera al remoto")
	assert.Equal(t, datasource.SourceSupabase, res.Source)
	assert.Positive(t, res.Queued)

	require.Eventually(t, func() bool { return remote.Count("reportes") == 1 }, 15*time.Second, 50*time.Millisecond)
}
