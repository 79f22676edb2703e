package datasource_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/memory"
)

type env struct {
	router *datasource.Router
	queue  *syncqueue.Queue
	remote *memory.RemoteStore
	conn   *connectivity.State
	store  *localstore.Store
}

func newEnv(t *testing.T, online, connected bool) *env {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	e := &env{
		remote: memory.NewRemoteStore(),
		conn:   connectivity.New(online, connected, log),
		store:  localstore.New(memory.NewLocalCache(), log),
	}
	e.queue = syncqueue.New(e.store, e.remote, e.conn, syncqueue.Config{MaxAttempts: 3}, log)
	e.router = datasource.NewRouter(e.store, e.queue, e.remote, e.conn, log)
	return e
}

func put(t *testing.T, et entity.EntityType, id string, v any) datasource.Write {
	t.Helper()
	w, err := datasource.Put(et, entity.SyncCreate, id, v)
	require.NoError(t, err)
	return w
}

func TestEffectiveDataSource(t *testing.T) {
	assert.Equal(t, datasource.SourceOffline, newEnv(t, false, true).router.EffectiveDataSource(entity.EntityVentas))
	assert.Equal(t, datasource.SourceSupabase, newEnv(t, true, true).router.EffectiveDataSource(entity.EntityVentas))
	assert.Equal(t, datasource.SourceLocal, newEnv(t, true, false).router.EffectiveDataSource(entity.EntityVentas))

	e := newEnv(t, true, true)
	sinRemoto := datasource.NewRouter(e.store, e.queue, nil, e.conn, zerolog.Nop())
	assert.Equal(t, datasource.SourceLocal, sinRemoto.EffectiveDataSource(entity.EntityVentas))
}

func TestCommit_OnlineNoEsperaAlRemoto(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)

	res, err := e.router.Commit(ctx,
		put(t, entity.EntityReportes, "r1", map[string]string{"id": "r1"}),
		put(t, entity.EntityVentas, "v1", map[string]string{"id": "v1"}),
	)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceSupabase, res.Source)
	assert.Equal(t, 2, res.Queued)
	assert.Equal(t, 0, e.remote.Upserts(), "el remoto se escribe fuera de Commit")

	// también queda en la caché local, y la cola recibió el aviso de drenado
	rows, err := e.router.LocalList(ctx, entity.EntityReportes)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	select {
	case <-e.queue.Kicks():
	default:
		t.Fatal("Commit online debe pedir un drenado")
	}

	pr, err := e.queue.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pr.Processed)
	assert.Equal(t, 1, e.remote.Count("reportes"))
	assert.Equal(t, 1, e.remote.Count("ventas"))
	pending, _ := e.queue.Pending(ctx)
	assert.Empty(t, pending)
}

// slowRemote demora cada Upsert.
type slowRemote struct {
	*memory.RemoteStore
	delay time.Duration
}

func (s *slowRemote) Upsert(ctx context.Context, c, id string, row json.RawMessage) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.RemoteStore.Upsert(ctx, c, id, row)
}

func TestCommit_RemotoLentoNoDemoraLaEscritura(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := zerolog.Nop()
	remote := &slowRemote{RemoteStore: memory.NewRemoteStore(), delay: 200 * time.Millisecond}
	conn := connectivity.New(true, false, log)
	store := localstore.New(memory.NewLocalCache(), log)
	queue := syncqueue.New(store, remote, conn, syncqueue.Config{}, log)
	router := datasource.NewRouter(store, queue, remote, conn, log)

	// atraso: diez escrituras hechas sin sesión remota
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("m%d", i)
		_, err := router.Commit(ctx, put(t, entity.EntityMateriales, id, map[string]string{"id": id}))
		require.NoError(t, err)
	}
	conn.SetRemoteConnected(true)
	go syncqueue.NewWatcher(queue, conn, time.Hour, log).Run(ctx)

	start := time.Now()
	res, err := router.Commit(ctx, put(t, entity.EntityVentas, "v1", map[string]string{"id": "v1"}))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "Commit no espera al remoto")
	assert.Equal(t, datasource.SourceSupabase, res.Source)

	require.Eventually(t, func() bool { return remote.Count("ventas") == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 10, remote.Count("materiales"), "el atraso se reprodujo antes, en orden")
}

func TestCommit_OfflineEncolaTodo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false, false)

	res, err := e.router.Commit(ctx,
		put(t, entity.EntityReportes, "r1", map[string]string{"id": "r1"}),
		datasource.Delete(entity.EntityVentas, "v0"),
	)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceOffline, res.Source)
	assert.Equal(t, 2, res.Queued)
	assert.False(t, res.Synced)
	assert.Equal(t, 0, e.remote.Upserts())

	pending, _ := e.queue.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, entity.SyncCreate, pending[0].Operation)
	assert.Equal(t, entity.SyncDelete, pending[1].Operation)
}

func TestCommit_RemotoCaidoQuedaEncolado(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)
	e.remote.SetAvailable(false)

	res, err := e.router.Commit(ctx, put(t, entity.EntityVentas, "v1", map[string]string{"id": "v1"}))
	require.NoError(t, err, "la falla de conectividad no se propaga")
	assert.Equal(t, 1, res.Queued)

	pr, err := e.queue.Process(ctx)
	require.NoError(t, err)
	assert.True(t, pr.Stopped)
	assert.False(t, e.conn.Snapshot().RemoteConnected)
	assert.Equal(t, datasource.SourceLocal, e.router.EffectiveDataSource(entity.EntityVentas))

	e.remote.SetAvailable(true)
	e.conn.SetRemoteConnected(true)
	pr, err = e.queue.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pr.Processed)
	assert.Equal(t, 1, e.remote.Count("ventas"))
}

func TestCommit_RechazoQuedaEncolado(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)
	e.remote.RejectWhen(func(string, string) error { return errors.New("constraint") })

	res, err := e.router.Commit(ctx, put(t, entity.EntityVentas, "v1", map[string]string{"id": "v1"}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)

	pr, err := e.queue.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pr.Failed)
	pending, _ := e.queue.Pending(ctx)
	assert.Len(t, pending, 1)
	assert.True(t, e.conn.Snapshot().RemoteConnected, "un rechazo no es desconexión")
}

func TestCommit_EscrituraInvalida(t *testing.T) {
	e := newEnv(t, true, true)
	_, err := e.router.Commit(context.Background(), datasource.Write{EntityType: "facturas", Operation: entity.SyncCreate, ID: "x", Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, e.remote.Upserts())
}

func TestMarkForSync_AplicaLocalYEncola(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)

	entry, err := e.router.MarkForSync(ctx, entity.EntityMachines, entity.SyncCreate, "maq-1", json.RawMessage(`{"id":"maq-1","tipo":"Volqueta"}`))
	require.NoError(t, err)
	assert.Equal(t, "maq-1", entry.EntityID)

	rows, _ := e.router.LocalList(ctx, entity.EntityMachines)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, e.remote.Upserts(), "markForSync no toca el remoto")

	_, err = e.router.MarkForSync(ctx, entity.EntityMachines, entity.SyncDelete, "maq-1", nil)
	require.NoError(t, err)
	rows, _ = e.router.LocalList(ctx, entity.EntityMachines)
	assert.Empty(t, rows)
	pending, _ := e.queue.Pending(ctx)
	assert.Len(t, pending, 2)
}

func TestMarkForSync_RechazaColeccionesDelLedger(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)

	_, err := e.router.MarkForSync(ctx, entity.EntityInventarioAcopio, entity.SyncUpdate, "Arena", json.RawMessage(`{"material":"Arena","cantidad_disponible":"999"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.router.MarkForSync(ctx, entity.EntityMovimientos, entity.SyncDelete, "mov-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	pending, _ := e.queue.Pending(ctx)
	assert.Empty(t, pending)
}

func TestMarkForSync_EsperaALaTransaccionEnCurso(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false, false)
	runner := datasource.NewTxRunner(e.router)

	inTx, release := make(chan struct{}), make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx, func(tx datasource.LedgerTx) error {
			close(inTx)
			<-release
			return tx.Put(entity.EntityVentas, entity.SyncCreate, "v1", map[string]string{"id": "v1"})
		})
		txDone <- err
	}()
	<-inTx

	marked := make(chan error, 1)
	go func() {
		_, err := e.router.MarkForSync(ctx, entity.EntityVentas, entity.SyncUpdate, "v1", json.RawMessage(`{"id":"v1","cliente":"B"}`))
		marked <- err
	}()

	select {
	case <-marked:
		t.Fatal("MarkForSync no debe correr dentro de una transacción ajena")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-txDone)
	require.NoError(t, <-marked)

	pending, _ := e.queue.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, entity.SyncCreate, pending[0].Operation, "la transacción se encola primero")
	assert.Equal(t, entity.SyncUpdate, pending[1].Operation)
}

func TestList_RemotoRefrescaCache(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)
	require.NoError(t, e.remote.Upsert(ctx, "materiales", "m1", json.RawMessage(`{"id":"m1","nombre":"Arena"}`)))

	rows, src, err := e.router.List(ctx, entity.EntityMateriales)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceSupabase, src)
	require.Len(t, rows, 1)

	local, _ := e.router.LocalList(ctx, entity.EntityMateriales)
	assert.Len(t, local, 1)
}

func TestList_ConPendientesLeeLocal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, false)
	_, err := e.router.Commit(ctx, put(t, entity.EntityMateriales, "m2", map[string]string{"id": "m2"}))
	require.NoError(t, err)
	require.NoError(t, e.remote.Upsert(ctx, "materiales", "m1", json.RawMessage(`{"id":"m1"}`)))

	e.conn.SetRemoteConnected(true)
	rows, src, err := e.router.List(ctx, entity.EntityMateriales)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceLocal, src)
	require.Len(t, rows, 1)
	id, _ := localstore.RowID(rows[0], "id")
	assert.Equal(t, "m2", id)
}

func TestList_RemotoCaidoCaeALocal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true, true)
	e.remote.SetAvailable(false)

	_, src, err := e.router.List(ctx, entity.EntityVentas)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceLocal, src)
	assert.False(t, e.conn.Snapshot().RemoteConnected)
}

func TestList_TipoDesconocido(t *testing.T) {
	e := newEnv(t, true, true)
	_, _, err := e.router.List(context.Background(), "facturas")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false, false)
	_, err := e.router.Commit(ctx, put(t, entity.EntityVentas, "v1", map[string]string{"id": "v1"}))
	require.NoError(t, err)

	row, src, err := e.router.Get(ctx, entity.EntityVentas, "v1")
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceOffline, src)
	assert.NotNil(t, row)

	row, _, err = e.router.Get(ctx, entity.EntityVentas, "nada")
	require.NoError(t, err)
	assert.Nil(t, row)
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_ErrorDescartaTodo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false, false)
	runner := datasource.NewTxRunner(e.router)

	boom := errors.New("boom")
	_, err := runner.Run(ctx, func(tx datasource.LedgerTx) error {
		require.NoError(t, tx.Put(entity.EntityInventarioAcopio, entity.SyncUpdate, "Arena", map[string]string{"material": "Arena"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, _ := e.router.LocalList(ctx, entity.EntityInventarioAcopio)
	assert.Empty(t, rows)
	pending, _ := e.queue.Pending(ctx)
	assert.Empty(t, pending)
}

func TestTxRunner_LecturasVenEscriturasPropias(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false, false)
	runner := datasource.NewTxRunner(e.router)

	res, err := runner.Run(ctx, func(tx datasource.LedgerTx) error {
		require.NoError(t, tx.Put(entity.EntityVentas, entity.SyncCreate, "v1", map[string]string{"id": "v1", "cliente": "A"}))
		require.NoError(t, tx.Put(entity.EntityVentas, entity.SyncUpdate, "v1", map[string]string{"id": "v1", "cliente": "B"}))

		row, ok, err := tx.Get(ctx, entity.EntityVentas, "v1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"id":"v1","cliente":"B"}`, string(row))

		rows, err := tx.List(ctx, entity.EntityVentas)
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		tx.Delete(entity.EntityVentas, "v9")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Queued, "dos filas distintas: v1 (una sola escritura) y v9")

	pending, _ := e.queue.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, entity.SyncCreate, pending[0].Operation, "create seguido de update se mantiene como create")
}
