package syncqueue_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	q      *syncqueue.Queue
	remote *memory.RemoteStore
	conn   *connectivity.State
	cache  *memory.LocalCache
	now    time.Time
}

func newFixture(t *testing.T, cfg syncqueue.Config) *fixture {
	t.Helper()
	f := &fixture{
		remote: memory.NewRemoteStore(),
		conn:   connectivity.New(true, true, zerolog.Nop()),
		cache:  memory.NewLocalCache(),
		now:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	store := localstore.New(f.cache, zerolog.Nop())
	f.q = syncqueue.New(store, f.remote, f.conn, cfg, zerolog.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func entry(t *testing.T, et entity.EntityType, op entity.SyncOperation, id, payload string) entity.SyncQueueEntry {
	t.Helper()
	var p json.RawMessage
	if payload != "" {
		p = json.RawMessage(payload)
	}
	e, err := syncqueue.NewEntry(et, op, id, p)
	require.NoError(t, err)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Enqueue / NewEntry
// ──────────────────────────────────────────────────────────────────────────────

func TestNewEntry_Validaciones(t *testing.T) {
	_, err := syncqueue.NewEntry("facturas", entity.SyncCreate, "x", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = syncqueue.NewEntry(entity.EntityVentas, "upsert", "x", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = syncqueue.NewEntry(entity.EntityVentas, entity.SyncCreate, "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = syncqueue.NewEntry(entity.EntityVentas, entity.SyncUpdate, "x", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = syncqueue.NewEntry(entity.EntityVentas, entity.SyncDelete, "x", nil)
	assert.NoError(t, err)
}

func TestEnqueue_SecuenciaMonotona(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{})

	_, err := f.q.Enqueue(ctx,
		entry(t, entity.EntityReportes, entity.SyncCreate, "r1", `{"id":"r1"}`),
		entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`),
	)
	require.NoError(t, err)
	added, err := f.q.Enqueue(ctx, entry(t, entity.EntityReportes, entity.SyncUpdate, "r1", `{"id":"r1","x":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), added[0].Seq)

	pending, err := f.q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, e := range pending {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, f.now, e.EnqueuedAt)
	}
}

func TestStage_EscribeColeccionYColaJuntas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{})

	_, err := f.q.Stage(ctx,
		map[string][]json.RawMessage{"reportes": {json.RawMessage(`{"id":"r1"}`)}},
		entry(t, entity.EntityReportes, entity.SyncCreate, "r1", `{"id":"r1"}`),
	)
	require.NoError(t, err)

	raw, ok, _ := f.cache.Get(ctx, "reportes")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"r1"}]`, raw)
	has, err := f.q.HasEntries(ctx, entity.EntityReportes)
	require.NoError(t, err)
	assert.True(t, has)
}

// ──────────────────────────────────────────────────────────────────────────────
// Process
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_DrenaEnOrdenYVacia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{})

	_, err := f.q.Enqueue(ctx,
		entry(t, entity.EntityReportes, entity.SyncCreate, "r1", `{"id":"r1","v":1}`),
		entry(t, entity.EntityReportes, entity.SyncUpdate, "r1", `{"id":"r1","v":2}`),
		entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`),
		entry(t, entity.EntityVentas, entity.SyncDelete, "v1", ""),
	)
	require.NoError(t, err)

	res, err := f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 0, res.Remaining)

	row, err := f.remote.Get(ctx, "reportes", "r1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r1","v":2}`, string(row))
	assert.Equal(t, 0, f.remote.Count("ventas"))
}

func TestProcess_ReplayDobleDejaUnRegistro(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{})

	e := entry(t, entity.EntityReportes, entity.SyncCreate, "r1", `{"id":"r1"}`)
	_, err := f.q.Enqueue(ctx, e)
	require.NoError(t, err)
	_, err = f.q.Process(ctx)
	require.NoError(t, err)

	// la misma entrada reaparece (p. ej. el proceso murió antes de borrarla)
	_, err = f.q.Enqueue(ctx, e)
	require.NoError(t, err)
	_, err = f.q.Process(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.remote.Count("reportes"))
}

func TestProcess_ConectividadDetieneSinContarIntento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{})
	_, err := f.q.Enqueue(ctx, entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`))
	require.NoError(t, err)

	f.remote.SetAvailable(false)
	res, err := f.q.Process(ctx)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 1, res.Remaining)
	assert.False(t, f.conn.Snapshot().RemoteConnected)

	pending, _ := f.q.Pending(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].Attempts)
}

// unreachableRemote falla cada escritura como falla el socket.
type unreachableRemote struct{ *memory.RemoteStore }

func (unreachableRemote) Upsert(context.Context, string, string, json.RawMessage) error {
	return fmt.Errorf("%w: %w", domain.ErrConnectivity, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
}

func TestProcess_FallaDeRedMarcaOffline(t *testing.T) {
	ctx := context.Background()
	conn := connectivity.New(true, true, zerolog.Nop())
	store := localstore.New(memory.NewLocalCache(), zerolog.Nop())
	q := syncqueue.New(store, unreachableRemote{memory.NewRemoteStore()}, conn, syncqueue.Config{}, zerolog.Nop())
	_, err := q.Enqueue(ctx, entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`))
	require.NoError(t, err)

	res, err := q.Process(ctx)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	snap := conn.Snapshot()
	assert.False(t, snap.IsOnline)
	assert.False(t, snap.RemoteConnected)
}

func TestProcess_RechazoBackoffYDeadLetter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{MaxAttempts: 2, InitialBackoff: time.Minute, MaxBackoff: time.Hour})
	f.remote.RejectWhen(func(collection, id string) error {
		if id == "malo" {
			return errors.New("violates check constraint")
		}
		return nil
	})

	_, err := f.q.Enqueue(ctx,
		entry(t, entity.EntityVentas, entity.SyncCreate, "malo", `{"id":"malo"}`),
		entry(t, entity.EntityVentas, entity.SyncUpdate, "malo", `{"id":"malo","v":2}`),
		entry(t, entity.EntityVentas, entity.SyncCreate, "bueno", `{"id":"bueno"}`),
	)
	require.NoError(t, err)

	res, err := f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Held, "la actualización del mismo id queda retenida")
	assert.Equal(t, 1, res.Processed, "la entrada independiente sigue")
	assert.Equal(t, 1, f.remote.Count("ventas"))

	// dentro del backoff no se reintenta
	res, err = f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, res.Held)

	f.now = f.now.Add(2 * time.Minute)
	res, err = f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeadLettered)
	assert.Equal(t, 1, res.Dead)
	assert.Equal(t, 1, res.Remaining)

	dead, err := f.q.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "malo", dead[0].EntityID)
	assert.Equal(t, 2, dead[0].Attempts)
	assert.Contains(t, dead[0].LastError, "check constraint")

	// la muerta sigue reteniendo la actualización posterior del mismo id
	f.now = f.now.Add(time.Hour)
	res, err = f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Held)
	assert.Equal(t, 0, res.Processed)
}

func TestRetryYDiscardDeadLetter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, syncqueue.Config{MaxAttempts: 1})
	reject := true
	f.remote.RejectWhen(func(string, string) error {
		if reject {
			return errors.New("rechazado")
		}
		return nil
	})
	_, err := f.q.Enqueue(ctx,
		entry(t, entity.EntityVentas, entity.SyncCreate, "a", `{"id":"a"}`),
		entry(t, entity.EntityVentas, entity.SyncCreate, "b", `{"id":"b"}`),
	)
	require.NoError(t, err)
	_, err = f.q.Process(ctx)
	require.NoError(t, err)

	dead, _ := f.q.DeadLetters(ctx)
	require.Len(t, dead, 2)

	pending, _ := f.q.Pending(ctx)
	require.Empty(t, pending)
	assert.ErrorIs(t, f.q.RetryDeadLetter(ctx, "no-existe"), domain.ErrNotFound)

	require.NoError(t, f.q.RetryDeadLetter(ctx, dead[0].ID))
	require.NoError(t, f.q.DiscardDeadLetter(ctx, dead[1].ID))
	assert.ErrorIs(t, f.q.DiscardDeadLetter(ctx, dead[0].ID), domain.ErrConflict, "ya no está muerta")

	reject = false
	res, err := f.q.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 0, res.Dead)
	row, _ := f.remote.Get(ctx, "ventas", "a")
	assert.NotNil(t, row)
}

// blockingRemote retiene el primer Upsert hasta que se libere.
type blockingRemote struct {
	*memory.RemoteStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRemote) Upsert(ctx context.Context, c, id string, row json.RawMessage) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.RemoteStore.Upsert(ctx, c, id, row)
}

func TestProcess_NoReentrante(t *testing.T) {
	ctx := context.Background()
	remote := &blockingRemote{RemoteStore: memory.NewRemoteStore(), entered: make(chan struct{}), release: make(chan struct{})}
	store := localstore.New(memory.NewLocalCache(), zerolog.Nop())
	q := syncqueue.New(store, remote, connectivity.New(true, true, zerolog.Nop()), syncqueue.Config{}, zerolog.Nop())
	_, err := q.Enqueue(ctx, entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`))
	require.NoError(t, err)

	done := make(chan syncqueue.ProcessResult)
	go func() {
		res, _ := q.Process(ctx)
		done <- res
	}()
	<-remote.entered

	res, err := q.Process(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(remote.release)
	first := <-done
	assert.Equal(t, 1, first.Processed)
}

func TestProcess_SinRemoto(t *testing.T) {
	store := localstore.New(memory.NewLocalCache(), zerolog.Nop())
	q := syncqueue.New(store, nil, nil, syncqueue.Config{}, zerolog.Nop())
	res, err := q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.NotEmpty(t, res.Message)
}

func TestBackoff(t *testing.T) {
	cfg := syncqueue.Config{InitialBackoff: 5 * time.Second, MaxBackoff: 30 * time.Second}
	assert.Equal(t, 5*time.Second, cfg.Backoff(1))
	assert.Equal(t, 10*time.Second, cfg.Backoff(2))
	assert.Equal(t, 20*time.Second, cfg.Backoff(3))
	assert.Equal(t, 30*time.Second, cfg.Backoff(4))
	assert.Equal(t, 30*time.Second, cfg.Backoff(10))
}

// ──────────────────────────────────────────────────────────────────────────────
// Watcher
// ──────────────────────────────────────────────────────────────────────────────

func TestWatcher_DrenaAlReconectar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, syncqueue.Config{})
	f.conn.SetRemoteConnected(false)
	_, err := f.q.Enqueue(ctx, entry(t, entity.EntityReportes, entity.SyncCreate, "r1", `{"id":"r1"}`))
	require.NoError(t, err)

	w := syncqueue.NewWatcher(f.q, f.conn, time.Hour, zerolog.Nop())
	go w.Run(ctx)

	f.conn.SetRemoteConnected(true)
	require.Eventually(t, func() bool { return f.remote.Count("reportes") == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DrenaConKick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, syncqueue.Config{})
	go syncqueue.NewWatcher(f.q, f.conn, time.Hour, zerolog.Nop()).Run(ctx)

	_, err := f.q.Enqueue(ctx, entry(t, entity.EntityVentas, entity.SyncCreate, "v1", `{"id":"v1"}`))
	require.NoError(t, err)
	f.q.Kick()
	f.q.Kick() // avisos seguidos no bloquean
	require.Eventually(t, func() bool { return f.remote.Count("ventas") == 1 }, 2*time.Second, 10*time.Millisecond)
}
