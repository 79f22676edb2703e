// Package syncqueue guarda en la caché local las escrituras que aún no llegan al remoto y
// las reproduce en orden global FIFO cuando vuelve la conexión.
package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// Key clave de la cola en la caché local.
const Key = "sync_queue"

// Config reintentos y backoff.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 5 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Minute
	}
	return c
}

// ProcessResult resumen de un drenado.
type ProcessResult struct {
	Skipped      bool   `json:"skipped"`
	Processed    int    `json:"processed"`
	Failed       int    `json:"failed"`
	DeadLettered int    `json:"deadLettered"`
	Held         int    `json:"held"`
	Remaining    int    `json:"remaining"`
	Dead         int    `json:"dead"`
	Stopped      bool   `json:"stopped"`
	Message      string `json:"message"`
}

// Queue cola persistente de sincronización.
type Queue struct {
	store  *localstore.Store
	remote repository.RemoteStore
	conn   *connectivity.State
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time

	mu         sync.Mutex
	processing atomic.Bool
	kick       chan struct{}
}

// New construye la cola. remote puede ser nil (sin remoto configurado): Process no hace nada.
func New(store *localstore.Store, remote repository.RemoteStore, conn *connectivity.State, cfg Config, log zerolog.Logger) *Queue {
	return &Queue{
		store:  store,
		remote: remote,
		conn:   conn,
		cfg:    cfg.withDefaults(),
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		kick:   make(chan struct{}, 1),
	}
}

// Kick pide un drenado sin esperarlo. Avisos seguidos se funden en uno; sin Watcher
// corriendo la entrada espera al próximo Process.
func (q *Queue) Kick() {
	select {
	case q.kick <- struct{}{}:
	default:
	}
}

// Kicks canal que escucha el Watcher.
func (q *Queue) Kicks() <-chan struct{} { return q.kick }

// WithClock reemplaza el reloj (tests).
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.now = now
	return q
}

// NewEntry arma una entrada validada. payload es obligatorio salvo en delete.
func NewEntry(entityType entity.EntityType, op entity.SyncOperation, entityID string, payload json.RawMessage) (entity.SyncQueueEntry, error) {
	if _, err := entity.ParseEntityType(string(entityType)); err != nil {
		return entity.SyncQueueEntry{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !op.Valid() {
		return entity.SyncQueueEntry{}, fmt.Errorf("%w: operación %q", domain.ErrInvalidInput, op)
	}
	if entityID == "" {
		return entity.SyncQueueEntry{}, fmt.Errorf("%w: id de entidad vacío", domain.ErrInvalidInput)
	}
	if op != entity.SyncDelete && len(payload) == 0 {
		return entity.SyncQueueEntry{}, fmt.Errorf("%w: %s sin payload", domain.ErrInvalidInput, op)
	}
	return entity.SyncQueueEntry{
		EntityType: string(entityType),
		EntityID:   entityID,
		Operation:  op,
		Payload:    payload,
		Status:     entity.SyncStatusPending,
	}, nil
}

func (q *Queue) load(ctx context.Context) ([]entity.SyncQueueEntry, error) {
	rows, err := q.store.Load(ctx, Key)
	if err != nil {
		return nil, err
	}
	entries, skipped := localstore.Decode[entity.SyncQueueEntry](rows)
	if skipped > 0 {
		q.log.Error().Int("skipped", skipped).Msg("entradas de cola ilegibles descartadas")
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

func encode(entries []entity.SyncQueueEntry) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		r, err := localstore.Marshal(e)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Enqueue agrega entradas al final de la cola.
func (q *Queue) Enqueue(ctx context.Context, entries ...entity.SyncQueueEntry) ([]entity.SyncQueueEntry, error) {
	return q.Stage(ctx, nil, entries...)
}

// Stage agrega entradas y, en la misma escritura atómica de la caché local, reemplaza las
// colecciones indicadas. Así una escritura local nunca queda sin su entrada de cola.
func (q *Queue) Stage(ctx context.Context, collections map[string][]json.RawMessage, entries ...entity.SyncQueueEntry) ([]entity.SyncQueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	current, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	var seq int64
	for _, e := range current {
		if e.Seq > seq {
			seq = e.Seq
		}
	}
	now := q.now()
	added := make([]entity.SyncQueueEntry, 0, len(entries))
	for _, e := range entries {
		seq++
		e.Seq = seq
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.EnqueuedAt.IsZero() {
			e.EnqueuedAt = now
		}
		e.Status = entity.SyncStatusPending
		added = append(added, e)
	}
	rows, err := encode(append(current, added...))
	if err != nil {
		return nil, err
	}

	all := make(map[string][]json.RawMessage, len(collections)+1)
	for k, v := range collections {
		all[k] = v
	}
	all[Key] = rows
	if err := q.store.SaveMulti(ctx, all); err != nil {
		return nil, err
	}
	for _, e := range added {
		q.log.Debug().
			Str("entity", e.EntityType).
			Str("entity_id", e.EntityID).
			Str("operation", string(e.Operation)).
			Int64("seq", e.Seq).
			Msg("escritura encolada")
	}
	return added, nil
}

// All devuelve la cola completa en orden.
func (q *Queue) All(ctx context.Context) ([]entity.SyncQueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Pending entradas que esperan replay.
func (q *Queue) Pending(ctx context.Context) ([]entity.SyncQueueEntry, error) {
	return q.filter(ctx, func(e entity.SyncQueueEntry) bool { return !e.IsDead() })
}

// DeadLetters entradas que agotaron los reintentos.
func (q *Queue) DeadLetters(ctx context.Context) ([]entity.SyncQueueEntry, error) {
	return q.filter(ctx, func(e entity.SyncQueueEntry) bool { return e.IsDead() })
}

// HasEntries indica si hay entradas (pendientes o muertas) de la colección.
func (q *Queue) HasEntries(ctx context.Context, entityType entity.EntityType) (bool, error) {
	entries, err := q.filter(ctx, func(e entity.SyncQueueEntry) bool { return e.EntityType == string(entityType) })
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

func (q *Queue) filter(ctx context.Context, keep func(entity.SyncQueueEntry) bool) ([]entity.SyncQueueEntry, error) {
	all, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SyncQueueEntry, 0, len(all))
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// mutate aplica fn a la entrada id (remove=true la elimina) y persiste.
func (q *Queue) mutate(ctx context.Context, id string, fn func(e *entity.SyncQueueEntry) (remove bool, err error)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(ctx)
	if err != nil {
		return err
	}
	out := entries[:0:0]
	found := false
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
			continue
		}
		found = true
		remove, err := fn(&e)
		if err != nil {
			return err
		}
		if !remove {
			out = append(out, e)
		}
	}
	if !found {
		return fmt.Errorf("%w: entrada de cola %s", domain.ErrNotFound, id)
	}
	rows, err := encode(out)
	if err != nil {
		return err
	}
	return q.store.Save(ctx, Key, rows)
}

// RetryDeadLetter devuelve una entrada muerta a pendiente con los intentos en cero.
func (q *Queue) RetryDeadLetter(ctx context.Context, id string) error {
	return q.mutate(ctx, id, func(e *entity.SyncQueueEntry) (bool, error) {
		if !e.IsDead() {
			return false, fmt.Errorf("%w: la entrada %s no está en dead-letter", domain.ErrConflict, id)
		}
		e.Status = entity.SyncStatusPending
		e.Attempts = 0
		e.NextAttemptAt = nil
		return false, nil
	})
}

// DiscardDeadLetter elimina una entrada muerta. El dato sigue en la caché local.
func (q *Queue) DiscardDeadLetter(ctx context.Context, id string) error {
	return q.mutate(ctx, id, func(e *entity.SyncQueueEntry) (bool, error) {
		if !e.IsDead() {
			return false, fmt.Errorf("%w: la entrada %s no está en dead-letter", domain.ErrConflict, id)
		}
		q.log.Warn().
			Str("entity", e.EntityType).
			Str("entity_id", e.EntityID).
			Str("last_error", e.LastError).
			Msg("dead-letter descartada")
		return true, nil
	})
}

// Backoff espera antes del intento número attempts+1 (exponencial con tope).
func (c Config) Backoff(attempts int) time.Duration {
	c = c.withDefaults()
	d := c.InitialBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

func (q *Queue) replay(ctx context.Context, e entity.SyncQueueEntry) error {
	switch e.Operation {
	case entity.SyncDelete:
		return q.remote.Delete(ctx, e.EntityType, e.EntityID)
	case entity.SyncCreate, entity.SyncUpdate:
		if len(e.Payload) == 0 {
			return fmt.Errorf("%w: %s sin payload", domain.ErrRemoteRejected, e.Operation)
		}
		return q.remote.Upsert(ctx, e.EntityType, e.EntityID, e.Payload)
	default:
		return fmt.Errorf("%w: operación %q", domain.ErrRemoteRejected, e.Operation)
	}
}

func blockKey(e entity.SyncQueueEntry) string { return e.EntityType + "/" + e.EntityID }

// Process drena la cola en orden. No es reentrante: si ya hay un drenado en curso
// devuelve Skipped de inmediato. Una falla de conectividad detiene el drenado sin
// contar intento; un rechazo cuenta intento, programa backoff y, al llegar a
// MaxAttempts, pasa la entrada a dead-letter. Una entrada fallida o muerta retiene las
// posteriores del mismo id; las de otros ids siguen.
func (q *Queue) Process(ctx context.Context) (ProcessResult, error) {
	if q.remote == nil {
		return ProcessResult{Message: "sin almacenamiento remoto configurado"}, nil
	}
	if !q.processing.CompareAndSwap(false, true) {
		return ProcessResult{Skipped: true, Message: "sincronización en curso"}, nil
	}
	defer q.processing.Store(false)

	snapshot, err := q.All(ctx)
	if err != nil {
		return ProcessResult{}, err
	}

	var res ProcessResult
	held := make(map[string]bool)
	now := q.now()

	for _, e := range snapshot {
		if ctx.Err() != nil {
			res.Stopped = true
			break
		}
		key := blockKey(e)
		if e.IsDead() {
			held[key] = true
			continue
		}
		if held[key] || (e.NextAttemptAt != nil && now.Before(*e.NextAttemptAt)) {
			held[key] = true
			res.Held++
			continue
		}

		err := q.replay(ctx, e)
		if err == nil {
			if err := q.mutate(ctx, e.ID, func(*entity.SyncQueueEntry) (bool, error) { return true, nil }); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return res, err
			}
			res.Processed++
			continue
		}

		if errors.Is(err, domain.ErrConnectivity) {
			q.log.Warn().Err(err).Str("entity", e.EntityType).Str("entity_id", e.EntityID).Msg("remoto inalcanzable; drenado detenido")
			if q.conn != nil {
				q.conn.SetRemoteConnected(false)
				if connectivity.NetworkDown(err) {
					q.conn.SetOnline(false)
				}
			}
			res.Stopped = true
			break
		}

		held[key] = true
		var dead bool
		if merr := q.mutate(ctx, e.ID, func(x *entity.SyncQueueEntry) (bool, error) {
			x.Attempts++
			x.LastError = err.Error()
			if x.Attempts >= q.cfg.MaxAttempts {
				x.Status = entity.SyncStatusDead
				x.NextAttemptAt = nil
				dead = true
				return false, nil
			}
			next := now.Add(q.cfg.Backoff(x.Attempts))
			x.NextAttemptAt = &next
			return false, nil
		}); merr != nil && !errors.Is(merr, domain.ErrNotFound) {
			return res, merr
		}
		ev := q.log.Warn()
		if dead {
			ev = q.log.Error()
			res.DeadLettered++
		} else {
			res.Failed++
		}
		ev.Err(err).
			Str("entity", e.EntityType).
			Str("entity_id", e.EntityID).
			Str("operation", string(e.Operation)).
			Int("attempts", e.Attempts+1).
			Bool("dead", dead).
			Msg("replay rechazado")
	}

	after, err := q.All(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range after {
		if e.IsDead() {
			res.Dead++
		} else {
			res.Remaining++
		}
	}
	res.Message = fmt.Sprintf("%d sincronizadas, %d pendientes, %d en dead-letter", res.Processed, res.Remaining, res.Dead)
	q.log.Info().
		Int("processed", res.Processed).
		Int("remaining", res.Remaining).
		Int("dead", res.Dead).
		Bool("stopped", res.Stopped).
		Msg("drenado de cola")
	return res, nil
}
