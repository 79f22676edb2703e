// Package datasource decide, por colección y por momento, si una lectura o escritura va al
// remoto o a la caché local, y garantiza que toda escritura local tenga su entrada de cola.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// DataSource origen efectivo de una operación.
type DataSource string

const (
	SourceSupabase DataSource = "supabase"
	SourceLocal    DataSource = "localStorage"
	SourceOffline  DataSource = "offline"
)

// Write escritura de una fila: create/update llevan Data; delete solo ID.
type Write struct {
	EntityType entity.EntityType
	Operation  entity.SyncOperation
	ID         string
	Data       json.RawMessage
}

// Put arma una escritura create/update serializando v.
func Put(et entity.EntityType, op entity.SyncOperation, id string, v any) (Write, error) {
	data, err := localstore.Marshal(v)
	if err != nil {
		return Write{}, err
	}
	return Write{EntityType: et, Operation: op, ID: id, Data: data}, nil
}

// Delete arma una escritura de borrado.
func Delete(et entity.EntityType, id string) Write {
	return Write{EntityType: et, Operation: entity.SyncDelete, ID: id}
}

// CommitResult dónde quedó la escritura.
type CommitResult struct {
	Source  DataSource `json:"source"`
	Queued  int        `json:"queued"`
	Synced  bool       `json:"synced"`
	Message string     `json:"message"`
}

// Router política de origen de datos.
type Router struct {
	store  *localstore.Store
	queue  *syncqueue.Queue
	remote repository.RemoteStore
	conn   *connectivity.State
	log    zerolog.Logger

	mu     sync.Mutex // caché local + cola
	ledger sync.Mutex // lectura-modificación-escritura del ledger (TxRunner, MarkForSync)
}

// NewRouter construye el router. remote nil = sin remoto configurado (modo localStorage).
func NewRouter(store *localstore.Store, queue *syncqueue.Queue, remote repository.RemoteStore, conn *connectivity.State, log zerolog.Logger) *Router {
	return &Router{store: store, queue: queue, remote: remote, conn: conn, log: log}
}

// Queue cola usada por el router.
func (r *Router) Queue() *syncqueue.Queue { return r.queue }

// Connectivity estado de conectividad compartido.
func (r *Router) Connectivity() *connectivity.State { return r.conn }

// EffectiveDataSource: sin red -> offline; con sesión remota -> supabase; si no -> localStorage.
// Todas las colecciones siguen la misma política; ninguna es solo local.
func (r *Router) EffectiveDataSource(et entity.EntityType) DataSource {
	snap := r.conn.Snapshot()
	switch {
	case !snap.IsOnline:
		return SourceOffline
	case r.remote != nil && snap.RemoteConnected:
		return SourceSupabase
	default:
		return SourceLocal
	}
}

// stage aplica las escrituras a la caché local y encola una entrada por escritura, todo en
// una sola escritura atómica.
func (r *Router) stage(ctx context.Context, writes []Write) ([]entity.SyncQueueEntry, error) {
	if len(writes) == 0 {
		return nil, nil
	}
	entries := make([]entity.SyncQueueEntry, 0, len(writes))
	for _, w := range writes {
		e, err := syncqueue.NewEntry(w.EntityType, w.Operation, w.ID, w.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	collections := make(map[string][]json.RawMessage)
	for _, w := range writes {
		key := w.EntityType.LocalKey()
		rows, ok := collections[key]
		if !ok {
			var err error
			if rows, err = r.store.Load(ctx, key); err != nil {
				return nil, err
			}
		}
		if w.Operation == entity.SyncDelete {
			rows = localstore.Remove(rows, w.EntityType.IDField(), w.ID)
		} else {
			rows = localstore.Upsert(rows, w.EntityType.IDField(), w.ID, w.Data)
		}
		collections[key] = rows
	}
	return r.queue.Stage(ctx, collections, entries...)
}

// Commit persiste un lote de escrituras que deben compartir el mismo ruteo (p. ej. reporte,
// movimiento, inventario y venta automática). La caché local y la cola se escriben juntas y
// Commit vuelve enseguida: con el remoto disponible solo avisa a la cola (Kick) y el drenado
// corre fuera de la petición, respetando el orden de entradas anteriores.
func (r *Router) Commit(ctx context.Context, writes ...Write) (CommitResult, error) {
	if len(writes) == 0 {
		return CommitResult{Source: r.EffectiveDataSource(""), Synced: true}, nil
	}
	src := r.EffectiveDataSource(writes[0].EntityType)

	added, err := r.stage(ctx, writes)
	if err != nil {
		return CommitResult{}, err
	}
	res := CommitResult{Source: src, Queued: len(added)}
	if src != SourceSupabase {
		res.Message = fmt.Sprintf("guardado local (%s); %d cambios pendientes de sincronizar", src, len(added))
		return res, nil
	}
	r.queue.Kick()
	res.Message = fmt.Sprintf("guardado local; %d cambios sincronizándose en segundo plano", len(added))
	return res, nil
}

// MarkForSync aplica la operación a la caché local y la encola sin intentar el remoto.
// El saldo del acopio y su historial de movimientos solo cambian por el motor de
// movimientos; escribirlos aquí es entrada inválida.
func (r *Router) MarkForSync(ctx context.Context, et entity.EntityType, op entity.SyncOperation, id string, data json.RawMessage) (entity.SyncQueueEntry, error) {
	if et == entity.EntityInventarioAcopio || et == entity.EntityMovimientos {
		return entity.SyncQueueEntry{}, fmt.Errorf("%w: %s solo se modifica con movimientos o ajustes de inventario", domain.ErrInvalidInput, et)
	}
	r.ledger.Lock()
	defer r.ledger.Unlock()
	added, err := r.stage(ctx, []Write{{EntityType: et, Operation: op, ID: id, Data: data}})
	if err != nil {
		return entity.SyncQueueEntry{}, err
	}
	return added[0], nil
}

// LocalList lee la colección de la caché local.
func (r *Router) LocalList(ctx context.Context, et entity.EntityType) ([]json.RawMessage, error) {
	return r.store.Load(ctx, et.LocalKey())
}

// List lee la colección. Con remoto disponible y sin cambios pendientes de esa colección
// lee del remoto y refresca la caché local; en cualquier otro caso lee la caché.
func (r *Router) List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, DataSource, error) {
	if _, err := entity.ParseEntityType(string(et)); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	src := r.EffectiveDataSource(et)
	if src == SourceSupabase {
		rows, ok, err := r.listRemote(ctx, et)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return rows, SourceSupabase, nil
		}
		src = SourceLocal
	}
	rows, err := r.LocalList(ctx, et)
	if err != nil {
		return nil, "", err
	}
	return rows, src, nil
}

func (r *Router) listRemote(ctx context.Context, et entity.EntityType) ([]json.RawMessage, bool, error) {
	pending, err := r.queue.HasEntries(ctx, et)
	if err != nil || pending {
		return nil, false, err
	}
	rows, err := r.remote.List(ctx, string(et))
	if err != nil {
		r.remoteFailed(err, et)
		return nil, false, nil
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pending, err := r.queue.HasEntries(ctx, et); err != nil || pending {
		// hubo una escritura local mientras se leía el remoto: la caché manda
		return nil, false, err
	}
	if err := r.store.Save(ctx, et.LocalKey(), rows); err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// Get lee una fila; nil, nil si no existe.
func (r *Router) Get(ctx context.Context, et entity.EntityType, id string) (json.RawMessage, DataSource, error) {
	src := r.EffectiveDataSource(et)
	if src == SourceSupabase {
		pending, err := r.queue.HasEntries(ctx, et)
		if err != nil {
			return nil, "", err
		}
		if !pending {
			row, err := r.remote.Get(ctx, string(et), id)
			if err == nil {
				return row, SourceSupabase, nil
			}
			r.remoteFailed(err, et)
		}
		src = SourceLocal
	}
	rows, err := r.LocalList(ctx, et)
	if err != nil {
		return nil, "", err
	}
	row, _ := localstore.Find(rows, et.IDField(), id)
	return row, src, nil
}

// Refresh trae del remoto todas las colecciones sin cambios pendientes (arranque del dispositivo).
func (r *Router) Refresh(ctx context.Context) error {
	if r.EffectiveDataSource("") != SourceSupabase {
		return nil
	}
	for _, et := range entity.EntityTypes {
		if _, _, err := r.listRemote(ctx, et); err != nil {
			return fmt.Errorf("refrescar %s: %w", et, err)
		}
	}
	return nil
}

func (r *Router) remoteFailed(err error, et entity.EntityType) {
	if errors.Is(err, domain.ErrConnectivity) {
		r.conn.SetRemoteConnected(false)
	}
	r.log.Warn().Err(err).Str("entity", string(et)).Msg("lectura remota fallida; se usa caché local")
}
