package datasource

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// LedgerTx vista de una transacción: lecturas sobre la caché local con las escrituras
// propias superpuestas; las escrituras quedan en memoria hasta el Commit.
type LedgerTx interface {
	Get(ctx context.Context, et entity.EntityType, id string) (json.RawMessage, bool, error)
	List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, error)
	Put(et entity.EntityType, op entity.SyncOperation, id string, v any) error
	Delete(et entity.EntityType, id string)
}

// TxRunner serializa las transacciones del ledger del proceso y las confirma con un solo
// Commit del router. El candado es el del router, compartido con MarkForSync.
type TxRunner struct {
	router *Router
}

// NewTxRunner construye el runner con el router.
func NewTxRunner(router *Router) *TxRunner {
	return &TxRunner{router: router}
}

// Run ejecuta fn con una transacción nueva. Si fn falla no se escribe nada; si no, todas las
// escrituras se confirman juntas.
func (t *TxRunner) Run(ctx context.Context, fn func(tx LedgerTx) error) (CommitResult, error) {
	t.router.ledger.Lock()
	defer t.router.ledger.Unlock()

	tx := &stagedTx{router: t.router}
	if err := fn(tx); err != nil {
		return CommitResult{}, err
	}
	if len(tx.writes) == 0 {
		return CommitResult{Source: t.router.EffectiveDataSource(""), Synced: true}, nil
	}
	return t.router.Commit(ctx, tx.writes...)
}

type stagedTx struct {
	router *Router
	writes []Write
}

func (s *stagedTx) staged(et entity.EntityType, id string) (int, bool) {
	for i, w := range s.writes {
		if w.EntityType == et && w.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *stagedTx) Get(ctx context.Context, et entity.EntityType, id string) (json.RawMessage, bool, error) {
	if i, ok := s.staged(et, id); ok {
		w := s.writes[i]
		if w.Operation == entity.SyncDelete {
			return nil, false, nil
		}
		return w.Data, true, nil
	}
	rows, err := s.router.LocalList(ctx, et)
	if err != nil {
		return nil, false, err
	}
	row, ok := localstore.Find(rows, et.IDField(), id)
	return row, ok, nil
}

func (s *stagedTx) List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, error) {
	rows, err := s.router.LocalList(ctx, et)
	if err != nil {
		return nil, err
	}
	for _, w := range s.writes {
		if w.EntityType != et {
			continue
		}
		if w.Operation == entity.SyncDelete {
			rows = localstore.Remove(rows, et.IDField(), w.ID)
		} else {
			rows = localstore.Upsert(rows, et.IDField(), w.ID, w.Data)
		}
	}
	return rows, nil
}

// Put reemplaza una escritura previa de la misma fila dentro de la transacción.
func (s *stagedTx) Put(et entity.EntityType, op entity.SyncOperation, id string, v any) error {
	w, err := Put(et, op, id, v)
	if err != nil {
		return err
	}
	s.set(w)
	return nil
}

func (s *stagedTx) Delete(et entity.EntityType, id string) {
	s.set(Delete(et, id))
}

func (s *stagedTx) set(w Write) {
	if i, ok := s.staged(w.EntityType, w.ID); ok {
		if s.writes[i].Operation == entity.SyncCreate && w.Operation == entity.SyncUpdate {
			w.Operation = entity.SyncCreate
		}
		s.writes[i] = w
		return
	}
	s.writes = append(s.writes, w)
}
