// Package memory implementa los puertos de almacenamiento en memoria: útil en desarrollo
// y en tests, con inyección de fallos para simular caídas del remoto.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.RemoteStore = (*RemoteStore)(nil)

// RemoteStore almacenamiento remoto simulado.
type RemoteStore struct {
	mu        sync.Mutex
	rows      map[string]map[string]json.RawMessage
	available bool
	reject    func(collection, id string) error
	upserts   int
}

// NewRemoteStore construye el store disponible y vacío.
func NewRemoteStore() *RemoteStore {
	return &RemoteStore{rows: make(map[string]map[string]json.RawMessage), available: true}
}

// SetAvailable simula caída (false) o recuperación (true) del remoto.
func (s *RemoteStore) SetAvailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = v
}

// RejectWhen instala una función que decide si una escritura se rechaza (nil = aceptar).
func (s *RemoteStore) RejectWhen(fn func(collection, id string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = fn
}

// Upserts número de escrituras aceptadas.
func (s *RemoteStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// Count filas de una colección.
func (s *RemoteStore) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[collection])
}

func (s *RemoteStore) check(ctx context.Context, collection, id string, write bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	if !s.available {
		return fmt.Errorf("%w: remoto en memoria no disponible", domain.ErrConnectivity)
	}
	if write && s.reject != nil {
		if err := s.reject(collection, id); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRemoteRejected, err)
		}
	}
	return nil
}

func (s *RemoteStore) Upsert(ctx context.Context, collection, id string, row json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, collection, id, true); err != nil {
		return err
	}
	if s.rows[collection] == nil {
		s.rows[collection] = make(map[string]json.RawMessage)
	}
	s.rows[collection][id] = append(json.RawMessage(nil), row...)
	s.upserts++
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, collection, id, true); err != nil {
		return err
	}
	delete(s.rows[collection], id)
	return nil
}

func (s *RemoteStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, collection, id, false); err != nil {
		return nil, err
	}
	row, ok := s.rows[collection][id]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), row...), nil
}

// List devuelve las filas ordenadas por id.
func (s *RemoteStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, collection, "", false); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.rows[collection]))
	for id := range s.rows[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, append(json.RawMessage(nil), s.rows[collection][id]...))
	}
	return out, nil
}

func (s *RemoteStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(ctx, "", "", false)
}
