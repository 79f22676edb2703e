// Package supabase implementa el almacenamiento remoto sobre la API REST de Supabase
// (PostgREST). Cada colección es una tabla (id text, data jsonb, updated_at).
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	supa "github.com/nedpals/supabase-go"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.RemoteStore = (*Store)(nil)

// PingTable tabla consultada por Ping (la más pequeña de las sincronizadas).
const PingTable = "machines"

type row struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store cliente Supabase con timeout por operación.
type Store struct {
	client  *supa.Client
	timeout time.Duration
}

// New crea el cliente a partir de la URL del proyecto y la llave (anon o service role).
func New(baseURL, key string, timeout time.Duration) (*Store, error) {
	if baseURL == "" || key == "" {
		return nil, fmt.Errorf("%w: SUPABASE_URL y SUPABASE_KEY son obligatorias", domain.ErrInvalidInput)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{client: supa.CreateClient(baseURL, key), timeout: timeout}, nil
}

// call ejecuta fn (el cliente no acepta context) y respeta ctx y el timeout del store.
func (s *Store) call(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return classify(err)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, ctx.Err())
	}
}

// classify separa fallas de red (reintentables al reconectar) de rechazos del servidor.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteRejected, err)
}

func (s *Store) Upsert(ctx context.Context, collection, id string, data json.RawMessage) error {
	r := row{ID: id, Data: data, UpdatedAt: time.Now().UTC()}
	err := s.call(ctx, func() error {
		return s.client.DB.From(collection).Upsert(r).Execute(nil)
	})
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	err := s.call(ctx, func() error {
		return s.client.DB.From(collection).Delete().Eq("id", id).Execute(nil)
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var rows []row
	err := s.call(ctx, func() error {
		return s.client.DB.From(collection).Select("id,data").Eq("id", id).Execute(&rows)
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Data, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var rows []row
	err := s.call(ctx, func() error {
		return s.client.DB.From(collection).Select("id,data").Execute(&rows)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Data)
	}
	return out, nil
}

// Ping hace una consulta vacía sobre PingTable; cualquier error cuenta como sin conexión.
func (s *Store) Ping(ctx context.Context) error {
	var rows []row
	err := s.call(ctx, func() error {
		return s.client.DB.From(PingTable).Select("id").Eq("id", "__ping__").Execute(&rows)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRemoteRejected) {
			return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
		}
		return err
	}
	return nil
}
