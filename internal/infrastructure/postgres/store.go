package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.RemoteStore = (*Store)(nil)

// Querier abstrae pool o tx para ejecutar queries.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger lo implementa *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store almacenamiento remoto directo sobre PostgreSQL: una tabla por colección con
// columnas (id text, data jsonb, updated_at).
type Store struct {
	q       Querier
	timeout time.Duration
}

// NewStore construye el adaptador. Pasar pool o tx (Querier).
func NewStore(q Querier, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{q: q, timeout: timeout}
}

func table(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}

// classify: un PgError es un rechazo del servidor; todo lo demás (dial, timeout,
// conexión cerrada) es falta de conectividad.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", domain.ErrRemoteRejected, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
}

// Upsert inserta o reemplaza la fila (ON CONFLICT por id).
func (s *Store) Upsert(ctx context.Context, collection, id string, data json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	query := `
		INSERT INTO ` + table(collection) + ` (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := s.q.Exec(ctx, query, id, []byte(data)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, classify(err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.q.Exec(ctx, `DELETE FROM `+table(collection)+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, classify(err))
	}
	return nil
}

// Get devuelve nil, nil si no existe.
func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var data []byte
	err := s.q.QueryRow(ctx, `SELECT data FROM `+table(collection)+` WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, classify(err))
	}
	return data, nil
}

// List devuelve las filas ordenadas por id.
func (s *Store) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.q.Query(ctx, `SELECT data FROM `+table(collection)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, classify(err))
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, classify(err))
		}
		out = append(out, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, classify(err))
	}
	return out, nil
}

// Ping usa el Ping del pool cuando está disponible; si no, SELECT 1.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if p, ok := s.q.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
		}
		return nil
	}
	var one int
	if err := s.q.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}
	return nil
}
