// Package sqlite implementa la caché local persistente del dispositivo sobre SQLite
// (driver modernc.org/sqlite, sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

var _ repository.LocalCache = (*Cache)(nil)

// Cache tabla clave/valor en un archivo SQLite.
type Cache struct {
	conn *sql.DB
}

// Open abre (o crea) la base en path, activa WAL y crea la tabla kv.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de caché: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir caché local: %w", err)
	}
	// Un solo escritor: evita SQLITE_BUSY entre conexiones del pool.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activar WAL: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("busy timeout: %w", err)
	}
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("crear tabla kv: %w", err)
	}
	return &Cache{conn: conn}, nil
}

// Close cierra la conexión.
func (c *Cache) Close() error {
	return c.conn.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := c.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("leer %s: %w", key, err)
	}
	return v, true, nil
}

const upsertKV = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (c *Cache) Set(ctx context.Context, key, value string) error {
	if _, err := c.conn.ExecContext(ctx, upsertKV, key, value, now()); err != nil {
		return fmt.Errorf("escribir %s: %w", key, err)
	}
	return nil
}

// SetMulti escribe todas las claves en una transacción.
func (c *Cache) SetMulti(ctx context.Context, values map[string]string) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsertKV, k, v, ts); err != nil {
			return fmt.Errorf("escribir %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	if _, err := c.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("eliminar %s: %w", key, err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
