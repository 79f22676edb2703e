package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

//go:embed migrations/001_collections.sql
var collectionsSQL string

// EnsureSchema crea (si no existen) las tablas de todas las colecciones sincronizables.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, t := range entity.EntityTypes {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				data       JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, table(string(t)))
		if _, err := q.Exec(ctx, query); err != nil {
			return fmt.Errorf("crear tabla %s: %w", t, err)
		}
	}
	return nil
}

// MigrationSQL script equivalente a EnsureSchema, para aplicarlo desde el panel de Supabase.
func MigrationSQL() string { return collectionsSQL }
