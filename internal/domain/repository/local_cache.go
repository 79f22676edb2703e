package repository

import "context"

// LocalCache puerto de la caché local persistente (clave -> texto).
type LocalCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMulti escribe todas las claves o ninguna.
	SetMulti(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, key string) error
}
