package repository

import (
	"context"
	"encoding/json"
)

// RemoteStore puerto del almacenamiento remoto: filas JSON por colección, clave id.
// Los errores de red/timeout envuelven domain.ErrConnectivity; los rechazos del servidor
// envuelven domain.ErrRemoteRejected.
type RemoteStore interface {
	// Upsert crea o reemplaza la fila con ese id (idempotente: repetirlo deja una sola fila).
	Upsert(ctx context.Context, collection, id string, row json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	// Get devuelve nil, nil si la fila no existe.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	Ping(ctx context.Context) error
}
