// Package localstore guarda cada colección como un arreglo JSON bajo su clave en la
// caché local (machines, ventas, inventario_acopio, sync_queue, ...).
package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
)

// Store acceso por colección a la caché local.
type Store struct {
	cache repository.LocalCache
	log   zerolog.Logger
}

// New construye el store sobre la caché indicada.
func New(cache repository.LocalCache, log zerolog.Logger) *Store {
	return &Store{cache: cache, log: log}
}

// Cache devuelve la caché subyacente.
func (s *Store) Cache() repository.LocalCache { return s.cache }

// Load lee la colección. Clave ausente = colección vacía. Un valor que no es un arreglo
// JSON se registra como error y se trata como vacío: la lectura nunca falla por corrupción.
func (s *Store) Load(ctx context.Context, key string) ([]json.RawMessage, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("leer colección %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []json.RawMessage{}, nil
	}
	rows, err := Parse(raw)
	if err != nil {
		s.log.Error().Err(err).Str("entity", key).Msg("colección local ilegible; se usa vacía")
		return []json.RawMessage{}, nil
	}
	return rows, nil
}

// Save reemplaza la colección completa.
func (s *Store) Save(ctx context.Context, key string, rows []json.RawMessage) error {
	v, err := Encode(rows)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		return fmt.Errorf("guardar colección %s: %w", key, err)
	}
	return nil
}

// SaveMulti reemplaza varias colecciones en una sola escritura atómica.
func (s *Store) SaveMulti(ctx context.Context, collections map[string][]json.RawMessage) error {
	values := make(map[string]string, len(collections))
	for k, rows := range collections {
		v, err := Encode(rows)
		if err != nil {
			return fmt.Errorf("codificar %s: %w", k, err)
		}
		values[k] = v
	}
	if err := s.cache.SetMulti(ctx, values); err != nil {
		return fmt.Errorf("guardar colecciones: %w", err)
	}
	return nil
}

// Parse interpreta el texto guardado como arreglo JSON de objetos.
func Parse(raw string) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCache, err)
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows, nil
}

// Encode serializa la colección; nil se guarda como [].
func Encode(rows []json.RawMessage) (string, error) {
	if rows == nil {
		rows = []json.RawMessage{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("codificar colección: %w", err)
	}
	return string(b), nil
}

// RowID extrae el valor del campo clave (string) de una fila.
func RowID(row json.RawMessage, idField string) (string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(row, &m); err != nil {
		return "", fmt.Errorf("%w: fila no es un objeto JSON", domain.ErrInvalidInput)
	}
	v, ok := m[idField]
	if !ok {
		return "", fmt.Errorf("%w: fila sin campo %s", domain.ErrInvalidInput, idField)
	}
	var id string
	if err := json.Unmarshal(v, &id); err != nil || id == "" {
		return "", fmt.Errorf("%w: campo %s vacío o no textual", domain.ErrInvalidInput, idField)
	}
	return id, nil
}

// Find busca la fila por clave.
func Find(rows []json.RawMessage, idField, id string) (json.RawMessage, bool) {
	for _, r := range rows {
		if rid, err := RowID(r, idField); err == nil && rid == id {
			return r, true
		}
	}
	return nil, false
}

// Upsert reemplaza la fila con la misma clave o la agrega al final. Devuelve un slice nuevo.
func Upsert(rows []json.RawMessage, idField, id string, row json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(rows)+1)
	replaced := false
	for _, r := range rows {
		if rid, err := RowID(r, idField); err == nil && rid == id {
			if !replaced {
				out = append(out, compact(row))
				replaced = true
			}
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, compact(row))
	}
	return out
}

// Remove quita la fila con esa clave (no-op si no existe).
func Remove(rows []json.RawMessage, idField, id string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		if rid, err := RowID(r, idField); err == nil && rid == id {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Decode convierte las filas al tipo de entidad. Filas que no encajan se omiten.
func Decode[T any](rows []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

// Marshal serializa una entidad como fila.
func Marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializar fila: %w", err)
	}
	return b, nil
}

func compact(row json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, row); err != nil {
		return append(json.RawMessage(nil), row...)
	}
	return buf.Bytes()
}
