package entity

import (
	"encoding/json"
	"time"
)

// SyncOperation operación pendiente de replicar al remoto.
type SyncOperation string

const (
	SyncCreate SyncOperation = "create"
	SyncUpdate SyncOperation = "update"
	SyncDelete SyncOperation = "delete"
)

// Valid indica si la operación pertenece al conjunto cerrado.
func (o SyncOperation) Valid() bool {
	return o == SyncCreate || o == SyncUpdate || o == SyncDelete
}

// Estados de una entrada de la cola.
const (
	SyncStatusPending = "pending"
	SyncStatusDead    = "dead"
)

// SyncQueueEntry escritura hecha sin remoto disponible, pendiente de replay.
// Seq define el orden global FIFO; EntityID es la clave primaria remota pre-asignada.
type SyncQueueEntry struct {
	ID            string          `json:"id"`
	Seq           int64           `json:"seq"`
	EntityType    string          `json:"entityType"`
	EntityID      string          `json:"entityId"`
	Operation     SyncOperation   `json:"operation"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt    time.Time       `json:"enqueuedAt"`
	Attempts      int             `json:"attempts"`
	Status        string          `json:"status"`
	LastError     string          `json:"lastError,omitempty"`
	NextAttemptAt *time.Time      `json:"nextAttemptAt,omitempty"`
}

// IsDead indica si la entrada quedó en dead-letter.
func (e SyncQueueEntry) IsDead() bool { return e.Status == SyncStatusDead }
