package dto

import (
	"encoding/json"
	"time"
)

// MarkForSyncRequest body para POST /api/sync/mark.
type MarkForSyncRequest struct {
	EntityType string          `json:"entityType" validate:"required"`
	Operation  string          `json:"operation" validate:"required,oneof=create update delete"`
	EntityID   string          `json:"entityId" validate:"required"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// SyncEntryDTO entrada de la cola tal como se expone al operador.
type SyncEntryDTO struct {
	ID            string     `json:"id"`
	Seq           int64      `json:"seq"`
	EntityType    string     `json:"entityType"`
	EntityID      string     `json:"entityId"`
	Operation     string     `json:"operation"`
	EnqueuedAt    time.Time  `json:"enqueuedAt"`
	Attempts      int        `json:"attempts"`
	Status        string     `json:"status"`
	LastError     string     `json:"lastError,omitempty"`
	NextAttemptAt *time.Time `json:"nextAttemptAt,omitempty"`
}

// SyncQueueResponse respuesta de GET /api/sync/queue.
type SyncQueueResponse struct {
	Pending     int            `json:"pending"`
	DeadLetters int            `json:"deadLetters"`
	Entries     []SyncEntryDTO `json:"entries"`
	Page        PageResponse   `json:"page"`
}

// ConnectivityResponse respuesta de GET /api/connectivity.
type ConnectivityResponse struct {
	IsOnline        bool      `json:"isOnline"`
	RemoteConnected bool      `json:"remoteConnected"`
	CheckedAt       time.Time `json:"checkedAt"`
	Pending         int       `json:"pending"`
}

// DataSourceListResponse respuesta de GET /api/datasource/:entity.
type DataSourceListResponse struct {
	EntityType string            `json:"entityType"`
	Source     string            `json:"source"`
	Rows       []json.RawMessage `json:"rows"`
	Page       PageResponse      `json:"page"`
}
