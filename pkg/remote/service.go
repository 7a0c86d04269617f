// Package remote talks to the remote record service that backs the remote
// variant: two collections (tasks, categories) with fetch-all, create,
// update and delete.
package remote

import (
	"context"
	"encoding/json"
)

// OrderBy sorts a fetch.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// FetchParams selects fields and ordering for FetchRecords.
type FetchParams struct {
	Fields  []string  `json:"fields"`
	OrderBy []OrderBy `json:"orderBy,omitempty"`
}

// Record is one record as sent to the service. Only updateable fields are
// included; updates may be partial.
type Record map[string]any

// FetchResponse carries fetched records. A nil Data means "no data".
type FetchResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Message string            `json:"message,omitempty"`
}

// RecordResult is the per-record outcome of a create or update.
type RecordResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// MutationResponse is returned by create and update.
type MutationResponse struct {
	Success bool           `json:"success"`
	Results []RecordResult `json:"results"`
	Message string         `json:"message,omitempty"`
}

// DeleteResponse is returned by delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RecordService is the remote CRUD collaborator.
type RecordService interface {
	FetchRecords(ctx context.Context, collection string, params FetchParams) (*FetchResponse, error)
	CreateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error)
	UpdateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error)
	DeleteRecord(ctx context.Context, collection string, ids []string) (*DeleteResponse, error)
	Close() error
}
