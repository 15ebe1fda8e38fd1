package history

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// DisabledStore is a Store that records nothing. It keeps the HTTP boundary
// unconditional: handlers always have a store to write to.
type DisabledStore struct{}

// NewDisabledStore creates a store that discards all records.
func NewDisabledStore() *DisabledStore {
	return &DisabledStore{}
}

func (s *DisabledStore) Save(ctx context.Context, record *Record) error {
	return nil
}

func (s *DisabledStore) Get(ctx context.Context, id int64) (*Record, error) {
	return nil, nil
}

func (s *DisabledStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return nil, nil
}

func (s *DisabledStore) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *DisabledStore) Delete(ctx context.Context, id int64) error {
	return nil
}

func (s *DisabledStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      0,
		Records:    nil,
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func (s *DisabledStore) Close() error {
	return nil
}
