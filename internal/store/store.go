// Package store defines the canonical record store contract and its two
// implementations: Postgres for deployments and an in-memory store for tests
// and keyless local runs.
package store

import (
	"context"
	"errors"

	"github.com/stationhub/stationhub/internal/records"
)

var (
	// ErrNotFound is returned when a lookup matches nothing. Callers must
	// treat it as data, not as a failure.
	ErrNotFound = errors.New("no matching records")
)

// Query is the filtered-scan predicate: device id equality, optional
// module-type set membership. Results are always ordered by module id so
// grouping is deterministic.
type Query struct {
	DeviceID    string
	ModuleTypes []records.ModuleType
}

func (q Query) matchesType(t records.ModuleType) bool {
	if len(q.ModuleTypes) == 0 {
		return true
	}
	for _, mt := range q.ModuleTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// Store is the canonical record store contract. Upsert replaces on conflict
// by the (device_id, module_id, measure_type) key; the replace is atomic per
// quantity.
type Store interface {
	Upsert(ctx context.Context, rec records.Record) error
	UpsertBatch(ctx context.Context, recs []records.Record) error
	Scan(ctx context.Context, q Query) ([]records.Record, error)

	// EnsureStation is the idempotent insert-if-absent for the station-info
	// side table.
	EnsureStation(ctx context.Context, info records.StationInfo) error
	Station(ctx context.Context, stationID string) (records.StationInfo, error)
	Stations(ctx context.Context) ([]records.StationInfo, error)
}
