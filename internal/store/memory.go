package store

import (
	"context"
	"sort"
	"sync"

	"github.com/stationhub/stationhub/internal/records"
)

// Memory is a concurrency-safe in-memory implementation of the Store
// contract, used in tests and keyless local runs.
type Memory struct {
	mu sync.RWMutex

	// key: device id, value: current record per (module_id, measure_type)
	data     map[string]map[string]records.Record
	stations map[string]records.StationInfo
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]map[string]records.Record),
		stations: make(map[string]records.StationInfo),
	}
}

// Upsert replaces the current value of one measured quantity.
func (s *Memory) Upsert(_ context.Context, rec records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(rec)
	return nil
}

// UpsertBatch replaces a set of quantities atomically with respect to reads.
func (s *Memory) UpsertBatch(_ context.Context, recs []records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.upsertLocked(rec)
	}
	return nil
}

func (s *Memory) upsertLocked(rec records.Record) {
	device, ok := s.data[rec.DeviceID]
	if !ok {
		device = make(map[string]records.Record)
		s.data[rec.DeviceID] = device
	}
	device[rec.ModuleID+"|"+string(rec.Type)] = rec
}

// Scan returns the current records for a device ordered by module id then
// measure type, optionally restricted to a module-type set.
func (s *Memory) Scan(_ context.Context, q Query) ([]records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	device, ok := s.data[q.DeviceID]
	if !ok {
		return nil, nil
	}

	out := make([]records.Record, 0, len(device))
	for _, rec := range device {
		if q.matchesType(rec.ModuleType) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleID != out[j].ModuleID {
			return out[i].ModuleID < out[j].ModuleID
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// EnsureStation inserts the station-info row if absent.
func (s *Memory) EnsureStation(_ context.Context, info records.StationInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stations[info.StationID]; !ok {
		s.stations[info.StationID] = info
	}
	return nil
}

// Station returns the station-info row, or ErrNotFound.
func (s *Memory) Station(_ context.Context, stationID string) (records.StationInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.stations[stationID]
	if !ok {
		return records.StationInfo{}, ErrNotFound
	}
	return info, nil
}

// Stations lists every known station ordered by id.
func (s *Memory) Stations(_ context.Context) ([]records.StationInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]records.StationInfo, 0, len(s.stations))
	for _, info := range s.stations {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out, nil
}
