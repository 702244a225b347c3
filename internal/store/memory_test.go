package store

import (
	"context"
	"testing"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

func TestUpsertIsIdempotentSecondWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first := records.NewNumeric("dev1", "mod1", records.ModuleMain, "Living room",
		records.Temperature, 20.5, time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC))
	second := records.NewNumeric("dev1", "mod1", records.ModuleMain, "Living room",
		records.Temperature, 21.1, time.Date(2024, 3, 10, 11, 10, 0, 0, time.UTC))

	if err := s.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.Scan(ctx, Query{DeviceID: "dev1"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one record per (device, module, measure), got %d", len(got))
	}
	if got[0].Value != second.Value || !got[0].Timestamp.Equal(second.Timestamp) {
		t.Errorf("second ingestion should win: got %+v", got[0])
	}
}

func TestScanFiltersByModuleType(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	ts := time.Now()

	recs := []records.Record{
		records.NewNumeric("dev1", "a", records.ModuleMain, "Base", records.Pressure, 1013, ts),
		records.NewNumeric("dev1", "b", records.ModuleOutdoor, "Garden", records.Temperature, 12, ts),
		records.NewNumeric("dev1", "dev1:cc", records.ModuleCurrentConditions, "OWM", records.Temperature, 13, ts),
		records.NewNumeric("dev2", "c", records.ModuleMain, "Other", records.Pressure, 990, ts),
	}
	if err := s.UpsertBatch(ctx, recs); err != nil {
		t.Fatalf("upsert batch: %v", err)
	}

	got, err := s.Scan(ctx, Query{
		DeviceID:    "dev1",
		ModuleTypes: []records.ModuleType{records.ModuleMain, records.ModuleOutdoor},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, r := range got {
		if r.DeviceID != "dev1" {
			t.Errorf("leaked record for device %s", r.DeviceID)
		}
		if r.ModuleType == records.ModuleCurrentConditions {
			t.Errorf("module-type filter leaked %s", r.ModuleType)
		}
	}
	// Ordered by module id.
	if got[0].ModuleID != "a" || got[1].ModuleID != "b" {
		t.Errorf("scan not ordered by module id: %s, %s", got[0].ModuleID, got[1].ModuleID)
	}
}

func TestScanUnknownDeviceIsEmptyNotError(t *testing.T) {
	got, err := NewMemory().Scan(context.Background(), Query{DeviceID: "nope"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestEnsureStationInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.EnsureStation(ctx, records.StationInfo{StationID: "dev1", StationName: "Rooftop"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// A later ensure must not overwrite the name a human may have set.
	if err := s.EnsureStation(ctx, records.StationInfo{StationID: "dev1", StationName: "dev1"}); err != nil {
		t.Fatalf("ensure again: %v", err)
	}

	info, err := s.Station(ctx, "dev1")
	if err != nil {
		t.Fatalf("station: %v", err)
	}
	if info.StationName != "Rooftop" {
		t.Errorf("station name = %q, want %q", info.StationName, "Rooftop")
	}

	if _, err := s.Station(ctx, "unknown"); err != ErrNotFound {
		t.Errorf("unknown station err = %v, want ErrNotFound", err)
	}
}
