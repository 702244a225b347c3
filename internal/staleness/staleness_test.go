package staleness

import (
	"testing"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func rec(moduleType records.ModuleType, m records.MeasureType, age time.Duration) records.Record {
	return records.NewNumeric("dev1", "mod1", moduleType, "Test", m, 1, now.Add(-age))
}

func TestParseWindow(t *testing.T) {
	for _, s := range []string{"never", "30m", "1h", "2h", "4h", "12h", "24h"} {
		if _, err := ParseWindow(s); err != nil {
			t.Errorf("ParseWindow(%q): %v", s, err)
		}
	}
	if _, err := ParseWindow("45m"); err == nil {
		t.Error("expected error for unknown window")
	}
}

func TestFilterPhysicalModuleWindow(t *testing.T) {
	recs := []records.Record{
		rec(records.ModuleOutdoor, records.Temperature, 30*time.Minute),
		rec(records.ModuleOutdoor, records.Humidity, 90*time.Minute),
	}

	got := Filter(recs, Window1Hour, now)
	if len(got) != 1 || got[0].Type != records.Temperature {
		t.Fatalf("expected only the fresh record, got %d records", len(got))
	}
}

// A record 90 minutes old is dropped from a physical module under a 1 hour
// window but retained on the CURRENT_CONDITIONS module, whose window is
// doubled.
func TestCurrentConditionsCoarserWindow(t *testing.T) {
	physical := rec(records.ModuleOutdoor, records.Temperature, 90*time.Minute)
	current := rec(records.ModuleCurrentConditions, records.Temperature, 90*time.Minute)

	got := Filter([]records.Record{physical, current}, Window1Hour, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ModuleType != records.ModuleCurrentConditions {
		t.Errorf("retained record is on %s, want CURRENT_CONDITIONS", got[0].ModuleType)
	}

	// Beyond the doubled window, current conditions records are dropped too.
	stale := rec(records.ModuleCurrentConditions, records.Temperature, 3*time.Hour)
	if got := Filter([]records.Record{stale}, Window1Hour, now); len(got) != 0 {
		t.Errorf("expected stale current-conditions record to be dropped")
	}
}

func TestNeverWindowDisablesFiltering(t *testing.T) {
	recs := []records.Record{
		rec(records.ModuleOutdoor, records.Temperature, 1000*time.Hour),
		rec(records.ModuleCurrentConditions, records.Humidity, 1000*time.Hour),
	}
	if got := Filter(recs, WindowNever, now); len(got) != len(recs) {
		t.Errorf("never window filtered records: got %d, want %d", len(got), len(recs))
	}
}

func TestAllowListedTypesSurviveEveryWindow(t *testing.T) {
	recs := []records.Record{
		rec(records.ModuleOutdoor, records.TemperatureTrend, 48*time.Hour),
		rec(records.ModuleMain, records.LocLatitude, 48*time.Hour),
		rec(records.ModuleOutdoor, records.TempMax, 48*time.Hour),
		rec(records.ModuleWind, records.WindStrengthMax, 48*time.Hour),
	}

	for _, w := range []Window{Window30Min, Window1Hour, Window2Hours, Window4Hours, Window12Hours, Window24Hours} {
		if got := Filter(recs, w, now); len(got) != len(recs) {
			t.Errorf("window %s dropped allow-listed records: got %d, want %d", w, len(got), len(recs))
		}
	}
}

// TestMonotonicity checks that a stricter window never admits more records:
// filter(recs, w1) is a subset of filter(recs, w2) for w1 < w2.
func TestMonotonicity(t *testing.T) {
	recs := []records.Record{
		rec(records.ModuleOutdoor, records.Temperature, 10*time.Minute),
		rec(records.ModuleOutdoor, records.Humidity, 45*time.Minute),
		rec(records.ModuleOutdoor, records.Pressure, 3*time.Hour),
		rec(records.ModuleCurrentConditions, records.Temperature, 5*time.Hour),
		rec(records.ModuleWind, records.WindStrength, 18*time.Hour),
	}

	windows := []Window{Window30Min, Window1Hour, Window2Hours, Window4Hours, Window12Hours, Window24Hours, WindowNever}

	var prev map[string]struct{}
	for _, w := range windows {
		got := Filter(recs, w, now)
		keys := make(map[string]struct{}, len(got))
		for _, r := range got {
			keys[r.Key()+string(r.Type)] = struct{}{}
		}
		for k := range prev {
			if _, ok := keys[k]; !ok {
				t.Fatalf("record admitted under stricter window missing under %s", w)
			}
		}
		prev = keys
	}
}

func TestFilterIsStable(t *testing.T) {
	recs := []records.Record{
		rec(records.ModuleOutdoor, records.Temperature, time.Minute),
		rec(records.ModuleOutdoor, records.Humidity, 2*time.Minute),
		rec(records.ModuleOutdoor, records.Pressure, 3*time.Minute),
	}

	got := Filter(recs, Window24Hours, now)
	for i := range got {
		if got[i].Type != recs[i].Type {
			t.Fatalf("filter reordered records at index %d", i)
		}
	}
}
