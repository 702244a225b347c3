package assembler

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/records"
	"github.com/stationhub/stationhub/internal/staleness"
	"github.com/stationhub/stationhub/internal/store"
	"github.com/stationhub/stationhub/internal/units"
)

const (
	devID     = "70:ee:50:11:22:33"
	outdoorID = "02:00:00:11:22:33"
	windID    = "06:00:00:11:22:33"
)

type fixture struct {
	st  *store.Memory
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		st:  store.NewMemory(),
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := f.st.EnsureStation(context.Background(), records.StationInfo{
		StationID:   devID,
		StationName: "Home",
	}); err != nil {
		t.Fatalf("EnsureStation: %v", err)
	}
	return f
}

func (f *fixture) put(t *testing.T, rec records.Record) {
	t.Helper()
	if err := f.st.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
}

func (f *fixture) assembler(w staleness.Window, p Precedence) *Assembler {
	a := New(f.st, units.Metric(), w, p, zap.NewNop())
	a.now = func() time.Time { return f.now }
	return a
}

func numRec(moduleID string, mt records.ModuleType, m records.MeasureType, v float64, ts time.Time) records.Record {
	return records.NewNumeric(devID, moduleID, mt, "module", m, v, ts)
}

func TestUnknownStationIsConditionNoRows(t *testing.T) {
	f := newFixture(t)
	env := f.assembler(staleness.WindowNever, PrecedenceAuto).Full(context.Background(), "de:ad:be:ef")

	if env.Condition.Value != ConditionNoRows {
		t.Fatalf("condition = %d, want %d", env.Condition.Value, ConditionNoRows)
	}
	if !strings.Contains(env.Condition.Message, "de:ad:be:ef") {
		t.Errorf("message %q does not carry the station id", env.Condition.Message)
	}
	if len(env.Modules) != 0 {
		t.Errorf("modules not empty: %+v", env.Modules)
	}
}

func TestStationWithoutRecordsIsConditionNoRows(t *testing.T) {
	f := newFixture(t)
	env := f.assembler(staleness.WindowNever, PrecedenceAuto).Full(context.Background(), devID)
	if env.Condition.Value != ConditionNoRows {
		t.Fatalf("condition = %d, want %d", env.Condition.Value, ConditionNoRows)
	}
}

func TestAllRecordsObsoleteIsConditionAllFiltered(t *testing.T) {
	f := newFixture(t)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18, f.now.Add(-90*time.Minute)))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).Outdoor(context.Background(), devID)
	if env.Condition.Value != ConditionAllFiltered {
		t.Fatalf("condition = %d, want %d", env.Condition.Value, ConditionAllFiltered)
	}
}

func TestOutdoorViewHappyPath(t *testing.T) {
	f := newFixture(t)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18.34, f.now))
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Humidity, 55, f.now))
	f.put(t, numRec(windID, records.ModuleWind, records.WindStrength, 14, f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).Outdoor(context.Background(), devID)
	if env.Condition.Value != ConditionOK {
		t.Fatalf("condition = %d (%s), want 0", env.Condition.Value, env.Condition.Message)
	}

	temp, ok := env.Modules[outdoorID].Datas["temperature"]
	if !ok {
		t.Fatalf("temperature missing from %+v", env.Modules)
	}
	if temp.Value != "18.3" || temp.Unit != "°C" {
		t.Errorf("temperature = %+v, want 18.3 °C", temp)
	}
	if wind := env.Modules[windID].Datas["windstrength"]; wind.Value != "14" || wind.Unit != "km/h" {
		t.Errorf("wind = %+v, want 14 km/h", wind)
	}
	if env.Timestamp != f.now.Unix() {
		t.Errorf("timestamp = %d, want %d", env.Timestamp, f.now.Unix())
	}
}

func TestGateOmitsInvalidDerivedQuantity(t *testing.T) {
	f := newFixture(t)
	cmpID := records.VirtualModuleID(devID, records.ModuleComputed)
	// Reference temperature 12 blocks wind chill, allows dew point.
	f.put(t, numRec(cmpID, records.ModuleComputed, records.TemperatureRef, 12, f.now))
	f.put(t, numRec(cmpID, records.ModuleComputed, records.HumidityRef, 60, f.now))
	f.put(t, numRec(cmpID, records.ModuleComputed, records.WindChill, 8, f.now))
	f.put(t, numRec(cmpID, records.ModuleComputed, records.DewPoint, 4.2, f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).Outdoor(context.Background(), devID)
	if env.Condition.Value != ConditionOK {
		t.Fatalf("condition = %d (%s)", env.Condition.Value, env.Condition.Message)
	}
	datas := env.Modules[cmpID].Datas
	if _, found := datas["wind_chill"]; found {
		t.Error("gated wind chill was not omitted")
	}
	if _, found := datas["dew_point"]; !found {
		t.Error("valid dew point missing")
	}
}

func TestFallbackFillsGapsOnly(t *testing.T) {
	f := newFixture(t)
	ccID := records.VirtualModuleID(devID, records.ModuleCurrentConditions)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18, f.now))
	f.put(t, numRec(ccID, records.ModuleCurrentConditions, records.Temperature, 20, f.now))
	f.put(t, numRec(ccID, records.ModuleCurrentConditions, records.Pressure, 1014, f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).Outdoor(context.Background(), devID)

	// Native temperature wins; the fallback only contributes pressure.
	if got := env.Modules[outdoorID].Datas["temperature"].Value; got != "18.0" {
		t.Errorf("temperature = %q, want native 18.0", got)
	}
	if _, found := env.Modules[ccID].Datas["temperature"]; found {
		t.Error("fallback temperature shown despite a native reading")
	}
	if got := env.Modules[ccID].Datas["pressure"].Value; got != "1014.0" {
		t.Errorf("fallback pressure = %q, want 1014.0", got)
	}
}

func TestPrecedenceNativeOnlyHidesFallback(t *testing.T) {
	f := newFixture(t)
	ccID := records.VirtualModuleID(devID, records.ModuleCurrentConditions)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18, f.now))
	f.put(t, numRec(ccID, records.ModuleCurrentConditions, records.Pressure, 1014, f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceNativeOnly).Outdoor(context.Background(), devID)
	if _, found := env.Modules[ccID]; found {
		t.Errorf("current-conditions module shown under native-only precedence: %+v", env.Modules[ccID])
	}
}

func TestPrecedenceCurrentOnlyDisplacesNative(t *testing.T) {
	f := newFixture(t)
	ccID := records.VirtualModuleID(devID, records.ModuleCurrentConditions)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18, f.now))
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Humidity, 50, f.now))
	f.put(t, numRec(ccID, records.ModuleCurrentConditions, records.Temperature, 20, f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceCurrentOnly).Outdoor(context.Background(), devID)
	if _, found := env.Modules[outdoorID].Datas["temperature"]; found {
		t.Error("native temperature shown under current-only precedence")
	}
	if got := env.Modules[ccID].Datas["temperature"].Value; got != "20.0" {
		t.Errorf("fallback temperature = %q, want 20.0", got)
	}
	// Measures the fallback does not carry keep their native reading.
	if _, found := env.Modules[outdoorID].Datas["humidity"]; !found {
		t.Error("native humidity lost under current-only precedence")
	}
}

func TestStaleFallbackIsFilteredBeforePrecedence(t *testing.T) {
	f := newFixture(t)
	ccID := records.VirtualModuleID(devID, records.ModuleCurrentConditions)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Humidity, 50, f.now))
	// 150 minutes old: outside even the doubled current-conditions window.
	f.put(t, numRec(ccID, records.ModuleCurrentConditions, records.Pressure, 1014, f.now.Add(-150*time.Minute)))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).Outdoor(context.Background(), devID)
	if _, found := env.Modules[ccID]; found {
		t.Error("stale fallback record survived the obsolescence filter")
	}
}

func TestLCDViewUsesSemanticLabels(t *testing.T) {
	f := newFixture(t)
	f.put(t, numRec(windID, records.ModuleWind, records.WindAngle, 180, f.now))
	f.put(t, numRec(windID, records.ModuleWind, records.Battery, 6000, f.now))
	f.put(t, records.NewText(devID, devID, records.ModuleMain, "Base", records.TemperatureTrend, "up", f.now))

	env := f.assembler(staleness.Window1Hour, PrecedenceAuto).LCD(context.Background(), devID)
	if env.Condition.Value != ConditionOK {
		t.Fatalf("condition = %d (%s)", env.Condition.Value, env.Condition.Message)
	}
	if got := env.Modules[windID].Datas["windangle"].Value; got != "South" {
		t.Errorf("windangle = %q, want South", got)
	}
	if got := env.Modules[windID].Datas["battery"].Value; got != "Full" {
		t.Errorf("battery = %q, want Full", got)
	}
	if got := env.Modules[devID].Datas["temperature_trend"].Value; got != "Rising" {
		t.Errorf("trend = %q, want Rising", got)
	}
}

func TestEphemerisViewSkipsObsolescence(t *testing.T) {
	f := newFixture(t)
	ephID := records.VirtualModuleID(devID, records.ModuleEphemeris)
	f.put(t, numRec(ephID, records.ModuleEphemeris, records.MoonPhase, 0.5, f.now.Add(-20*time.Hour)))

	env := f.assembler(staleness.Window30Min, PrecedenceAuto).Ephemeris(context.Background(), devID)
	if env.Condition.Value != ConditionOK {
		t.Fatalf("condition = %d (%s)", env.Condition.Value, env.Condition.Message)
	}
	if _, found := env.Modules[ephID].Datas["moon_phase"]; !found {
		t.Error("day-scoped ephemeris value was filtered")
	}
}

func TestMeasureLookupReturnsRawLine(t *testing.T) {
	f := newFixture(t)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 18.345, f.now))

	a := f.assembler(staleness.Window1Hour, PrecedenceAuto)
	env := a.Measure(context.Background(), devID, outdoorID, records.Temperature)
	if env.Condition.Value != ConditionOK {
		t.Fatalf("condition = %d (%s)", env.Condition.Value, env.Condition.Message)
	}
	// Raw lookup: the stored value, not the display rounding.
	if got := env.Modules[outdoorID].Datas["temperature"].Value; got != "18.345" {
		t.Errorf("raw value = %q, want 18.345", got)
	}

	env = a.Measure(context.Background(), devID, outdoorID, records.Humidity)
	if env.Condition.Value != ConditionNoRows {
		t.Errorf("missing measure condition = %d, want %d", env.Condition.Value, ConditionNoRows)
	}
}

func TestUnitPreferencesChangeRendering(t *testing.T) {
	f := newFixture(t)
	f.put(t, numRec(outdoorID, records.ModuleOutdoor, records.Temperature, 20, f.now))

	prefs := units.Metric()
	prefs.Temperature = units.TempFahrenheit
	a := New(f.st, prefs, staleness.Window1Hour, PrecedenceAuto, zap.NewNop())
	a.now = func() time.Time { return f.now }

	env := a.Outdoor(context.Background(), devID)
	got := env.Modules[outdoorID].Datas["temperature"]
	if got.Value != "68.0" || got.Unit != "°F" {
		t.Errorf("temperature = %+v, want 68.0 °F", got)
	}
}
