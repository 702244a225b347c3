// Package assembler builds the presentation views served over HTTP: it scans
// canonical records for a station, applies the obsolescence filter and the
// validity gate, resolves units and semantic labels, and wraps the result in
// a status envelope. Callers always get a well-formed envelope; outcomes
// travel as condition codes, never as raised errors.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/metrics"
	"github.com/stationhub/stationhub/internal/records"
	"github.com/stationhub/stationhub/internal/staleness"
	"github.com/stationhub/stationhub/internal/store"
	"github.com/stationhub/stationhub/internal/units"
	"github.com/stationhub/stationhub/internal/validity"
)

// ErrStationNotFound marks a lookup for a station id the store has never
// seen. It is distinct from a station that exists but has no fresh data.
var ErrStationNotFound = errors.New("station not found")

// Condition codes carried by the envelope.
const (
	ConditionOK           = 0
	ConditionInconsistent = 2
	ConditionNoRows       = 3
	ConditionAllFiltered  = 4
)

// Precedence selects which provider wins when both the hardware modules and
// the current-conditions module carry the same quantity.
type Precedence int

const (
	// PrecedenceAuto substitutes current-conditions values only for measures
	// the hardware modules do not carry.
	PrecedenceAuto Precedence = iota
	// PrecedenceNativeOnly never shows current-conditions data.
	PrecedenceNativeOnly
	// PrecedenceCurrentOnly lets current-conditions values displace the
	// hardware reading for every measure they carry.
	PrecedenceCurrentOnly
)

// ParsePrecedence maps a configuration string onto a Precedence.
func ParsePrecedence(s string) (Precedence, error) {
	switch s {
	case "", "auto":
		return PrecedenceAuto, nil
	case "native":
		return PrecedenceNativeOnly, nil
	case "current":
		return PrecedenceCurrentOnly, nil
	}
	return PrecedenceAuto, fmt.Errorf("unknown provider precedence %q", s)
}

// Datum is one rendered measurement inside the envelope.
type Datum struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Module groups the rendered measurements of one module.
type Module struct {
	Name  string           `json:"name"`
	Type  string           `json:"type"`
	Datas map[string]Datum `json:"datas"`
}

// Condition is the envelope status: a code and a human message.
type Condition struct {
	Value   int    `json:"value"`
	Message string `json:"message"`
}

// Envelope is the assembler's only output shape.
type Envelope struct {
	Condition Condition         `json:"condition"`
	Timestamp int64             `json:"timestamp"`
	Modules   map[string]Module `json:"modules"`
}

// Assembler runs the read-side pipeline. It holds no mutable state; every
// view call is one synchronous pass over a single store scan.
type Assembler struct {
	store      store.Store
	prefs      units.Preferences
	window     staleness.Window
	precedence Precedence
	log        *zap.Logger
	now        func() time.Time
}

func New(st store.Store, prefs units.Preferences, w staleness.Window, p Precedence, log *zap.Logger) *Assembler {
	return &Assembler{
		store:      st,
		prefs:      prefs,
		window:     w,
		precedence: p,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// viewSpec describes how one view scans and renders.
type viewSpec struct {
	name    string
	types   []records.ModuleType
	fresh   bool
	display bool
}

// Outdoor returns the outdoor summary: the outdoor, wind and rain hardware
// modules plus the computed quantities, with current-conditions fallback.
func (a *Assembler) Outdoor(ctx context.Context, stationID string) Envelope {
	return a.assemble(ctx, stationID, viewSpec{
		name: "outdoor",
		types: []records.ModuleType{
			records.ModuleOutdoor, records.ModuleWind, records.ModuleRain,
			records.ModuleComputed, records.ModuleCurrentConditions,
		},
		fresh: true,
	})
}

// Ephemeris returns the astronomical module. Ephemeris values describe the
// day, not the moment, so the view skips the obsolescence filter.
func (a *Assembler) Ephemeris(ctx context.Context, stationID string) Envelope {
	return a.assemble(ctx, stationID, viewSpec{
		name:  "ephemeris",
		types: []records.ModuleType{records.ModuleEphemeris},
	})
}

// LCD returns every module rendered for a character display: compass points
// instead of angles, battery and signal as labels, the moon phase by name.
func (a *Assembler) LCD(ctx context.Context, stationID string) Envelope {
	return a.assemble(ctx, stationID, viewSpec{
		name:    "lcd",
		fresh:   true,
		display: true,
	})
}

// Full returns every module with plainly formatted values.
func (a *Assembler) Full(ctx context.Context, stationID string) Envelope {
	return a.assemble(ctx, stationID, viewSpec{
		name:  "full",
		fresh: true,
	})
}

// Measure returns the raw stored line for a single (module, measure) pair.
// No filtering and no gating: this is the diagnostic peephole.
func (a *Assembler) Measure(ctx context.Context, stationID, moduleID string, m records.MeasureType) Envelope {
	now := a.now()
	recs, cond := a.scan(ctx, stationID, nil)
	if cond.Value != ConditionOK {
		return a.finish("measure", Envelope{Condition: cond, Timestamp: now.Unix(), Modules: map[string]Module{}})
	}

	for _, r := range recs {
		if r.ModuleID != moduleID || r.Type != m {
			continue
		}
		env := Envelope{
			Condition: Condition{Value: ConditionOK, Message: "success"},
			Timestamp: now.Unix(),
			Modules: map[string]Module{
				r.ModuleID: {
					Name: r.ModuleName,
					Type: string(r.ModuleType),
					Datas: map[string]Datum{
						string(r.Type): {
							Value: r.Value,
							Unit:  units.UnitLabel(r.Type, r.ModuleType, a.prefs).Short,
						},
					},
				},
			},
		}
		return a.finish("measure", env)
	}

	return a.finish("measure", Envelope{
		Condition: Condition{
			Value:   ConditionNoRows,
			Message: fmt.Sprintf("no record for module %s measure %s", moduleID, m),
		},
		Timestamp: now.Unix(),
		Modules:   map[string]Module{},
	})
}

func (a *Assembler) assemble(ctx context.Context, stationID string, view viewSpec) Envelope {
	now := a.now()
	env := Envelope{Timestamp: now.Unix(), Modules: map[string]Module{}}

	recs, cond := a.scan(ctx, stationID, view.types)
	if cond.Value != ConditionOK {
		env.Condition = cond
		return a.finish(view.name, env)
	}

	kept := recs
	if view.fresh {
		kept = staleness.Filter(recs, a.window, now)
		metrics.RecordsFilteredTotal.Add(float64(len(recs) - len(kept)))
		if len(kept) == 0 {
			env.Condition = Condition{
				Value:   ConditionAllFiltered,
				Message: fmt.Sprintf("all records for station %s are obsolete", stationID),
			}
			return a.finish(view.name, env)
		}
	}

	kept = applyPrecedence(kept, a.precedence)
	refs := gatherReferences(kept)

	for _, r := range kept {
		if r.Type.Derived() {
			v, err := r.Numeric()
			if err != nil || !validity.Valid(r.Type, v, refs) {
				continue
			}
		}
		a.addDatum(env.Modules, r, view.display)
	}

	if len(env.Modules) == 0 {
		env.Condition = Condition{
			Value:   ConditionAllFiltered,
			Message: fmt.Sprintf("no presentable records for station %s", stationID),
		}
		return a.finish(view.name, env)
	}

	env.Condition = Condition{Value: ConditionOK, Message: "success"}
	return a.finish(view.name, env)
}

// scan resolves the station and loads its records. Unknown station and empty
// result both come back as conditions, never as errors.
func (a *Assembler) scan(ctx context.Context, stationID string, types []records.ModuleType) ([]records.Record, Condition) {
	if _, err := a.store.Station(ctx, stationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Condition{
				Value:   ConditionNoRows,
				Message: fmt.Sprintf("%v: %s", ErrStationNotFound, stationID),
			}
		}
		a.log.Error("station lookup failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, Condition{Value: ConditionInconsistent, Message: "store lookup failed"}
	}

	recs, err := a.store.Scan(ctx, store.Query{DeviceID: stationID, ModuleTypes: types})
	if err != nil {
		a.log.Error("record scan failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, Condition{Value: ConditionInconsistent, Message: "store scan failed"}
	}
	if len(recs) == 0 {
		return nil, Condition{
			Value:   ConditionNoRows,
			Message: fmt.Sprintf("no records for station %s", stationID),
		}
	}
	return recs, Condition{Value: ConditionOK, Message: "success"}
}

func (a *Assembler) finish(view string, env Envelope) Envelope {
	metrics.ViewRequestsTotal.WithLabelValues(view, strconv.Itoa(env.Condition.Value)).Inc()
	return env
}

// applyPrecedence resolves hardware vs current-conditions overlap per
// measure. Records on other virtual modules are never affected.
func applyPrecedence(recs []records.Record, p Precedence) []records.Record {
	hasCC := false
	for _, r := range recs {
		if r.ModuleType == records.ModuleCurrentConditions {
			hasCC = true
			break
		}
	}
	if !hasCC {
		return recs
	}

	if p == PrecedenceNativeOnly {
		out := make([]records.Record, 0, len(recs))
		for _, r := range recs {
			if r.ModuleType != records.ModuleCurrentConditions {
				out = append(out, r)
			}
		}
		return out
	}

	native := map[records.MeasureType]bool{}
	cc := map[records.MeasureType]bool{}
	for _, r := range recs {
		switch {
		case r.ModuleType == records.ModuleCurrentConditions:
			cc[r.Type] = true
		case !r.ModuleType.Virtual():
			native[r.Type] = true
		}
	}

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		switch p {
		case PrecedenceCurrentOnly:
			if !r.ModuleType.Virtual() && cc[r.Type] {
				continue
			}
		default: // PrecedenceAuto: the fallback fills gaps only.
			if r.ModuleType == records.ModuleCurrentConditions && native[r.Type] {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// gatherReferences collects the gating references from the scan itself: the
// captured reference copies on the computed module first, live readings as a
// fallback. References stay nil when nothing carries them, which fails the
// gate closed.
func gatherReferences(recs []records.Record) validity.References {
	var refs validity.References
	pick := func(dst **float64, r records.Record) {
		if *dst != nil {
			return
		}
		if v, err := r.Numeric(); err == nil {
			*dst = &v
		}
	}

	for _, r := range recs {
		switch {
		case r.Type == records.TemperatureRef,
			r.Type == records.Temperature && r.ModuleType == records.ModuleOutdoor:
			pick(&refs.Temperature, r)
		case r.Type == records.HumidityRef,
			r.Type == records.Humidity && r.ModuleType == records.ModuleOutdoor:
			pick(&refs.Humidity, r)
		case r.Type == records.DewPoint:
			pick(&refs.DewPoint, r)
		}
	}

	// When no hardware reference exists at all, the current-conditions
	// readings stand in so its own rain and snow lines can be gated.
	for _, r := range recs {
		if r.ModuleType != records.ModuleCurrentConditions {
			continue
		}
		switch r.Type {
		case records.Temperature:
			pick(&refs.Temperature, r)
		case records.Humidity:
			pick(&refs.Humidity, r)
		}
	}
	return refs
}

func (a *Assembler) addDatum(modules map[string]Module, r records.Record, display bool) {
	mod, ok := modules[r.ModuleID]
	if !ok {
		// First record seen for a module fixes its metadata.
		mod = Module{Name: r.ModuleName, Type: string(r.ModuleType), Datas: map[string]Datum{}}
	}
	mod.Datas[string(r.Type)] = a.render(r, display)
	modules[r.ModuleID] = mod
}

// render resolves one record into its display value and unit. The display
// flag switches angle, battery, signal, trend and moon-phase measures to
// their semantic labels.
func (a *Assembler) render(r records.Record, display bool) Datum {
	label := units.UnitLabel(r.Type, r.ModuleType, a.prefs).Qualified

	switch {
	case r.Type.Textual():
		if display && (r.Type == records.TemperatureTrend || r.Type == records.PressureTrend) {
			return Datum{Value: units.TrendLabel(r.Value)}
		}
		return Datum{Value: r.Value}

	case r.Type.TimeValued():
		return Datum{Value: r.Value}
	}

	v, err := r.Numeric()
	if err != nil {
		return Datum{Value: r.Value}
	}

	switch r.Type {
	case records.Battery:
		if display {
			return Datum{Value: units.BatteryLabel(r.ModuleType, v)}
		}
		if pct, ok := units.BatteryPercent(r.ModuleType, v); ok {
			return Datum{Value: strconv.FormatFloat(pct, 'f', 0, 64), Unit: "%"}
		}
		return Datum{Value: r.Value}

	case records.Signal:
		if display {
			return Datum{Value: units.SignalLabel(r.ModuleType, v)}
		}
		if pct, ok := units.SignalPercent(r.ModuleType, v); ok {
			return Datum{Value: strconv.FormatFloat(pct, 'f', 0, 64), Unit: "%"}
		}
		return Datum{Value: r.Value}

	case records.MoonPhase:
		if display {
			return Datum{Value: units.MoonPhaseName(v)}
		}
	}

	if display && units.FamilyOf(r.Type) == units.FamilyAngle {
		return Datum{Value: units.CompassPoint(v)}
	}

	return Datum{Value: units.Format(r.Type, v, a.prefs), Unit: label}
}
