// Package staleness implements the obsolescence filter: time-window based
// exclusion of canonical records from "fresh" views. The filter is pure and
// stable; it never reorders its input.
package staleness

import (
	"fmt"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

// Window is the configured staleness window, a closed enumeration.
type Window int

const (
	WindowNever Window = iota
	Window30Min
	Window1Hour
	Window2Hours
	Window4Hours
	Window12Hours
	Window24Hours
)

var windowDurations = map[Window]time.Duration{
	Window30Min:   30 * time.Minute,
	Window1Hour:   time.Hour,
	Window2Hours:  2 * time.Hour,
	Window4Hours:  4 * time.Hour,
	Window12Hours: 12 * time.Hour,
	Window24Hours: 24 * time.Hour,
}

var windowNames = map[string]Window{
	"never": WindowNever,
	"30m":   Window30Min,
	"1h":    Window1Hour,
	"2h":    Window2Hours,
	"4h":    Window4Hours,
	"12h":   Window12Hours,
	"24h":   Window24Hours,
}

// ParseWindow maps a configuration string onto a Window.
func ParseWindow(s string) (Window, error) {
	w, ok := windowNames[s]
	if !ok {
		return WindowNever, fmt.Errorf("unknown obsolescence window %q", s)
	}
	return w, nil
}

// Duration returns the window length. A zero duration means no filtering.
func (w Window) Duration() time.Duration {
	return windowDurations[w]
}

func (w Window) String() string {
	for name, win := range windowNames {
		if win == w {
			return name
		}
	}
	return "never"
}

// allowList holds the measure types that are never filtered: their staleness
// is implicit in their own semantics (trends, geolocation, period-bounded
// extrema, setup bookkeeping).
var allowList = map[records.MeasureType]struct{}{
	records.TemperatureTrend:   {},
	records.PressureTrend:      {},
	records.LocLatitude:        {},
	records.LocLongitude:       {},
	records.LocAltitude:        {},
	records.LocTimezone:        {},
	records.LocCity:            {},
	records.LocCountry:         {},
	records.TempMax:            {},
	records.TempMin:            {},
	records.RainHourAggregated: {},
	records.RainDayAggregated:  {},
	records.WindStrengthMax:    {},
	records.WindAngleMax:       {},
	records.Firmware:           {},
	records.FirstSetup:         {},
	records.LastSetup:          {},
	records.LastUpgrade:        {},
}

// AlwaysFresh reports whether the measure type is on the filter allow-list.
func AlwaysFresh(m records.MeasureType) bool {
	_, ok := allowList[m]
	return ok
}

// Filter returns the records whose timestamp falls inside the window ending
// at now. Allow-listed measure types always pass. Records on the
// CURRENT_CONDITIONS virtual module use a window twice as long, because that
// provider polls less frequently; when the window is "never" both collapse to
// no filtering.
func Filter(recs []records.Record, w Window, now time.Time) []records.Record {
	if w == WindowNever {
		return recs
	}

	cutoff := now.Add(-w.Duration())
	ccCutoff := now.Add(-2 * w.Duration())

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		if AlwaysFresh(r.Type) {
			out = append(out, r)
			continue
		}
		limit := cutoff
		if r.ModuleType == records.ModuleCurrentConditions {
			limit = ccCutoff
		}
		if !r.Timestamp.Before(limit) {
			out = append(out, r)
		}
	}
	return out
}
