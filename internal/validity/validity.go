// Package validity decides whether a physically derived quantity is
// meaningful enough to present, given the reference readings captured when it
// was computed. Predicates are pure and total; a missing reference always
// fails the gate.
package validity

import "github.com/stationhub/stationhub/internal/records"

// References carries the sibling reference readings for gating, all in
// Celsius / percent regardless of display preferences. Nil means the
// reference was not captured.
type References struct {
	Temperature *float64
	Humidity    *float64
	DewPoint    *float64
}

// Valid reports whether the derived quantity identified by m, with computed
// value v, may be shown given the references. Measures that are not gated
// are always valid.
func Valid(m records.MeasureType, v float64, refs References) bool {
	switch m {
	case records.Rain:
		return refs.Temperature != nil && *refs.Temperature >= 0
	case records.Snow:
		return refs.Temperature != nil && *refs.Temperature < 3
	case records.DewPoint:
		return refs.Temperature != nil && *refs.Temperature >= 0
	case records.FrostPoint:
		return refs.Temperature != nil && *refs.Temperature < 0
	case records.WindChill:
		return refs.Temperature != nil && *refs.Temperature < 10 && *refs.Temperature > v
	case records.HeatIndex:
		return refs.Temperature != nil && refs.Humidity != nil && refs.DewPoint != nil &&
			*refs.Temperature >= 27 && *refs.Humidity >= 40 && *refs.DewPoint >= 12
	case records.Humidex:
		return refs.Temperature != nil && refs.Humidity != nil && refs.DewPoint != nil &&
			*refs.Temperature >= 15 && *refs.Humidity >= 20 && *refs.DewPoint >= 10
	default:
		return true
	}
}
