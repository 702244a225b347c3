package units

import (
	"math"

	"github.com/stationhub/stationhub/internal/records"
)

// compassPoints are the 16 cardinal and intercardinal names, clockwise from
// North.
var compassPoints = [16]string{
	"North", "North-Northeast", "Northeast", "East-Northeast",
	"East", "East-Southeast", "Southeast", "South-Southeast",
	"South", "South-Southwest", "Southwest", "West-Southwest",
	"West", "West-Northwest", "Northwest", "North-Northwest",
}

// CompassPoint maps a bearing in degrees onto the 16-point compass rose.
// The +0.4 offset reproduces the historical sector boundaries; index 16
// wraps back to North.
func CompassPoint(angle float64) string {
	idx := int(math.Round(NormalizeAngle(angle)/22.5 + 0.4))
	return compassPoints[idx%16]
}

// moonPhases are the 9 named phases; index 0 and 8 are both a new moon so the
// cycle wraps cleanly.
var moonPhases = [9]string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
	"New Moon",
}

// MoonPhaseName maps a phase fraction in [0,1) onto its phase name.
func MoonPhaseName(fraction float64) string {
	idx := int(math.Floor((fraction + 0.0625) * 8))
	if idx < 0 {
		idx = 0
	}
	if idx > 8 {
		idx = 8
	}
	return moonPhases[idx]
}

// TrendLabel maps a trend enum value onto its human phrase.
func TrendLabel(trend string) string {
	switch trend {
	case "up":
		return "Rising"
	case "down":
		return "Falling"
	case "stable":
		return "Stable"
	default:
		return ""
	}
}

// hardwareRange is a fixed per-module-type raw reading range used to rescale
// battery voltages and radio levels into percentages.
type hardwareRange struct {
	full  float64
	empty float64
}

// batteryRanges holds the battery voltage span (millivolts) per module type.
// The main unit is mains-powered and has no battery.
var batteryRanges = map[records.ModuleType]hardwareRange{
	records.ModuleOutdoor:   {full: 6000, empty: 3600},
	records.ModuleIndoorAux: {full: 6000, empty: 3600},
	records.ModuleRain:      {full: 6000, empty: 3600},
	records.ModuleWind:      {full: 6000, empty: 3950},
}

// signalRanges holds the radio level span per module type. Levels are
// attenuations, so lower raw readings are better: MAIN reports WiFi RSSI,
// everything else the proprietary radio link.
var signalRanges = map[records.ModuleType]hardwareRange{
	records.ModuleMain:      {full: 56, empty: 86},
	records.ModuleOutdoor:   {full: 60, empty: 90},
	records.ModuleIndoorAux: {full: 60, empty: 90},
	records.ModuleRain:      {full: 60, empty: 90},
	records.ModuleWind:      {full: 60, empty: 90},
}

// rescale linearly maps raw into the 0-100 span of r, clamped at the edges.
func rescale(raw float64, r hardwareRange) float64 {
	span := r.full - r.empty
	if span == 0 {
		return 0
	}
	pct := (raw - r.empty) / span * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return math.Round(pct)
}

// BatteryPercent rescales a raw battery voltage into 0-100 for the module
// type. The second return is false for mains-powered module types.
func BatteryPercent(mt records.ModuleType, rawMillivolts float64) (float64, bool) {
	r, ok := batteryRanges[mt]
	if !ok {
		return 0, false
	}
	return rescale(rawMillivolts, r), true
}

// BatteryLabel maps a raw battery voltage onto its human phrase.
func BatteryLabel(mt records.ModuleType, rawMillivolts float64) string {
	pct, ok := BatteryPercent(mt, rawMillivolts)
	if !ok {
		return "AC Power"
	}
	switch {
	case pct >= 95:
		return "Full"
	case pct >= 75:
		return "High"
	case pct >= 45:
		return "Medium"
	case pct >= 15:
		return "Low"
	default:
		return "Very low"
	}
}

// SignalPercent rescales a raw radio level into 0-100 for the module type.
func SignalPercent(mt records.ModuleType, raw float64) (float64, bool) {
	r, ok := signalRanges[mt]
	if !ok {
		return 0, false
	}
	return rescale(raw, r), true
}

// SignalLabel maps a raw radio level onto its human phrase.
func SignalLabel(mt records.ModuleType, raw float64) string {
	pct, ok := SignalPercent(mt, raw)
	if !ok {
		return "Unknown"
	}
	switch {
	case pct >= 80:
		return "Excellent"
	case pct >= 60:
		return "Good"
	case pct >= 40:
		return "Fair"
	case pct >= 20:
		return "Poor"
	default:
		return "Very poor"
	}
}
