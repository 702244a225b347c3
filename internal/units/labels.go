package units

import "github.com/stationhub/stationhub/internal/records"

// Label carries the three renditions of a unit for a measure: the bare
// symbol, the symbol with its period qualifier, and the spelled-out name.
type Label struct {
	Short     string `json:"unit"`
	Qualified string `json:"unit_full"`
	Long      string `json:"unit_long"`
}

var temperatureLabels = map[int]Label{
	TempCelsius:    {"°C", "°C", "celsius"},
	TempFahrenheit: {"°F", "°F", "fahrenheit"},
	TempKelvin:     {"K", "K", "kelvin"},
}

var pressureLabels = map[int]Label{
	PressureHpa:  {"hPa", "hPa", "hectopascal"},
	PressureInHg: {"inHg", "inHg", "inch of mercury"},
	PressureMmHg: {"mmHg", "mmHg", "millimeter of mercury"},
}

var windLabels = map[int]Label{
	WindKmh:      {"km/h", "km/h", "kilometer per hour"},
	WindMph:      {"mph", "mph", "mile per hour"},
	WindMs:       {"m/s", "m/s", "meter per second"},
	WindBeaufort: {"bft", "bft", "beaufort"},
	WindKnots:    {"kt", "kt", "knot"},
}

var rainLabels = map[int]Label{
	PrecipMetric:   {"mm", "mm", "millimeter"},
	PrecipImperial: {"in", "in", "inch"},
}

var snowLabels = map[int]Label{
	PrecipMetric:   {"cm", "cm", "centimeter"},
	PrecipImperial: {"in", "in", "inch"},
}

var altitudeLabels = map[int]Label{
	DistanceMetric:   {"m", "m", "meter"},
	DistanceImperial: {"ft", "ft", "foot"},
}

var kmDistanceLabels = map[int]Label{
	DistanceMetric:   {"km", "km", "kilometer"},
	DistanceImperial: {"mi", "mi", "mile"},
}

var coLabels = map[int]Label{
	COppm:  {"ppm", "ppm", "part per million"},
	COmgm3: {"mg/m³", "mg/m³", "milligram per cubic meter"},
}

// UnitLabel resolves the unit label for a measure under the given
// preferences. The module type matters because the same measure key can have
// a different period semantic depending on where it was measured: a rain
// reading on a rain gauge is a one-hour rate, while the current-conditions
// provider reports a three-hour accumulation.
func UnitLabel(m records.MeasureType, mt records.ModuleType, p Preferences) Label {
	switch FamilyOf(m) {
	case FamilyTemperature:
		return temperatureLabels[p.Temperature]
	case FamilyHumidity, FamilyPercent:
		return Label{"%", "%", "percent"}
	case FamilyPressure:
		return pressureLabels[p.Pressure]
	case FamilyWind:
		l := windLabels[p.WindSpeed]
		if m == records.WindStrengthMax {
			l.Qualified = l.Short + " today"
		}
		return l
	case FamilyAngle:
		return Label{"°", "°", "degree"}
	case FamilyRain:
		l := rainLabels[p.Precipitation]
		switch {
		case m == records.RainDayAggregated:
			l.Qualified = l.Short + " today"
		case m == records.RainHourAggregated:
			l.Qualified = l.Short + " / 1 hr"
		case m == records.Rain && mt == records.ModuleCurrentConditions:
			l.Qualified = l.Short + " / 3 hrs"
		case m == records.Rain:
			l.Qualified = l.Short + " / 1 hr"
		}
		return l
	case FamilySnow:
		return snowLabels[p.Precipitation]
	case FamilyAltitude:
		return altitudeLabels[p.Distance]
	case FamilyKmDistance:
		return kmDistanceLabels[p.Distance]
	case FamilyCO2:
		return Label{"ppm", "ppm", "part per million"}
	case FamilyCO:
		return coLabels[p.CarbonMonoxide]
	case FamilyOzone:
		return Label{"µg/m³", "µg/m³", "microgram per cubic meter"}
	case FamilyNoise:
		return Label{"dB", "dB", "decibel"}
	default:
		return Label{}
	}
}
