// Package units is the unit and semantic registry: pure lookups turning
// canonical readings (Celsius, hPa, km/h, meters, millimeters, ppm) into
// display values, unit labels and human phrases for whatever unit system the
// process-wide preferences select.
package units

// Unit system indices per quantity family. Index 0 is always the canonical
// metric system the store ingests in. The field order mirrors the historical
// positional options array (temperature, pressure, wind, distance,
// precipitation, CO) and must not be reshuffled.
const (
	TempCelsius    = 0
	TempFahrenheit = 1
	TempKelvin     = 2

	PressureHpa  = 0
	PressureInHg = 1
	PressureMmHg = 2

	WindKmh      = 0
	WindMph      = 1
	WindMs       = 2
	WindBeaufort = 3
	WindKnots    = 4

	DistanceMetric   = 0
	DistanceImperial = 1

	PrecipMetric   = 0
	PrecipImperial = 1

	COppm  = 0
	COmgm3 = 1
)

// Preferences selects one unit system per quantity family. Read-only at
// request time; mutated only through the administrative settings surface.
type Preferences struct {
	Temperature    int `json:"temperature"`
	Pressure       int `json:"pressure"`
	WindSpeed      int `json:"wind_speed"`
	Distance       int `json:"distance"`
	Precipitation  int `json:"precipitation"`
	CarbonMonoxide int `json:"carbon_monoxide"`
}

// Metric is the all-canonical preference set.
func Metric() Preferences {
	return Preferences{}
}
