// Package derived computes the physically derived quantities hosted on the
// COMPUTED virtual module, together with the reference readings the validity
// gate needs at display time. All inputs and outputs are canonical units
// (Celsius, percent, km/h, meters).
package derived

import (
	"math"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

// Magnus-Tetens coefficients for dew and frost point.
const (
	magnusA = 17.27
	magnusB = 237.7
	frostA  = 21.875
	frostB  = 265.5
)

// DewPoint returns the dew point in Celsius for temperature t and relative
// humidity h (percent). Humidity is clamped to a minimal positive value so
// the logarithm stays defined.
func DewPoint(t, h float64) float64 {
	if h < 0.1 {
		h = 0.1
	}
	gamma := math.Log(h/100) + magnusA*t/(magnusB+t)
	return magnusB * gamma / (magnusA - gamma)
}

// FrostPoint returns the frost point in Celsius, using the ice-calibrated
// Magnus coefficients.
func FrostPoint(t, h float64) float64 {
	if h < 0.1 {
		h = 0.1
	}
	gamma := math.Log(h/100) + frostA*t/(frostB+t)
	return frostB * gamma / (frostA - gamma)
}

// HeatIndex returns the Rothfusz heat index in Celsius for temperature t and
// relative humidity h. The regression runs in Fahrenheit.
func HeatIndex(t, h float64) float64 {
	tf := t*1.8 + 32
	hi := -42.379 + 2.04901523*tf + 10.14333127*h -
		0.22475541*tf*h - 0.00683783*tf*tf - 0.05481717*h*h +
		0.00122874*tf*tf*h + 0.00085282*tf*h*h - 0.00000199*tf*tf*h*h
	return (hi - 32) / 1.8
}

// Humidex returns the Canadian humidex for temperature t and dew point d,
// both Celsius.
func Humidex(t, d float64) float64 {
	e := 6.11 * math.Exp(5417.7530*(1/273.16-1/(273.15+d)))
	return t + 0.5555*(e-10)
}

// WindChill returns the JAG/TI wind chill in Celsius for temperature t and
// wind speed v in km/h. Below the 4.8 km/h validity floor the formula
// degenerates, so ambient temperature is returned.
func WindChill(t, v float64) float64 {
	if v < 4.8 {
		return t
	}
	p := math.Pow(v, 0.16)
	return 13.12 + 0.6215*t - 11.37*p + 0.3965*t*p
}

// CloudCeiling estimates the lifted condensation level in meters from the
// spread between temperature and dew point (125 m per degree of spread).
func CloudCeiling(t, d float64) float64 {
	c := 125 * (t - d)
	if c < 0 {
		return 0
	}
	return c
}

// Inputs are the outdoor reference readings a computation cycle starts from.
type Inputs struct {
	Temperature float64
	Humidity    float64
	// WindStrength in km/h; nil when the station has no anemometer.
	WindStrength *float64
}

// Compute synthesizes the COMPUTED virtual module for a device: every derived
// quantity plus the reference readings captured at computation time. Gating
// happens at read time, so all quantities are stored unconditionally.
func Compute(deviceID string, in Inputs, ts time.Time) []records.Record {
	moduleID := records.VirtualModuleID(deviceID, records.ModuleComputed)
	mk := func(m records.MeasureType, v float64) records.Record {
		return records.NewNumeric(deviceID, moduleID, records.ModuleComputed, "Computed", m, v, ts)
	}

	dew := DewPoint(in.Temperature, in.Humidity)

	recs := []records.Record{
		mk(records.TemperatureRef, in.Temperature),
		mk(records.HumidityRef, in.Humidity),
		mk(records.DewPoint, dew),
		mk(records.FrostPoint, FrostPoint(in.Temperature, in.Humidity)),
		mk(records.HeatIndex, HeatIndex(in.Temperature, in.Humidity)),
		mk(records.Humidex, Humidex(in.Temperature, dew)),
		mk(records.CloudCeiling, CloudCeiling(in.Temperature, dew)),
	}

	if in.WindStrength != nil {
		recs = append(recs,
			mk(records.WindRef, *in.WindStrength),
			mk(records.WindChill, WindChill(in.Temperature, *in.WindStrength)),
		)
	}

	return recs
}
