// Package ephemeris computes the sun and moon quantities hosted on the
// EPHEMERIS virtual module. Closed-form approximations are used throughout;
// accuracy is display-grade, not almanac-grade.
package ephemeris

import (
	"math"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

const (
	synodicMonth = 29.530588853 // days
	// Reference new moon: 2000-01-06 18:14 UTC.
	newMoonEpoch = 947182440

	meanMoonDistanceKm = 384400.0
	meanMoonDiameterKm = 3474.8
	meanSunDistanceKm  = 149597870.7
	sunDiameterKm      = 1392700.0
)

// MoonPhase returns the phase fraction in [0,1): 0 new moon, 0.5 full moon.
func MoonPhase(t time.Time) float64 {
	days := float64(t.Unix()-newMoonEpoch) / 86400
	phase := math.Mod(days/synodicMonth, 1)
	if phase < 0 {
		phase += 1
	}
	return phase
}

// MoonAge returns the moon age in days since the last new moon.
func MoonAge(t time.Time) float64 {
	return MoonPhase(t) * synodicMonth
}

// MoonIllumination returns the illuminated fraction of the disc in percent.
func MoonIllumination(t time.Time) float64 {
	return (1 - math.Cos(2*math.Pi*MoonPhase(t))) / 2 * 100
}

// MoonDistance returns the Earth-Moon distance in km, modulated by the
// anomalistic cycle around the mean distance.
func MoonDistance(t time.Time) float64 {
	days := float64(t.Unix()-newMoonEpoch) / 86400
	anomaly := 2 * math.Pi * math.Mod(days/27.55454988, 1)
	return meanMoonDistanceKm * (1 - 0.0549*math.Cos(anomaly))
}

// MoonDiameter returns the apparent lunar diameter in arc minutes.
func MoonDiameter(t time.Time) float64 {
	return 2 * math.Atan(meanMoonDiameterKm/(2*MoonDistance(t))) * 180 / math.Pi * 60
}

// SunDistance returns the Earth-Sun distance in km, modulated by orbital
// eccentricity over the year.
func SunDistance(t time.Time) float64 {
	day := float64(t.YearDay())
	anomaly := 2 * math.Pi * (day - 3) / 365.25
	return meanSunDistanceKm * (1 - 0.0167*math.Cos(anomaly))
}

// SunDiameter returns the apparent solar diameter in arc minutes.
func SunDiameter(t time.Time) float64 {
	return 2 * math.Atan(sunDiameterKm/(2*SunDistance(t))) * 180 / math.Pi * 60
}

// Compute synthesizes the computed part of the EPHEMERIS virtual module for a
// device. Sunrise/sunset (and moonrise/moonset when available) come from the
// provider payload and are not produced here.
func Compute(deviceID string, now time.Time) []records.Record {
	moduleID := records.VirtualModuleID(deviceID, records.ModuleEphemeris)
	mk := func(m records.MeasureType, v float64) records.Record {
		return records.NewNumeric(deviceID, moduleID, records.ModuleEphemeris, "Ephemeris", m, v, now)
	}

	return []records.Record{
		mk(records.MoonPhase, MoonPhase(now)),
		mk(records.MoonAge, MoonAge(now)),
		mk(records.MoonIllumination, MoonIllumination(now)),
		mk(records.MoonDistance, MoonDistance(now)),
		mk(records.MoonDiameter, MoonDiameter(now)),
		mk(records.SunDistance, SunDistance(now)),
		mk(records.SunDiameter, SunDiameter(now)),
	}
}
