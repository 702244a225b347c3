package units

import (
	"math"
	"strconv"

	"github.com/stationhub/stationhub/internal/records"
)

// Family groups measure types sharing one unit preference.
type Family int

const (
	FamilyNone Family = iota
	FamilyTemperature
	FamilyHumidity
	FamilyPressure
	FamilyWind
	FamilyAngle
	FamilyRain
	FamilySnow
	FamilyAltitude
	FamilyKmDistance
	FamilyCO2
	FamilyCO
	FamilyOzone
	FamilyNoise
	FamilyPercent
)

// FamilyOf maps a measure type onto its quantity family.
func FamilyOf(m records.MeasureType) Family {
	switch m {
	case records.Temperature, records.TempMax, records.TempMin, records.TemperatureRef,
		records.DewPoint, records.FrostPoint, records.HeatIndex, records.Humidex,
		records.WindChill:
		return FamilyTemperature
	case records.Humidity, records.HumidityRef:
		return FamilyHumidity
	case records.Pressure:
		return FamilyPressure
	case records.WindStrength, records.GustStrength, records.WindStrengthMax, records.WindRef:
		return FamilyWind
	case records.WindAngle, records.GustAngle, records.WindAngleMax:
		return FamilyAngle
	case records.Rain, records.RainHourAggregated, records.RainDayAggregated:
		return FamilyRain
	case records.Snow:
		return FamilySnow
	case records.LocAltitude, records.CloudCeiling:
		return FamilyAltitude
	case records.MoonDistance, records.MoonDiameter, records.SunDistance, records.SunDiameter:
		return FamilyKmDistance
	case records.CO2:
		return FamilyCO2
	case records.CO:
		return FamilyCO
	case records.Ozone:
		return FamilyOzone
	case records.Noise:
		return FamilyNoise
	case records.Battery, records.Signal, records.Cloudiness, records.MoonIllumination:
		return FamilyPercent
	default:
		return FamilyNone
	}
}

// Convert renders a canonical value in the unit the preferences select for the
// measure's family. Values with no unit family pass through unchanged.
func Convert(m records.MeasureType, value float64, p Preferences) float64 {
	switch FamilyOf(m) {
	case FamilyTemperature:
		return ConvertTemperature(value, p.Temperature)
	case FamilyPressure:
		return ConvertPressure(value, p.Pressure)
	case FamilyWind:
		return ConvertWindSpeed(value, p.WindSpeed)
	case FamilyAngle:
		return NormalizeAngle(value)
	case FamilyRain:
		return ConvertRain(value, p.Precipitation)
	case FamilySnow:
		return ConvertSnow(value, p.Precipitation)
	case FamilyAltitude:
		return ConvertAltitude(value, p.Distance)
	case FamilyKmDistance:
		return ConvertDistance(value, p.Distance)
	case FamilyCO:
		return ConvertCO(value, p.CarbonMonoxide)
	default:
		return value
	}
}

// Invert converts a displayed value back to the canonical unit where a
// well-defined inverse exists. The second return is false for one-way scales
// (Beaufort) and unit-less measures.
func Invert(m records.MeasureType, value float64, p Preferences) (float64, bool) {
	switch FamilyOf(m) {
	case FamilyTemperature:
		return TemperatureToCelsius(value, p.Temperature), true
	case FamilyPressure:
		return PressureToHpa(value, p.Pressure), true
	case FamilyWind:
		if p.WindSpeed == WindBeaufort {
			return 0, false
		}
		return WindSpeedToKmh(value, p.WindSpeed), true
	case FamilyRain:
		return RainToMm(value, p.Precipitation), true
	case FamilySnow:
		return SnowToCm(value, p.Precipitation), true
	case FamilyAltitude:
		return AltitudeToMeters(value, p.Distance), true
	case FamilyKmDistance:
		return DistanceToKm(value, p.Distance), true
	case FamilyCO:
		return COToPpm(value, p.CarbonMonoxide), true
	default:
		return 0, false
	}
}

// Decimals returns the display precision for a measure under the selected
// unit system. High-precision barometric units get two decimals; wind speeds
// get a decimal only where the unit and magnitude make it meaningful.
func Decimals(m records.MeasureType, displayed float64, p Preferences) int {
	switch FamilyOf(m) {
	case FamilyTemperature:
		return 1
	case FamilyPressure:
		if p.Pressure == PressureInHg || p.Pressure == PressureMmHg {
			return 2
		}
		return 1
	case FamilyWind:
		switch p.WindSpeed {
		case WindMs:
			return 1
		case WindMph, WindKnots:
			if math.Abs(displayed) < 10 {
				return 1
			}
			return 0
		default:
			return 0
		}
	case FamilyRain:
		if p.Precipitation == PrecipImperial {
			return 2
		}
		return 1
	case FamilySnow:
		if p.Precipitation == PrecipImperial {
			return 1
		}
		return 0
	case FamilyKmDistance:
		return 0
	case FamilyCO:
		if p.CarbonMonoxide == COmgm3 {
			return 2
		}
		return 1
	default:
		return 0
	}
}

// Format converts a canonical value and renders it with the measure's
// precision rule. The result carries no unit symbol; see Label.
func Format(m records.MeasureType, value float64, p Preferences) string {
	displayed := Convert(m, value, p)
	return strconv.FormatFloat(roundTo(displayed, Decimals(m, displayed, p)), 'f', Decimals(m, displayed, p), 64)
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
