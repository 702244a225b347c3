package units

import "math"

// Conversion factors from the canonical metric units.
const (
	hpaToInHg = 0.02952998751
	hpaToMmHg = 0.750061561303
	kmhToMph  = 0.6213711922
	kmhToKt   = 0.5399568035
	mToFt     = 3.2808399
	kmToMi    = 0.6213711922
	mmToIn    = 0.0393700787
	cmToIn    = 0.3937007874
	// CO at 25 degC and 1013 hPa.
	ppmToMgm3 = 1.1456
)

// ConvertTemperature converts degrees Celsius to the selected system.
func ConvertTemperature(celsius float64, system int) float64 {
	switch system {
	case TempFahrenheit:
		return celsius*1.8 + 32
	case TempKelvin:
		return celsius + 273.15
	default:
		return celsius
	}
}

// TemperatureToCelsius is the inverse of ConvertTemperature.
func TemperatureToCelsius(value float64, system int) float64 {
	switch system {
	case TempFahrenheit:
		return (value - 32) / 1.8
	case TempKelvin:
		return value - 273.15
	default:
		return value
	}
}

// ConvertPressure converts hPa to the selected system.
func ConvertPressure(hpa float64, system int) float64 {
	switch system {
	case PressureInHg:
		return hpa * hpaToInHg
	case PressureMmHg:
		return hpa * hpaToMmHg
	default:
		return hpa
	}
}

// PressureToHpa is the inverse of ConvertPressure.
func PressureToHpa(value float64, system int) float64 {
	switch system {
	case PressureInHg:
		return value / hpaToInHg
	case PressureMmHg:
		return value / hpaToMmHg
	default:
		return value
	}
}

// ConvertWindSpeed converts km/h to the selected system. Beaufort is a scale,
// not a unit, and has no exact inverse.
func ConvertWindSpeed(kmh float64, system int) float64 {
	switch system {
	case WindMph:
		return kmh * kmhToMph
	case WindMs:
		return kmh / 3.6
	case WindBeaufort:
		return beaufort(kmh)
	case WindKnots:
		return kmh * kmhToKt
	default:
		return kmh
	}
}

// WindSpeedToKmh inverts ConvertWindSpeed for the invertible systems.
// Beaufort values are returned unchanged.
func WindSpeedToKmh(value float64, system int) float64 {
	switch system {
	case WindMph:
		return value / kmhToMph
	case WindMs:
		return value * 3.6
	case WindKnots:
		return value / kmhToKt
	default:
		return value
	}
}

// beaufort maps a km/h speed onto the 0-12 Beaufort scale.
func beaufort(kmh float64) float64 {
	thresholds := []float64{1, 6, 12, 20, 29, 39, 50, 62, 75, 89, 103, 118}
	for i, limit := range thresholds {
		if kmh < limit {
			return float64(i)
		}
	}
	return 12
}

// ConvertAltitude converts meters to the selected system.
func ConvertAltitude(meters float64, system int) float64 {
	if system == DistanceImperial {
		return meters * mToFt
	}
	return meters
}

// AltitudeToMeters is the inverse of ConvertAltitude.
func AltitudeToMeters(value float64, system int) float64 {
	if system == DistanceImperial {
		return value / mToFt
	}
	return value
}

// ConvertDistance converts kilometers to the selected system. Used for
// astronomic distances, which canonically travel in km.
func ConvertDistance(km float64, system int) float64 {
	if system == DistanceImperial {
		return km * kmToMi
	}
	return km
}

// DistanceToKm is the inverse of ConvertDistance.
func DistanceToKm(value float64, system int) float64 {
	if system == DistanceImperial {
		return value / kmToMi
	}
	return value
}

// ConvertRain converts millimeters to the selected system.
func ConvertRain(mm float64, system int) float64 {
	if system == PrecipImperial {
		return mm * mmToIn
	}
	return mm
}

// RainToMm is the inverse of ConvertRain.
func RainToMm(value float64, system int) float64 {
	if system == PrecipImperial {
		return value / mmToIn
	}
	return value
}

// ConvertSnow converts centimeters to the selected system.
func ConvertSnow(cm float64, system int) float64 {
	if system == PrecipImperial {
		return cm * cmToIn
	}
	return cm
}

// SnowToCm is the inverse of ConvertSnow.
func SnowToCm(value float64, system int) float64 {
	if system == PrecipImperial {
		return value / cmToIn
	}
	return value
}

// ConvertCO converts ppm to the selected system.
func ConvertCO(ppm float64, system int) float64 {
	if system == COmgm3 {
		return ppm * ppmToMgm3
	}
	return ppm
}

// COToPpm is the inverse of ConvertCO.
func COToPpm(value float64, system int) float64 {
	if system == COmgm3 {
		return value / ppmToMgm3
	}
	return value
}

// NormalizeAngle folds any compass bearing into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}
