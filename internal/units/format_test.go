package units

import (
	"testing"

	"github.com/stationhub/stationhub/internal/records"
)

func TestFormatPrecisionRules(t *testing.T) {
	tests := []struct {
		name    string
		measure records.MeasureType
		value   float64
		prefs   Preferences
		want    string
	}{
		{"temperature one decimal", records.Temperature, 21.67, Metric(), "21.7"},
		{"pressure hpa one decimal", records.Pressure, 1013.25, Metric(), "1013.3"},
		{"pressure inHg two decimals", records.Pressure, 1013.25, Preferences{Pressure: PressureInHg}, "29.92"},
		{"wind kmh integer", records.WindStrength, 23.6, Metric(), "24"},
		{"wind m/s one decimal", records.WindStrength, 23.6, Preferences{WindSpeed: WindMs}, "6.6"},
		{"slow wind mph one decimal", records.WindStrength, 12, Preferences{WindSpeed: WindMph}, "7.5"},
		{"fast wind mph integer", records.WindStrength, 100, Preferences{WindSpeed: WindMph}, "62"},
		{"rain mm one decimal", records.Rain, 3.26, Metric(), "3.3"},
		{"rain inches two decimals", records.Rain, 3.26, Preferences{Precipitation: PrecipImperial}, "0.13"},
		{"altitude integer", records.LocAltitude, 875.4, Metric(), "875"},
		{"humidity integer", records.Humidity, 64.2, Metric(), "64"},
		{"co2 integer ppm", records.CO2, 612.8, Metric(), "613"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.measure, tt.value, tt.prefs); got != tt.want {
				t.Errorf("Format(%s, %v) = %q, want %q", tt.measure, tt.value, got, tt.want)
			}
		})
	}
}

func TestUnitLabelRainQualifiers(t *testing.T) {
	p := Metric()

	if l := UnitLabel(records.Rain, records.ModuleRain, p); l.Qualified != "mm / 1 hr" {
		t.Errorf("rain gauge qualifier = %q, want %q", l.Qualified, "mm / 1 hr")
	}
	if l := UnitLabel(records.Rain, records.ModuleCurrentConditions, p); l.Qualified != "mm / 3 hrs" {
		t.Errorf("current-conditions rain qualifier = %q, want %q", l.Qualified, "mm / 3 hrs")
	}
	if l := UnitLabel(records.RainDayAggregated, records.ModuleRain, p); l.Qualified != "mm today" {
		t.Errorf("daily rain qualifier = %q, want %q", l.Qualified, "mm today")
	}
}

func TestPlausibleRange(t *testing.T) {
	r, ok := PlausibleRange(records.Temperature)
	if !ok || r.Min != -40 || r.Max != 60 {
		t.Errorf("temperature range = %+v ok=%v", r, ok)
	}
	if _, ok := PlausibleRange(records.Firmware); ok {
		t.Error("firmware should have no render bounds")
	}
}
