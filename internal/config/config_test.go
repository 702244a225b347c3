package config

import (
	"testing"

	"github.com/stationhub/stationhub/internal/units"
)

func TestLoadUnitPreferencesDefaultsToMetric(t *testing.T) {
	prefs, err := loadUnitPreferences("")
	if err != nil {
		t.Fatalf("loadUnitPreferences: %v", err)
	}
	if prefs != units.Metric() {
		t.Errorf("got %+v, want metric defaults", prefs)
	}
}

func TestLoadUnitPreferencesPositionalOrder(t *testing.T) {
	prefs, err := loadUnitPreferences("1, 2, 4, 1, 1, 1")
	if err != nil {
		t.Fatalf("loadUnitPreferences: %v", err)
	}
	if prefs.Temperature != units.TempFahrenheit {
		t.Errorf("temperature = %d, want fahrenheit", prefs.Temperature)
	}
	if prefs.Pressure != units.PressureMmHg {
		t.Errorf("pressure = %d, want mmHg", prefs.Pressure)
	}
	if prefs.WindSpeed != units.WindKnots {
		t.Errorf("wind = %d, want knots", prefs.WindSpeed)
	}
	if prefs.Precipitation != units.PrecipImperial {
		t.Errorf("precipitation = %d, want imperial", prefs.Precipitation)
	}
}

func TestLoadUnitPreferencesRejectsWrongArity(t *testing.T) {
	if _, err := loadUnitPreferences("1,2,3"); err == nil {
		t.Error("expected error for short preference list")
	}
	if _, err := loadUnitPreferences("1,2,3,x,5,6"); err == nil {
		t.Error("expected error for non-numeric entry")
	}
}

func TestLoadStationsFromCoordinates(t *testing.T) {
	t.Setenv("STATION_IDS", "owm:lyon,owm:oslo")
	t.Setenv("STATION_NAMES", "Lyon,Oslo")
	t.Setenv("STATION_LATITUDES", "45.76,59.91")
	t.Setenv("STATION_LONGITUDES", "4.85,10.75")

	stations, err := loadStations()
	if err != nil {
		t.Fatalf("loadStations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(stations))
	}
	if stations[0].Name != "Lyon" || stations[0].Latitude != 45.76 {
		t.Errorf("unexpected first station %+v", stations[0])
	}
	if stations[1].DeviceID != "owm:oslo" || stations[1].Longitude != 10.75 {
		t.Errorf("unexpected second station %+v", stations[1])
	}
}

func TestLoadStationsRequiresCoordinatesOrGeocoder(t *testing.T) {
	t.Setenv("STATION_IDS", "owm:lyon")
	t.Setenv("STATION_LATITUDES", "")
	t.Setenv("STATION_LONGITUDES", "")
	t.Setenv("STATION_CITIES", "")
	t.Setenv("GEOCODER_API_KEY", "")

	if _, err := loadStations(); err == nil {
		t.Error("expected error for station without coordinates")
	}
}

func TestLoadStationsEmptyListIsFine(t *testing.T) {
	t.Setenv("STATION_IDS", "")
	stations, err := loadStations()
	if err != nil {
		t.Fatalf("loadStations: %v", err)
	}
	if stations != nil {
		t.Errorf("expected nil station list, got %+v", stations)
	}
}
