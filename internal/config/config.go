// Package config loads the service configuration from the environment. Unit
// preferences arrive as one ordered list of small integers so existing
// deployments keep their positional convention, but they are carried as named
// fields from here on.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/stationhub/stationhub/internal/assembler"
	"github.com/stationhub/stationhub/internal/providers"
	"github.com/stationhub/stationhub/internal/staleness"
	"github.com/stationhub/stationhub/internal/units"
)

type AppConfig struct {
	NetatmoAccessToken string
	OpenWeatherAPIKey  string

	// DatabaseDSN selects the Postgres store; empty keeps records in memory.
	DatabaseDSN string

	// FetchInterval controls how often ingestion cycles run.
	FetchInterval time.Duration `validate:"min=1m"`

	// Stations the current-conditions provider polls.
	Stations []providers.StationRef

	Units      units.Preferences
	Window     staleness.Window
	Precedence assembler.Precedence

	Port string `validate:"required"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{
		NetatmoAccessToken: os.Getenv("NETATMO_ACCESS_TOKEN"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		Port:               getenvDefault("PORT", "8080"),
	}

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.Window, err = staleness.ParseWindow(getenvDefault("OBSOLESCENCE_WINDOW", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid OBSOLESCENCE_WINDOW: %w", err)
	}

	cfg.Precedence, err = assembler.ParsePrecedence(os.Getenv("PROVIDER_PRECEDENCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_PRECEDENCE: %w", err)
	}

	cfg.Units, err = loadUnitPreferences(os.Getenv("UNIT_PREFERENCES"))
	if err != nil {
		return nil, err
	}

	cfg.Stations, err = loadStations()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadUnitPreferences parses the ordered preference list. The positions are
// fixed: temperature, pressure, wind speed, distance, precipitation, carbon
// monoxide. An empty value means all-metric.
func loadUnitPreferences(raw string) (units.Preferences, error) {
	prefs := units.Metric()
	if raw == "" {
		return prefs, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 6 {
		return prefs, fmt.Errorf("UNIT_PREFERENCES needs 6 comma-separated values, got %d", len(parts))
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return prefs, fmt.Errorf("invalid UNIT_PREFERENCES entry %q: %w", p, err)
		}
		vals[i] = n
	}

	prefs.Temperature = vals[0]
	prefs.Pressure = vals[1]
	prefs.WindSpeed = vals[2]
	prefs.Distance = vals[3]
	prefs.Precipitation = vals[4]
	prefs.CarbonMonoxide = vals[5]
	return prefs, nil
}

// loadStations reads the station list the current-conditions provider polls.
// Coordinates may be given directly or resolved from city/country through the
// geocoding service when GEOCODER_API_KEY is set.
func loadStations() ([]providers.StationRef, error) {
	ids := splitList(os.Getenv("STATION_IDS"))
	if len(ids) == 0 {
		return nil, nil
	}

	names := splitList(os.Getenv("STATION_NAMES"))
	lats := splitList(os.Getenv("STATION_LATITUDES"))
	lons := splitList(os.Getenv("STATION_LONGITUDES"))
	cities := splitList(os.Getenv("STATION_CITIES"))
	countries := splitList(os.Getenv("STATION_COUNTRIES"))

	geocoder.ApiKey = os.Getenv("GEOCODER_API_KEY")

	stations := make([]providers.StationRef, 0, len(ids))
	for i, id := range ids {
		st := providers.StationRef{DeviceID: id, Name: id}
		if i < len(names) && names[i] != "" {
			st.Name = names[i]
		}

		switch {
		case i < len(lats) && i < len(lons):
			lat, err := strconv.ParseFloat(lats[i], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid STATION_LATITUDES entry %q: %w", lats[i], err)
			}
			lon, err := strconv.ParseFloat(lons[i], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid STATION_LONGITUDES entry %q: %w", lons[i], err)
			}
			st.Latitude, st.Longitude = lat, lon

		case i < len(cities) && geocoder.ApiKey != "":
			addr := geocoder.Address{City: cities[i]}
			if i < len(countries) {
				addr.Country = countries[i]
			}
			loc, err := geocoder.Geocoding(addr)
			if err != nil {
				return nil, fmt.Errorf("geocoding %q failed: %w", cities[i], err)
			}
			st.Latitude, st.Longitude = loc.Latitude, loc.Longitude

		default:
			return nil, fmt.Errorf("station %s needs coordinates or a city with GEOCODER_API_KEY set", id)
		}

		stations = append(stations, st)
	}
	return stations, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
