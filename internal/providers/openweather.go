package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/ephemeris"
	"github.com/stationhub/stationhub/internal/records"
)

// OpenWeatherProvider collects current conditions, ephemeris and pollution
// data for the configured stations and hosts them on virtual modules, since
// this provider has no hardware of its own.
type OpenWeatherProvider struct {
	name         string
	apiKey       string
	baseURL      string
	pollutionURL string
	stations     []StationRef
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
	log          *zap.Logger
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, stations []StationRef, log *zap.Logger) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:         "openweathermap",
		apiKey:       apiKey,
		baseURL:      "https://api.openweathermap.org/data/2.5/weather",
		pollutionURL: "https://api.openweathermap.org/data/2.5/air_pollution",
		stations:     stations,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: defaultBreaker("openweathermap"),
		log:     log,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Collect fetches current conditions for every configured station. A station
// whose fetch fails is skipped with a diagnostic; stations already normalized
// earlier in the cycle are retained.
func (p *OpenWeatherProvider) Collect(ctx context.Context, now time.Time) (Batch, error) {
	if p.apiKey == "" {
		return Batch{}, fmt.Errorf("openweathermap api key is not configured: %w", ErrAuth)
	}

	var batch Batch
	var lastErr error
	for _, st := range p.stations {
		payload, err := p.fetch(ctx, p.baseURL, st)
		if err != nil {
			p.log.Error("current conditions fetch failed",
				zap.String("provider", p.name),
				zap.String("device_id", st.DeviceID),
				zap.Error(err))
			lastErr = err
			continue
		}

		pollution, err := p.fetch(ctx, p.pollutionURL, st)
		if err != nil {
			// Pollution data is optional; the conditions batch still counts.
			p.log.Warn("pollution fetch failed",
				zap.String("provider", p.name),
				zap.String("device_id", st.DeviceID),
				zap.Error(err))
			pollution = Node{}
		}

		b := NormalizeCurrentConditions(st, payload, pollution, now)
		batch.Records = append(batch.Records, b.Records...)
		batch.Stations = append(batch.Stations, b.Stations...)
	}

	if len(batch.Records) == 0 && lastErr != nil {
		return Batch{}, lastErr
	}
	return batch, nil
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, base string, st StationRef) (Node, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", st.Latitude))
		values.Set("lon", fmt.Sprintf("%f", st.Longitude))
		u := fmt.Sprintf("%s?%s", base, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Node{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Node{}, err
	}
	return ParsePayload(body)
}

// NormalizeCurrentConditions flattens a current-conditions payload (and an
// optional pollution payload) into records on the station's virtual modules.
// Wind speeds arrive in m/s and are canonicalized to km/h.
func NormalizeCurrentConditions(st StationRef, payload, pollution Node, now time.Time) Batch {
	var batch Batch

	batch.Stations = append(batch.Stations, records.StationInfo{
		StationID:   st.DeviceID,
		StationName: st.Name,
	})

	ccID := records.VirtualModuleID(st.DeviceID, records.ModuleCurrentConditions)
	ts := payload.TimeOr("dt", now)

	num := func(m records.MeasureType, v float64) {
		batch.Records = append(batch.Records,
			records.NewNumeric(st.DeviceID, ccID, records.ModuleCurrentConditions, "Current conditions", m, v, ts))
	}

	main := payload.Child("main")
	if v, ok := main.Float("temp"); ok {
		num(records.Temperature, v)
	}
	if v, ok := main.Float("humidity"); ok {
		num(records.Humidity, v)
	}
	if v, ok := main.Float("pressure"); ok {
		num(records.Pressure, v)
	}

	wind := payload.Child("wind")
	if v, ok := wind.Float("speed"); ok {
		num(records.WindStrength, v*3.6)
	}
	if v, ok := wind.Float("deg"); ok {
		num(records.WindAngle, v)
	}
	if v, ok := wind.Float("gust"); ok {
		num(records.GustStrength, v*3.6)
	}

	if v, ok := payload.Child("clouds").Float("all"); ok {
		num(records.Cloudiness, v)
	}

	rain := payload.Child("rain")
	if v, ok := rain.Float("1h"); ok {
		num(records.Rain, v)
	} else if v, ok := rain.Float("3h"); ok {
		num(records.Rain, v)
	}
	snow := payload.Child("snow")
	if v, ok := snow.Float("1h"); ok {
		// Snowfall arrives as millimeters of water equivalent; canonical
		// snow depth travels in centimeters.
		num(records.Snow, v/10)
	}

	batch.Records = append(batch.Records, normalizeEphemeris(st, payload, now)...)
	batch.Records = append(batch.Records, normalizePollution(st, pollution, now)...)
	return batch
}

func normalizeEphemeris(st StationRef, payload Node, now time.Time) []records.Record {
	ephID := records.VirtualModuleID(st.DeviceID, records.ModuleEphemeris)
	sys := payload.Child("sys")

	out := ephemeris.Compute(st.DeviceID, now)
	for field, m := range map[string]records.MeasureType{
		"sunrise": records.Sunrise,
		"sunset":  records.Sunset,
		// Not part of the standard payload, but some mirrors carry them.
		"moonrise": records.Moonrise,
		"moonset":  records.Moonset,
	} {
		if t, ok := sys.Time(field); ok {
			out = append(out,
				records.NewTime(st.DeviceID, ephID, records.ModuleEphemeris, "Ephemeris", m, t, now))
		}
	}
	return out
}

func normalizePollution(st StationRef, pollution Node, now time.Time) []records.Record {
	if pollution.IsNil() {
		return nil
	}
	entry, ok := pollution.Index("list", 0)
	if !ok {
		return nil
	}

	polID := records.VirtualModuleID(st.DeviceID, records.ModulePollution)
	ts := entry.TimeOr("dt", now)
	components := entry.Child("components")

	var out []records.Record
	if v, ok := components.Float("o3"); ok {
		out = append(out,
			records.NewNumeric(st.DeviceID, polID, records.ModulePollution, "Pollution", records.Ozone, v, ts))
	}
	if v, ok := components.Float("co"); ok {
		// The provider reports CO in µg/m³; canonical CO travels in ppm.
		out = append(out,
			records.NewNumeric(st.DeviceID, polID, records.ModulePollution, "Pollution", records.CO, v/1145.6, ts))
	}
	return out
}
