package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/derived"
	"github.com/stationhub/stationhub/internal/records"
)

// NetatmoProvider collects station data from the native provider: real
// hardware stations with a MAIN module and optional outdoor, wind, rain and
// auxiliary indoor modules.
type NetatmoProvider struct {
	name        string
	accessToken string
	baseURL     string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
	log         *zap.Logger
}

func NewNetatmoProvider(client *http.Client, accessToken string, log *zap.Logger) *NetatmoProvider {
	return &NetatmoProvider{
		name:        "netatmo",
		accessToken: accessToken,
		baseURL:     "https://api.netatmo.com/api/getstationsdata",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: defaultBreaker("netatmo"),
		log:     log,
	}
}

func (p *NetatmoProvider) Name() string {
	return p.name
}

// Collect fetches and normalizes one cycle of station data.
func (p *NetatmoProvider) Collect(ctx context.Context, now time.Time) (Batch, error) {
	if p.accessToken == "" {
		return Batch{}, fmt.Errorf("netatmo access token is not configured: %w", ErrAuth)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("access_token", p.accessToken)
		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Batch{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Batch{}, err
	}

	payload, err := ParsePayload(body)
	if err != nil {
		return Batch{}, fmt.Errorf("unparseable station data: %w", err)
	}

	if errNode := payload.Child("error"); !errNode.IsNil() {
		code := int(errNode.FloatOr("code", 0))
		msg := errNode.StrOr("message", "unknown error")
		base := ErrService
		if code == 2 || code == 3 {
			base = ErrAuth
		}
		return Batch{}, fmt.Errorf("provider error %d: %s: %w", code, msg, base)
	}

	return NormalizeStationData(payload, now), nil
}

// netatmoModuleTypes maps the provider's hardware type tags onto canonical
// module types.
var netatmoModuleTypes = map[string]records.ModuleType{
	"NAMain":    records.ModuleMain,
	"NAModule1": records.ModuleOutdoor,
	"NAModule2": records.ModuleWind,
	"NAModule3": records.ModuleRain,
	"NAModule4": records.ModuleIndoorAux,
}

// NormalizeStationData flattens a native station payload into canonical
// records. Every field is optional; unknown module types are skipped whole.
func NormalizeStationData(payload Node, now time.Time) Batch {
	var batch Batch

	for _, dev := range payload.Child("body").List("devices") {
		deviceID, ok := dev.Str("_id")
		if ok {
			normalizeDevice(&batch, deviceID, dev, now)
		}
	}
	return batch
}

func normalizeDevice(batch *Batch, deviceID string, dev Node, now time.Time) {
	stationName := dev.StrOr("station_name", deviceID)
	batch.Stations = append(batch.Stations, records.StationInfo{
		StationID:   deviceID,
		StationName: stationName,
	})

	mainName := dev.StrOr("module_name", "Base station")
	dash := dev.Child("dashboard_data")
	ts := dash.TimeOr("time_utc", now)

	num := func(moduleID string, mt records.ModuleType, name string, m records.MeasureType, v float64, at time.Time) {
		batch.Records = append(batch.Records,
			records.NewNumeric(deviceID, moduleID, mt, name, m, v, at))
	}
	txt := func(moduleID string, mt records.ModuleType, name string, m records.MeasureType, v string, at time.Time) {
		batch.Records = append(batch.Records,
			records.NewText(deviceID, moduleID, mt, name, m, v, at))
	}

	// The base station doubles as the MAIN module; its id is the device id.
	mainMeasures := map[string]records.MeasureType{
		"Temperature": records.Temperature,
		"CO2":         records.CO2,
		"Humidity":    records.Humidity,
		"Noise":       records.Noise,
		"Pressure":    records.Pressure,
		"min_temp":    records.TempMin,
		"max_temp":    records.TempMax,
	}
	for field, m := range mainMeasures {
		if v, ok := dash.Float(field); ok {
			num(deviceID, records.ModuleMain, mainName, m, v, ts)
		}
	}
	if trend, ok := dash.Str("temp_trend"); ok {
		txt(deviceID, records.ModuleMain, mainName, records.TemperatureTrend, trend, ts)
	}
	if trend, ok := dash.Str("pressure_trend"); ok {
		txt(deviceID, records.ModuleMain, mainName, records.PressureTrend, trend, ts)
	}

	normalizePlace(batch, deviceID, mainName, dev.Child("place"), ts)
	normalizeHealth(batch, deviceID, deviceID, records.ModuleMain, mainName, dev, now)
	if v, ok := dev.Float("wifi_status"); ok {
		num(deviceID, records.ModuleMain, mainName, records.Signal, v, now)
	}

	var outdoorTemp, outdoorHum, windStrength *float64
	var outdoorTS time.Time

	for _, mod := range dev.List("modules") {
		moduleID, ok := mod.Str("_id")
		if !ok {
			continue
		}
		mt, ok := netatmoModuleTypes[mod.StrOr("type", "")]
		if !ok || mt == records.ModuleMain {
			continue
		}
		name := mod.StrOr("module_name", moduleID)
		mdash := mod.Child("dashboard_data")
		mts := mdash.TimeOr("time_utc", now)

		normalizeHealth(batch, deviceID, moduleID, mt, name, mod, now)
		if v, ok := mod.Float("battery_vp"); ok {
			num(moduleID, mt, name, records.Battery, v, now)
		}
		if v, ok := mod.Float("rf_status"); ok {
			num(moduleID, mt, name, records.Signal, v, now)
		}

		switch mt {
		case records.ModuleOutdoor, records.ModuleIndoorAux:
			for field, m := range map[string]records.MeasureType{
				"Temperature": records.Temperature,
				"Humidity":    records.Humidity,
				"CO2":         records.CO2,
				"min_temp":    records.TempMin,
				"max_temp":    records.TempMax,
			} {
				if v, ok := mdash.Float(field); ok {
					num(moduleID, mt, name, m, v, mts)
				}
			}
			if trend, ok := mdash.Str("temp_trend"); ok {
				txt(moduleID, mt, name, records.TemperatureTrend, trend, mts)
			}
			if mt == records.ModuleOutdoor {
				if v, ok := mdash.Float("Temperature"); ok {
					outdoorTemp, outdoorTS = &v, mts
				}
				if v, ok := mdash.Float("Humidity"); ok {
					outdoorHum = &v
				}
			}

		case records.ModuleRain:
			if v, ok := mdash.Float("Rain"); ok {
				num(moduleID, mt, name, records.Rain, v, mts)
			}
			if v, ok := mdash.Float("sum_rain_1"); ok {
				num(moduleID, mt, name, records.RainHourAggregated, v, mts)
			}
			if v, ok := mdash.Float("sum_rain_24"); ok {
				num(moduleID, mt, name, records.RainDayAggregated, v, mts)
			}

		case records.ModuleWind:
			for field, m := range map[string]records.MeasureType{
				"WindAngle":    records.WindAngle,
				"WindStrength": records.WindStrength,
				"GustAngle":    records.GustAngle,
				"GustStrength": records.GustStrength,
			} {
				if v, ok := mdash.Float(field); ok {
					num(moduleID, mt, name, m, v, mts)
				}
			}
			if v, ok := mdash.Float("WindStrength"); ok {
				windStrength = &v
			}
			if strength, angle, at, ok := maxWindFromHistory(mdash.List("wind_historic")); ok {
				num(moduleID, mt, name, records.WindStrengthMax, strength, at)
				num(moduleID, mt, name, records.WindAngleMax, angle, at)
			}
		}
	}

	if outdoorTemp != nil && outdoorHum != nil {
		batch.Records = append(batch.Records, derived.Compute(deviceID, derived.Inputs{
			Temperature:  *outdoorTemp,
			Humidity:     *outdoorHum,
			WindStrength: windStrength,
		}, outdoorTS)...)
	}
}

// maxWindFromHistory reduces a rolling wind history to its strongest entry
// and the coincident angle. Ties resolve to the first maximum, and the
// derived extreme carries the extreme's own timestamp.
func maxWindFromHistory(history []Node) (strength, angle float64, at time.Time, ok bool) {
	for _, entry := range history {
		s, sOK := entry.Float("WindStrength")
		t, tOK := entry.Time("time_utc")
		if !sOK || !tOK {
			continue
		}
		if !ok || s > strength {
			strength = s
			angle = entry.FloatOr("WindAngle", 0)
			at = t
			ok = true
		}
	}
	return strength, angle, at, ok
}

func normalizePlace(batch *Batch, deviceID, mainName string, place Node, ts time.Time) {
	if place.IsNil() {
		return
	}
	if lon, ok := place.Index("location", 0); ok {
		if v, lok := lon.v.(float64); lok {
			batch.Records = append(batch.Records,
				records.NewNumeric(deviceID, deviceID, records.ModuleMain, mainName, records.LocLongitude, v, ts))
		}
	}
	if lat, ok := place.Index("location", 1); ok {
		if v, lok := lat.v.(float64); lok {
			batch.Records = append(batch.Records,
				records.NewNumeric(deviceID, deviceID, records.ModuleMain, mainName, records.LocLatitude, v, ts))
		}
	}
	if v, ok := place.Float("altitude"); ok {
		batch.Records = append(batch.Records,
			records.NewNumeric(deviceID, deviceID, records.ModuleMain, mainName, records.LocAltitude, v, ts))
	}
	for field, m := range map[string]records.MeasureType{
		"timezone": records.LocTimezone,
		"city":     records.LocCity,
		"country":  records.LocCountry,
	} {
		if v, ok := place.Str(field); ok {
			batch.Records = append(batch.Records,
				records.NewText(deviceID, deviceID, records.ModuleMain, mainName, m, v, ts))
		}
	}
}

// normalizeHealth extracts the station-health bookkeeping measures shared by
// the base station and its modules.
func normalizeHealth(batch *Batch, deviceID, moduleID string, mt records.ModuleType, name string, node Node, now time.Time) {
	if v, ok := node.Float("firmware"); ok {
		batch.Records = append(batch.Records,
			records.NewText(deviceID, moduleID, mt, name, records.Firmware, strconv.Itoa(int(v)), now))
	}
	for field, m := range map[string]records.MeasureType{
		"last_status_store": records.LastSeen,
		"last_seen":         records.LastSeen,
		"date_setup":        records.FirstSetup,
		"last_setup":        records.LastSetup,
		"last_upgrade":      records.LastUpgrade,
	} {
		if t, ok := node.Time(field); ok {
			batch.Records = append(batch.Records,
				records.NewTime(deviceID, moduleID, mt, name, m, t, now))
		}
	}
	batch.Records = append(batch.Records,
		records.NewTime(deviceID, moduleID, mt, name, records.LastRefresh, now, now))
}
