// Package records defines the canonical measurement model shared by the
// whole pipeline: stations, modules and the single-current-value
// MeasurementRecord the store keeps per (device, module, measure).
package records

import (
	"fmt"
	"strconv"
	"time"
)

// ModuleType identifies the kind of sensing unit a record belongs to.
type ModuleType string

const (
	ModuleMain              ModuleType = "MAIN"
	ModuleOutdoor           ModuleType = "OUTDOOR"
	ModuleRain              ModuleType = "RAIN"
	ModuleWind              ModuleType = "WIND"
	ModuleIndoorAux         ModuleType = "INDOOR_AUX"
	ModuleCurrentConditions ModuleType = "CURRENT_CONDITIONS"
	ModuleComputed          ModuleType = "COMPUTED"
	ModuleEphemeris         ModuleType = "EPHEMERIS"
	ModulePollution         ModuleType = "POLLUTION"
)

// Virtual reports whether the module type is synthesized rather than
// reported by hardware.
func (t ModuleType) Virtual() bool {
	switch t {
	case ModuleCurrentConditions, ModuleComputed, ModuleEphemeris, ModulePollution:
		return true
	}
	return false
}

// virtualSuffixes maps each virtual module type to the id suffix appended to
// the owning device id. Virtual modules are singletons per station, so a
// deterministic id keeps re-ingestion idempotent.
var virtualSuffixes = map[ModuleType]string{
	ModuleCurrentConditions: ":cc",
	ModuleComputed:          ":cmp",
	ModuleEphemeris:         ":eph",
	ModulePollution:         ":pol",
}

// VirtualModuleID derives the module id for a virtual module of a device.
func VirtualModuleID(deviceID string, t ModuleType) string {
	return deviceID + virtualSuffixes[t]
}

// MeasureType is a key from the closed measurement vocabulary.
type MeasureType string

const (
	Temperature      MeasureType = "temperature"
	TempMax          MeasureType = "tempmax"
	TempMin          MeasureType = "tempmin"
	TemperatureTrend MeasureType = "temperature_trend"
	TemperatureRef   MeasureType = "temperature_ref"

	Humidity    MeasureType = "humidity"
	HumidityRef MeasureType = "humidity_ref"

	Pressure      MeasureType = "pressure"
	PressureTrend MeasureType = "pressure_trend"

	WindAngle       MeasureType = "windangle"
	WindStrength    MeasureType = "windstrength"
	GustAngle       MeasureType = "gustangle"
	GustStrength    MeasureType = "guststrength"
	WindAngleMax    MeasureType = "windangle_max"
	WindStrengthMax MeasureType = "windstrength_max"
	WindRef         MeasureType = "wind_ref"

	Rain               MeasureType = "rain"
	RainHourAggregated MeasureType = "rain_hour_aggregated"
	RainDayAggregated  MeasureType = "rain_day_aggregated"
	Snow               MeasureType = "snow"

	CO2        MeasureType = "co2"
	Noise      MeasureType = "noise"
	Ozone      MeasureType = "o3"
	CO         MeasureType = "co"
	Cloudiness MeasureType = "cloudiness"

	DewPoint     MeasureType = "dew_point"
	FrostPoint   MeasureType = "frost_point"
	HeatIndex    MeasureType = "heat_index"
	Humidex      MeasureType = "humidex"
	WindChill    MeasureType = "wind_chill"
	CloudCeiling MeasureType = "cloud_ceiling"

	Sunrise          MeasureType = "sunrise"
	Sunset           MeasureType = "sunset"
	Moonrise         MeasureType = "moonrise"
	Moonset          MeasureType = "moonset"
	MoonPhase        MeasureType = "moon_phase"
	MoonAge          MeasureType = "moon_age"
	MoonIllumination MeasureType = "moon_illumination"
	MoonDistance     MeasureType = "moon_distance"
	MoonDiameter     MeasureType = "moon_diameter"
	SunDistance      MeasureType = "sun_distance"
	SunDiameter      MeasureType = "sun_diameter"

	Battery     MeasureType = "battery"
	Signal      MeasureType = "signal"
	Firmware    MeasureType = "firmware"
	LastSeen    MeasureType = "last_seen"
	LastRefresh MeasureType = "last_refresh"
	FirstSetup  MeasureType = "first_setup"
	LastSetup   MeasureType = "last_setup"
	LastUpgrade MeasureType = "last_upgrade"

	LocLatitude  MeasureType = "loc_latitude"
	LocLongitude MeasureType = "loc_longitude"
	LocAltitude  MeasureType = "loc_altitude"
	LocTimezone  MeasureType = "loc_timezone"
	LocCity      MeasureType = "loc_city"
	LocCountry   MeasureType = "loc_country"
)

// Derived reports whether the measure is a physically derived quantity whose
// display must pass the validity gate.
func (m MeasureType) Derived() bool {
	switch m {
	case DewPoint, FrostPoint, HeatIndex, Humidex, WindChill, Rain, Snow:
		return true
	}
	return false
}

// Textual reports whether the measure value is a free string rather than a
// number or a unix timestamp.
func (m MeasureType) Textual() bool {
	switch m {
	case TemperatureTrend, PressureTrend, Firmware, LocTimezone, LocCity, LocCountry:
		return true
	}
	return false
}

// TimeValued reports whether the measure value is a unix timestamp.
func (m MeasureType) TimeValued() bool {
	switch m {
	case Sunrise, Sunset, Moonrise, Moonset,
		LastSeen, LastRefresh, FirstSetup, LastSetup, LastUpgrade:
		return true
	}
	return false
}

// Record is the atomic canonical unit of storage: the single current value of
// one measured quantity on one module. The uniqueness key is
// (DeviceID, ModuleID, Type); a new ingestion replaces the prior value.
type Record struct {
	DeviceID   string      `json:"device_id"`
	ModuleID   string      `json:"module_id"`
	ModuleType ModuleType  `json:"module_type"`
	ModuleName string      `json:"module_name"`
	Type       MeasureType `json:"measure_type"`
	Value      string      `json:"measure_value"`
	Timestamp  time.Time   `json:"measure_timestamp"`
}

// Key returns the canonical uniqueness key of the record.
func (r Record) Key() string {
	return r.DeviceID + "|" + r.ModuleID + "|" + string(r.Type)
}

// Numeric parses the stored value as a float.
func (r Record) Numeric() (float64, error) {
	v, err := strconv.ParseFloat(r.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("measure %s on %s is not numeric: %w", r.Type, r.ModuleID, err)
	}
	return v, nil
}

// NewNumeric builds a numeric record. Values are stored as text but keep full
// float precision.
func NewNumeric(deviceID, moduleID string, mt ModuleType, name string, m MeasureType, value float64, ts time.Time) Record {
	return Record{
		DeviceID:   deviceID,
		ModuleID:   moduleID,
		ModuleType: mt,
		ModuleName: name,
		Type:       m,
		Value:      strconv.FormatFloat(value, 'f', -1, 64),
		Timestamp:  ts.UTC(),
	}
}

// NewText builds a string-valued record.
func NewText(deviceID, moduleID string, mt ModuleType, name string, m MeasureType, value string, ts time.Time) Record {
	return Record{
		DeviceID:   deviceID,
		ModuleID:   moduleID,
		ModuleType: mt,
		ModuleName: name,
		Type:       m,
		Value:      value,
		Timestamp:  ts.UTC(),
	}
}

// NewTime builds a timestamp-valued record (stored as unix seconds).
func NewTime(deviceID, moduleID string, mt ModuleType, name string, m MeasureType, value time.Time, ts time.Time) Record {
	return Record{
		DeviceID:   deviceID,
		ModuleID:   moduleID,
		ModuleType: mt,
		ModuleName: name,
		Type:       m,
		Value:      strconv.FormatInt(value.UTC().Unix(), 10),
		Timestamp:  ts.UTC(),
	}
}

// StationInfo is the lightweight side-table row making a station discoverable
// before a human names it.
type StationInfo struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
}
