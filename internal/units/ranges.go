package units

import "github.com/stationhub/stationhub/internal/records"

// Range is a plausible min/max span for rendering a measure on a bounded
// surface (gauges, sparkline scales). Bounds are in canonical units.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var plausibleRanges = map[records.MeasureType]Range{
	records.Temperature:        {-40, 60},
	records.TempMax:            {-40, 60},
	records.TempMin:            {-40, 60},
	records.TemperatureRef:     {-40, 60},
	records.DewPoint:           {-40, 60},
	records.FrostPoint:         {-40, 60},
	records.HeatIndex:          {-20, 70},
	records.Humidex:            {-20, 70},
	records.WindChill:          {-60, 20},
	records.Humidity:           {0, 100},
	records.HumidityRef:        {0, 100},
	records.Pressure:           {960, 1080},
	records.WindStrength:       {0, 200},
	records.GustStrength:       {0, 250},
	records.WindStrengthMax:    {0, 250},
	records.WindRef:            {0, 200},
	records.WindAngle:          {0, 360},
	records.GustAngle:          {0, 360},
	records.WindAngleMax:       {0, 360},
	records.Rain:               {0, 50},
	records.RainHourAggregated: {0, 50},
	records.RainDayAggregated:  {0, 300},
	records.Snow:               {0, 100},
	records.CO2:                {0, 5000},
	records.Noise:              {0, 130},
	records.Ozone:              {0, 500},
	records.CO:                 {0, 50},
	records.Cloudiness:         {0, 100},
	records.CloudCeiling:       {0, 12000},
	records.LocAltitude:        {-100, 9000},
	records.Battery:            {0, 100},
	records.Signal:             {0, 100},
	records.MoonIllumination:   {0, 100},
	records.MoonPhase:          {0, 1},
	records.MoonAge:            {0, 30},
}

// PlausibleRange returns the render bounds for a measure. The second return
// is false for unbounded or non-numeric measures.
func PlausibleRange(m records.MeasureType) (Range, bool) {
	r, ok := plausibleRanges[m]
	return r, ok
}
