package providers

import (
	"context"
	"time"

	"github.com/stationhub/stationhub/internal/records"
)

// Batch is one provider cycle's output: canonical records plus the
// station-info rows that must exist for them to be discoverable.
type Batch struct {
	Records  []records.Record
	Stations []records.StationInfo
}

// Provider abstracts one weather data source. Collect fetches the raw
// payload, normalizes it and returns the cycle batch; an error means the
// whole cycle yielded nothing for this provider.
type Provider interface {
	Name() string
	Collect(ctx context.Context, now time.Time) (Batch, error)
}

// StationRef identifies a station the current-conditions provider polls for:
// the canonical device id plus the coordinates the provider is queried with.
type StationRef struct {
	DeviceID  string
	Name      string
	Latitude  float64
	Longitude float64
}
