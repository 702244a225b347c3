package ephemeris

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhub/stationhub/internal/records"
)

func TestMoonPhaseKnownDates(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		want float64
		tol  float64
	}{
		// Reference epoch is itself a new moon.
		{"epoch new moon", time.Unix(947182440, 0).UTC(), 0, 0.01},
		// 2024-04-23 23:49 UTC was a full moon.
		{"april 2024 full moon", time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC), 0.5, 0.02},
		// 2024-04-08 18:21 UTC was a new moon (total eclipse day).
		{"april 2024 new moon", time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC), 0, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoonPhase(tt.when)
			// Distance on the phase circle, accounting for wrap at 0/1.
			diff := math.Abs(got - tt.want)
			if diff > 0.5 {
				diff = 1 - diff
			}
			assert.LessOrEqual(t, diff, tt.tol, "MoonPhase(%s) = %v, want %v", tt.when, got, tt.want)
		})
	}
}

func TestMoonIlluminationBounds(t *testing.T) {
	for d := 0; d < 30; d++ {
		when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		ill := MoonIllumination(when)
		assert.GreaterOrEqual(t, ill, 0.0, "on %s", when)
		assert.LessOrEqual(t, ill, 100.0, "on %s", when)
	}
}

func TestMoonAgeWithinSynodicMonth(t *testing.T) {
	age := MoonAge(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.GreaterOrEqual(t, age, 0.0)
	assert.Less(t, age, synodicMonth)
}

func TestDistancesNearMeans(t *testing.T) {
	when := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	moon := MoonDistance(when)
	assert.InDelta(t, 381500, moon, 25500, "moon distance outside perigee/apogee bounds")

	sun := SunDistance(when)
	assert.GreaterOrEqual(t, sun, 147000000.0)
	assert.LessOrEqual(t, sun, 152200000.0)
	// Early February: Earth is near perihelion, so below the mean.
	assert.Less(t, sun, meanSunDistanceKm)
}

func TestComputeProducesEphemerisModule(t *testing.T) {
	recs := Compute("dev42", time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC))
	require.NotEmpty(t, recs)

	seen := map[records.MeasureType]bool{}
	for _, r := range recs {
		assert.Equal(t, records.ModuleEphemeris, r.ModuleType, "measure %s", r.Type)
		assert.Equal(t, "dev42:eph", r.ModuleID, "measure %s", r.Type)
		seen[r.Type] = true
	}
	for _, m := range []records.MeasureType{
		records.MoonPhase, records.MoonAge, records.MoonIllumination,
		records.MoonDistance, records.MoonDiameter,
		records.SunDistance, records.SunDiameter,
	} {
		assert.True(t, seen[m], "missing ephemeris measure %s", m)
	}
}
