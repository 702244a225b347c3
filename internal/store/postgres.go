package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/metrics"
	"github.com/stationhub/stationhub/internal/records"
)

// Postgres is the pgx-backed canonical store.
type Postgres struct {
	pool *pgxpool.Pool
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS measurements (
    device_id         VARCHAR(17)  NOT NULL,
    module_id         VARCHAR(64)  NOT NULL,
    module_type       VARCHAR(32)  NOT NULL,
    module_name       TEXT         NOT NULL DEFAULT '',
    measure_type      VARCHAR(64)  NOT NULL,
    measure_value     TEXT         NOT NULL,
    measure_timestamp TIMESTAMPTZ  NOT NULL,
    PRIMARY KEY (device_id, module_id, measure_type)
);
CREATE INDEX IF NOT EXISTS idx_measurements_device ON measurements (device_id, module_type);

CREATE TABLE IF NOT EXISTS stations (
    station_id   VARCHAR(17) PRIMARY KEY,
    station_name TEXT        NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const upsertSQL = `
INSERT INTO measurements (device_id, module_id, module_type, module_name, measure_type, measure_value, measure_timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (device_id, module_id, measure_type) DO UPDATE
SET module_type       = EXCLUDED.module_type,
    module_name       = EXCLUDED.module_name,
    measure_value     = EXCLUDED.measure_value,
    measure_timestamp = EXCLUDED.measure_timestamp`

const scanSQL = `
SELECT device_id, module_id, module_type, module_name, measure_type, measure_value, measure_timestamp
FROM measurements
WHERE device_id = $1`

const ensureStationSQL = `
INSERT INTO stations (station_id, station_name)
VALUES ($1, $2)
ON CONFLICT (station_id) DO NOTHING`

// NewPostgres connects a pool and initializes the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Upsert replaces the current value of one measured quantity.
func (s *Postgres) Upsert(ctx context.Context, rec records.Record) error {
	start := time.Now()
	_, err := s.pool.Exec(ctx, upsertSQL,
		rec.DeviceID, rec.ModuleID, string(rec.ModuleType), rec.ModuleName,
		string(rec.Type), rec.Value, rec.Timestamp)
	metrics.RecordStoreQuery("upsert", "measurements", time.Since(start), err)
	return err
}

// UpsertBatch replaces a set of quantities in a single round trip.
func (s *Postgres) UpsertBatch(ctx context.Context, recs []records.Record) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(upsertSQL,
			rec.DeviceID, rec.ModuleID, string(rec.ModuleType), rec.ModuleName,
			string(rec.Type), rec.Value, rec.Timestamp)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	var err error
	for range recs {
		if _, execErr := res.Exec(); execErr != nil {
			err = execErr
			break
		}
	}
	metrics.RecordStoreQuery("upsert_batch", "measurements", time.Since(start), err)
	return err
}

// Scan returns the current records for a device, optionally restricted to a
// module-type set, ordered by module id.
func (s *Postgres) Scan(ctx context.Context, q Query) ([]records.Record, error) {
	query := scanSQL
	args := []any{q.DeviceID}
	if len(q.ModuleTypes) > 0 {
		types := make([]string, 0, len(q.ModuleTypes))
		for _, t := range q.ModuleTypes {
			types = append(types, string(t))
		}
		query += " AND module_type = ANY($2)"
		args = append(args, types)
	}
	query += " ORDER BY module_id, measure_type"

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	metrics.RecordStoreQuery("scan", "measurements", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		var r records.Record
		var moduleType, measureType string
		if err := rows.Scan(&r.DeviceID, &r.ModuleID, &moduleType, &r.ModuleName, &measureType, &r.Value, &r.Timestamp); err != nil {
			return nil, err
		}
		r.ModuleType = records.ModuleType(moduleType)
		r.Type = records.MeasureType(measureType)
		out = append(out, r)
	}
	return out, rows.Err()
}

// EnsureStation inserts the station-info row if absent.
func (s *Postgres) EnsureStation(ctx context.Context, info records.StationInfo) error {
	start := time.Now()
	_, err := s.pool.Exec(ctx, ensureStationSQL, info.StationID, info.StationName)
	metrics.RecordStoreQuery("ensure", "stations", time.Since(start), err)
	return err
}

// Station returns the station-info row, or ErrNotFound.
func (s *Postgres) Station(ctx context.Context, stationID string) (records.StationInfo, error) {
	var info records.StationInfo
	row := s.pool.QueryRow(ctx,
		`SELECT station_id, station_name FROM stations WHERE station_id = $1`, stationID)
	if err := row.Scan(&info.StationID, &info.StationName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.StationInfo{}, ErrNotFound
		}
		return records.StationInfo{}, err
	}
	return info, nil
}

// Stations lists every known station.
func (s *Postgres) Stations(ctx context.Context) ([]records.StationInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT station_id, station_name FROM stations ORDER BY station_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.StationInfo
	for rows.Next() {
		var info records.StationInfo
		if err := rows.Scan(&info.StationID, &info.StationName); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
