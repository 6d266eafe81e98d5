package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend-velotrack/internal/bike"
	"backend-velotrack/internal/db"
	"backend-velotrack/internal/run"
	"backend-velotrack/internal/shared/units"

	"github.com/jackc/pgx/v5"
)

// Publisher is the narrow fan-out surface the pipeline needs; *stream.Hub
// satisfies it, and tests substitute an in-memory fake.
type Publisher interface {
	Broadcast(topic string, payload []byte)
}

type Service struct {
	db     db.Querier
	bikes  *bike.Service
	runs   *run.Service
	pub    Publisher
	limits Limits
}

func NewService(db db.Querier, bikes *bike.Service, runs *run.Service, pub Publisher, limits Limits) *Service {
	if limits.MinIntervalUs == 0 && limits.MaxSpeedKmh == 0 {
		limits = DefaultLimits()
	}
	return &Service{db: db, bikes: bikes, runs: runs, pub: pub, limits: limits}
}

type pendingRow struct {
	runID      string
	bikeID     string
	intervalUs *int64
	recordedAt time.Time
}

// ProcessBatch ingests one batch of raw readings on behalf of ownerID.
// Elements are handled independently: an unknown bike or an implausible
// sample is logged and skipped without failing the rest of the batch. All
// accepted rows go to the database in a single multi-row insert, and live
// speed events are published only after that insert succeeds. An empty or
// fully-rejected batch returns {Inserted: 0} with no error.
func (s *Service) ProcessBatch(ctx context.Context, ownerID string, batch []RawReading) (BatchResult, error) {
	bikeCache := map[string]bike.Bike{}
	runCache := map[string]string{}

	var (
		rows   []pendingRow
		events []SpeedUpdate
	)

	for _, raw := range batch {
		if raw.BikeID == "" {
			log.Printf("telemetry: reading without bike_id, skipping")
			continue
		}

		b, ok := bikeCache[raw.BikeID]
		if !ok {
			var err error
			b, err = s.bikes.GetBike(ctx, raw.BikeID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					log.Printf("telemetry: unknown bike %q, skipping", raw.BikeID)
					continue
				}
				return BatchResult{}, err
			}
			bikeCache[raw.BikeID] = b
		}

		runID, err := s.resolveRun(ctx, raw, ownerID, runCache)
		if err != nil {
			return BatchResult{}, err
		}

		recordedAt := time.Now()
		if raw.Timestamp != nil {
			if ts, err := time.Parse(time.RFC3339, *raw.Timestamp); err == nil {
				recordedAt = ts
			}
		}

		// interval 0 encodes "no rotation"; store it as NULL so the
		// aggregator's positive-interval filters stay trivial.
		intervalUs := raw.IntervalUs
		if intervalUs != nil && *intervalUs <= 0 {
			intervalUs = nil
		}

		var (
			speedKmh float64
			hasSpeed bool
		)
		if intervalUs != nil {
			speedKmh, hasSpeed = units.SpeedKmh(b.WheelCircumferenceM, *intervalUs)
		}
		if !s.limits.Check(intervalUs, speedKmh, hasSpeed) {
			log.Printf("telemetry: implausible reading for bike %q (speed=%.1f km/h), skipping", raw.BikeID, speedKmh)
			continue
		}

		rows = append(rows, pendingRow{
			runID:      runID,
			bikeID:     raw.BikeID,
			intervalUs: intervalUs,
			recordedAt: recordedAt,
		})
		if hasSpeed {
			events = append(events, SpeedUpdate{BikeID: raw.BikeID, SpeedKmh: speedKmh, Timestamp: recordedAt})
		}
	}

	if len(rows) == 0 {
		return BatchResult{Inserted: 0}, nil
	}

	if err := s.insertRows(ctx, rows); err != nil {
		return BatchResult{}, err
	}

	if s.pub != nil {
		for _, ev := range events {
			payload, _ := json.Marshal(ev)
			s.pub.Broadcast(ev.BikeID, payload)
		}
	}

	return BatchResult{Inserted: len(rows)}, nil
}

func (s *Service) resolveRun(ctx context.Context, raw RawReading, ownerID string, cache map[string]string) (string, error) {
	if raw.RunID != nil && *raw.RunID != "" {
		return *raw.RunID, nil
	}
	if id, ok := cache[raw.BikeID]; ok {
		return id, nil
	}
	active, err := s.runs.GetOrCreateActive(ctx, raw.BikeID, ownerID)
	if err != nil {
		return "", err
	}
	cache[raw.BikeID] = active.ID
	return active.ID, nil
}

func (s *Service) insertRows(ctx context.Context, rows []pendingRow) error {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("INSERT INTO readings (run_id, bike_id, interval_us, recorded_at) VALUES ")
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4)
		args = append(args, row.runID, row.bikeID, row.intervalUs, row.recordedAt)
	}
	_, err := s.db.Exec(ctx, sb.String(), args...)
	return err
}
