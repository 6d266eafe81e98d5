package metrics

import (
	"context"
	"errors"

	"backend-velotrack/internal/db"
	"backend-velotrack/internal/shared/units"

	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound distinguishes "no such run for this owner" from a run that
// exists but has no data yet.
var ErrRunNotFound = errors.New("run not found")

// Service answers all aggregate reads. Every call recomputes from the
// committed rows at call time; nothing is cached, so late or out-of-order
// arrivals are picked up on the next poll.
type Service struct {
	db     db.Querier
	window int
}

func NewService(db db.Querier, window int) *Service {
	if window <= 0 {
		window = 10
	}
	return &Service{db: db, window: window}
}

// LastReading returns the run's most recent reading (timestamp order,
// insert order as tiebreak), nil when the run has none.
func (s *Service) LastReading(ctx context.Context, runID string) (*Reading, error) {
	row := s.db.QueryRow(ctx, `
		SELECT r.id, r.run_id, r.bike_id, r.interval_us, r.recorded_at, b.wheel_circumference_m
		FROM readings r
		JOIN bikes b ON b.id = r.bike_id
		WHERE r.run_id=$1
		ORDER BY r.recorded_at DESC, r.id DESC
		LIMIT 1
	`, runID)

	var (
		reading       Reading
		circumference float64
	)
	if err := row.Scan(&reading.ID, &reading.RunID, &reading.BikeID, &reading.IntervalUs, &reading.RecordedAt, &circumference); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if reading.IntervalUs != nil {
		if v, ok := units.SpeedKmh(circumference, *reading.IntervalUs); ok {
			reading.SpeedKmh = &v
		}
	}
	return &reading, nil
}

// AverageLastN computes the rolling average over the n most recent samples
// with a positive interval. Fewer than n samples uses what exists; zero
// qualifying samples yields a nil average.
func (s *Service) AverageLastN(ctx context.Context, runID string, n int) (Window, error) {
	if n <= 0 {
		n = s.window
	}
	rows, err := s.db.Query(ctx, `
		SELECT r.interval_us, b.wheel_circumference_m
		FROM readings r
		JOIN bikes b ON b.id = r.bike_id
		WHERE r.run_id=$1 AND r.interval_us > 0
		ORDER BY r.recorded_at DESC, r.id DESC
		LIMIT $2
	`, runID, n)
	if err != nil {
		return Window{}, err
	}
	defer rows.Close()

	var (
		intervals     []int64
		circumference float64
	)
	for rows.Next() {
		var iv int64
		if err := rows.Scan(&iv, &circumference); err != nil {
			return Window{}, err
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return Window{}, err
	}

	w := Window{CountUsed: len(intervals)}
	if v, ok := units.AverageKmh(circumference, intervals); ok {
		w.AvgKmh = &v
	}
	return w, nil
}

// ownedRun resolves a run scoped to its owner. Every metrics read goes
// through this first, so a foreign or nonexistent run is ErrRunNotFound
// rather than an empty result.
func (s *Service) ownedRun(ctx context.Context, runID, ownerID string) (string, float64, error) {
	var (
		bikeID        string
		circumference float64
	)
	err := s.db.QueryRow(ctx, `
		SELECT r.bike_id, b.wheel_circumference_m
		FROM runs r
		JOIN bikes b ON b.id = r.bike_id
		WHERE r.id=$1 AND r.owner_id=$2
	`, runID, ownerID).Scan(&bikeID, &circumference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, ErrRunNotFound
		}
		return "", 0, err
	}
	return bikeID, circumference, nil
}

// ForRun assembles the full metrics view for an owned run. A run that does
// not exist or belongs to someone else is ErrRunNotFound; a run with no
// readings yet reports zero counts and nil averages.
func (s *Service) ForRun(ctx context.Context, runID, ownerID string) (RunMetrics, error) {
	_, circumference, err := s.ownedRun(ctx, runID, ownerID)
	if err != nil {
		return RunMetrics{}, err
	}

	var (
		total int
		valid int64
		sumUs int64
		minUs *int64
	)
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE interval_us > 0),
		       COALESCE(SUM(interval_us) FILTER (WHERE interval_us > 0), 0),
		       MIN(interval_us) FILTER (WHERE interval_us > 0)
		FROM readings WHERE run_id=$1
	`, runID).Scan(&total, &valid, &sumUs, &minUs)
	if err != nil {
		return RunMetrics{}, err
	}

	m := RunMetrics{
		RunID:         runID,
		ReadingsCount: total,
		DistanceM:     units.DistanceM(valid, circumference),
		DurationS:     float64(sumUs) / 1e6,
	}
	if v, ok := units.AggregateKmh(circumference, valid, sumUs); ok {
		m.AvgKmh = &v
	}
	if minUs != nil {
		// shortest rotation time = highest speed
		if v, ok := units.SpeedKmh(circumference, *minUs); ok {
			m.MaxKmh = &v
		}
	}

	if m.Last, err = s.LastReading(ctx, runID); err != nil {
		return RunMetrics{}, err
	}
	if m.AvgLastN, err = s.AverageLastN(ctx, runID, s.window); err != nil {
		return RunMetrics{}, err
	}
	return m, nil
}

// Live resolves the owned bike's active run and returns its last reading
// plus the default rolling window; nil when no run is active.
func (s *Service) Live(ctx context.Context, bikeID, ownerID string) (*LiveView, error) {
	var runID string
	err := s.db.QueryRow(ctx, `
		SELECT r.id
		FROM runs r
		JOIN bikes b ON b.id = r.bike_id
		WHERE r.bike_id=$1 AND b.owner_id=$2 AND r.status='active'
	`, bikeID, ownerID).Scan(&runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	view := LiveView{RunID: runID}
	if view.Last, err = s.LastReading(ctx, runID); err != nil {
		return nil, err
	}
	if view.AvgLastN, err = s.AverageLastN(ctx, runID, s.window); err != nil {
		return nil, err
	}
	return &view, nil
}
