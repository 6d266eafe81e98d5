package run

import (
	"context"
	"errors"
	"time"

	"backend-velotrack/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRunConflict is returned by an explicit Create when the bike already has
// an active run.
var ErrRunConflict = errors.New("bike already has an active run")

// Service is the single authority on the bike -> active run mapping. The
// runs table carries a partial unique index on (bike_id) WHERE
// status='active'; every code path that could race relies on that index,
// treating a unique violation as "someone else won, re-read".
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetOrCreateActive returns the bike's active run, creating one if none
// exists. Safe under concurrent invocation: a lost insert race falls back to
// reading the winner's row.
func (s *Service) GetOrCreateActive(ctx context.Context, bikeID, ownerID string) (Run, error) {
	r, err := s.activeByBike(ctx, bikeID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Run{}, err
	}

	created, err := s.insertActive(ctx, Run{
		ID:        uuid.NewString(),
		BikeID:    bikeID,
		OwnerID:   ownerID,
		StartedAt: time.Now(),
	})
	if err == nil {
		return created, nil
	}
	if isUniqueViolation(err) {
		return s.activeByBike(ctx, bikeID)
	}
	return Run{}, err
}

// Create starts a run explicitly (human-initiated session). Fails with
// ErrRunConflict when the bike already has an active run.
func (s *Service) Create(ctx context.Context, input Run) (Run, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}
	created, err := s.insertActive(ctx, input)
	if err != nil {
		if isUniqueViolation(err) {
			return Run{}, ErrRunConflict
		}
		return Run{}, err
	}
	return created, nil
}

// StopByID completes the named run iff it is active and owned by ownerID.
// Idempotent: stopping a completed run reports false, never an error.
func (s *Service) StopByID(ctx context.Context, runID, ownerID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE runs
		SET status=$3, ended_at=NOW()
		WHERE id=$1 AND owner_id=$2 AND status=$4
	`, runID, ownerID, StatusCompleted, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// StopActiveByBike completes the bike's active run owned by ownerID and
// returns it, or nil when no run was active.
func (s *Service) StopActiveByBike(ctx context.Context, bikeID, ownerID string) (*Run, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE runs
		SET status=$3, ended_at=NOW()
		WHERE bike_id=$1 AND owner_id=$2 AND status=$4
		RETURNING id, bike_id, owner_id, COALESCE(name,''), status, started_at, ended_at
	`, bikeID, ownerID, StatusCompleted, StatusActive)

	var r Run
	if err := row.Scan(&r.ID, &r.BikeID, &r.OwnerID, &r.Name, &r.Status, &r.StartedAt, &r.EndedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) Get(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, bike_id, owner_id, COALESCE(name,''), status, started_at, ended_at
		FROM runs WHERE id=$1
	`, runID)
	var r Run
	if err := row.Scan(&r.ID, &r.BikeID, &r.OwnerID, &r.Name, &r.Status, &r.StartedAt, &r.EndedAt); err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *Service) RunsByBike(ctx context.Context, bikeID string) ([]Run, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, bike_id, owner_id, COALESCE(name,''), status, started_at, ended_at
		FROM runs WHERE bike_id=$1
		ORDER BY started_at DESC
	`, bikeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.BikeID, &r.OwnerID, &r.Name, &r.Status, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

func (s *Service) activeByBike(ctx context.Context, bikeID string) (Run, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, bike_id, owner_id, COALESCE(name,''), status, started_at, ended_at
		FROM runs WHERE bike_id=$1 AND status=$2
	`, bikeID, StatusActive)
	var r Run
	if err := row.Scan(&r.ID, &r.BikeID, &r.OwnerID, &r.Name, &r.Status, &r.StartedAt, &r.EndedAt); err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *Service) insertActive(ctx context.Context, input Run) (Run, error) {
	input.Status = StatusActive
	row := s.db.QueryRow(ctx, `
		INSERT INTO runs (id, bike_id, owner_id, name, status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING started_at
	`, input.ID, input.BikeID, input.OwnerID, nullable(input.Name), input.Status, input.StartedAt)
	if err := row.Scan(&input.StartedAt); err != nil {
		return Run{}, err
	}
	return input, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
