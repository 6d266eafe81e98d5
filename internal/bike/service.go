package bike

import (
	"context"
	"errors"

	"backend-velotrack/internal/db"

	"github.com/google/uuid"
)

var ErrInvalidCircumference = errors.New("wheel circumference must be positive")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateBike(ctx context.Context, input Bike) (Bike, error) {
	if input.WheelCircumferenceM <= 0 {
		return Bike{}, ErrInvalidCircumference
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO bikes (id, name, wheel_circumference_m, owner_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, input.ID, input.Name, input.WheelCircumferenceM, input.OwnerID)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Bike{}, err
	}
	return input, nil
}

func (s *Service) GetBike(ctx context.Context, id string) (Bike, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, wheel_circumference_m, owner_id, created_at
		FROM bikes WHERE id=$1
	`, id)
	var b Bike
	if err := row.Scan(&b.ID, &b.Name, &b.WheelCircumferenceM, &b.OwnerID, &b.CreatedAt); err != nil {
		return Bike{}, err
	}
	return b, nil
}

func (s *Service) UpdateBike(ctx context.Context, id string, patch Bike) (Bike, error) {
	b, err := s.GetBike(ctx, id)
	if err != nil {
		return Bike{}, err
	}
	if patch.Name != "" {
		b.Name = patch.Name
	}
	if patch.WheelCircumferenceM != 0 {
		if patch.WheelCircumferenceM < 0 {
			return Bike{}, ErrInvalidCircumference
		}
		b.WheelCircumferenceM = patch.WheelCircumferenceM
	}

	_, err = s.db.Exec(ctx, `
		UPDATE bikes
		SET name=$2, wheel_circumference_m=$3
		WHERE id=$1
	`, b.ID, b.Name, b.WheelCircumferenceM)
	if err != nil {
		return Bike{}, err
	}
	return b, nil
}

func (s *Service) DeleteBike(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM bikes WHERE id=$1`, id)
	return err
}

func (s *Service) BikesByOwner(ctx context.Context, ownerID string) ([]Bike, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, wheel_circumference_m, owner_id, created_at
		FROM bikes WHERE owner_id=$1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bikes []Bike
	for rows.Next() {
		var b Bike
		if err := rows.Scan(&b.ID, &b.Name, &b.WheelCircumferenceM, &b.OwnerID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bikes = append(bikes, b)
	}
	return bikes, nil
}
