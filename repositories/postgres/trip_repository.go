package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

const tripColumns = `id, origin, destination, depart_at, arrive_at, bus_id, driver_id, status, price, seats_booked`

// TripRepository implements the repositories.TripRepository interface
type TripRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *DB, logger *zap.Logger) repositories.TripRepository {
	return &TripRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new trip and assigns its ID
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (origin, destination, depart_at, arrive_at, bus_id, driver_id, status, price, seats_booked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		trip.Origin,
		trip.Destination,
		trip.DepartAt,
		trip.ArriveAt,
		trip.BusID,
		trip.DriverID,
		trip.Status,
		trip.Price,
		trip.SeatsBooked,
	).Scan(&trip.ID)

	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	r.logger.Debug("trip created",
		zap.Int64("id", trip.ID),
		zap.String("origin", trip.Origin),
		zap.String("destination", trip.Destination))
	return nil
}

func (r *TripRepository) scanTrip(row *sql.Row) (*models.Trip, error) {
	trip := &models.Trip{}
	err := row.Scan(
		&trip.ID,
		&trip.Origin,
		&trip.Destination,
		&trip.DepartAt,
		&trip.ArriveAt,
		&trip.BusID,
		&trip.DriverID,
		&trip.Status,
		&trip.Price,
		&trip.SeatsBooked,
	)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	trip, err := r.scanTrip(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return trip, nil
}

// GetByIDForUpdate retrieves a trip by ID holding a row lock
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE NOWAIT`

	executor := GetExecutor(ctx, r.db)
	trip, err := r.scanTrip(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock trip: %w", err)
	}

	return trip, nil
}

// List retrieves all trips
func (r *TripRepository) List(ctx context.Context) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY depart_at DESC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		err := rows.Scan(
			&trip.ID,
			&trip.Origin,
			&trip.Destination,
			&trip.DepartAt,
			&trip.ArriveAt,
			&trip.BusID,
			&trip.DriverID,
			&trip.Status,
			&trip.Price,
			&trip.SeatsBooked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trip rows: %w", err)
	}

	return trips, nil
}

// CountArrivingWithin counts the trips arriving at an agency in the [from, to] window.
// Cancelled trips do not occupy an arrival slot.
func (r *TripRepository) CountArrivingWithin(ctx context.Context, agency string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM trips
		WHERE destination = $1
		  AND arrive_at BETWEEN $2 AND $3
		  AND status <> $4
	`

	executor := GetExecutor(ctx, r.db)

	var count int
	err := executor.QueryRowContext(ctx, query, agency, from, to, models.TripStatusCancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count arriving trips: %w", err)
	}
	return count, nil
}

// Count returns the total number of trips
func (r *TripRepository) Count(ctx context.Context) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of trips in the given status
func (r *TripRepository) CountByStatus(ctx context.Context, status models.TripStatus) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trips by status: %w", err)
	}
	return count, nil
}

// Save updates a trip by ID
func (r *TripRepository) Save(ctx context.Context, trip *models.Trip) error {
	query := `
		UPDATE trips
		SET origin = $2,
		    destination = $3,
		    depart_at = $4,
		    arrive_at = $5,
		    bus_id = $6,
		    driver_id = $7,
		    status = $8,
		    price = $9,
		    seats_booked = $10
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		trip.ID,
		trip.Origin,
		trip.Destination,
		trip.DepartAt,
		trip.ArriveAt,
		trip.BusID,
		trip.DriverID,
		trip.Status,
		trip.Price,
		trip.SeatsBooked,
	)

	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("trip %d: %w", trip.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("trip updated", zap.Int64("id", trip.ID), zap.String("status", string(trip.Status)))
	return nil
}
