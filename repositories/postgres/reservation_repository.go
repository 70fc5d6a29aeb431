package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

const reservationColumns = `id, user_id, trip_id, seat_count, amount, status, reservation_no, created_at, paid_at`

// ReservationRepository implements the repositories.ReservationRepository interface
type ReservationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *DB, logger *zap.Logger) repositories.ReservationRepository {
	return &ReservationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new reservation and assigns its ID
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	query := `
		INSERT INTO reservations (user_id, trip_id, seat_count, amount, status, reservation_no, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		reservation.UserID,
		reservation.TripID,
		reservation.SeatCount,
		reservation.Amount,
		reservation.Status,
		reservation.ReservationNo,
		reservation.CreatedAt,
		reservation.PaidAt,
	).Scan(&reservation.ID)

	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	r.logger.Debug("reservation created",
		zap.Int64("id", reservation.ID),
		zap.String("reservation_no", reservation.ReservationNo))
	return nil
}

func (r *ReservationRepository) scanReservation(row *sql.Row) (*models.Reservation, error) {
	reservation := &models.Reservation{}
	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.TripID,
		&reservation.SeatCount,
		&reservation.Amount,
		&reservation.Status,
		&reservation.ReservationNo,
		&reservation.CreatedAt,
		&reservation.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// GetByID retrieves a reservation by ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	reservation, err := r.scanReservation(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reservation %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return reservation, nil
}

// GetByNumber retrieves a reservation by its booking reference
func (r *ReservationRepository) GetByNumber(ctx context.Context, reservationNo string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_no = $1`

	executor := GetExecutor(ctx, r.db)
	reservation, err := r.scanReservation(executor.QueryRowContext(ctx, query, reservationNo))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reservation %s: %w", reservationNo, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return reservation, nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]*models.Reservation, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		reservation := &models.Reservation{}
		err := rows.Scan(
			&reservation.ID,
			&reservation.UserID,
			&reservation.TripID,
			&reservation.SeatCount,
			&reservation.Amount,
			&reservation.Status,
			&reservation.ReservationNo,
			&reservation.CreatedAt,
			&reservation.PaidAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation rows: %w", err)
	}

	return reservations, nil
}

// List retrieves all reservations
func (r *ReservationRepository) List(ctx context.Context) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC`
	return r.queryReservations(ctx, query)
}

// ListByTrip retrieves the reservations for a trip
func (r *ReservationRepository) ListByTrip(ctx context.Context, tripID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE trip_id = $1 ORDER BY created_at DESC`
	return r.queryReservations(ctx, query, tripID)
}

// SumReservedSeats sums seat_count over a trip's reservations in the given statuses
func (r *ReservationRepository) SumReservedSeats(ctx context.Context, tripID int64, statuses []models.ReservationStatus) (int, error) {
	query := `
		SELECT COALESCE(SUM(seat_count), 0)
		FROM reservations
		WHERE trip_id = $1
		  AND status = ANY($2)
	`

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	executor := GetExecutor(ctx, r.db)

	var sum int
	err := executor.QueryRowContext(ctx, query, tripID, pq.Array(values)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reserved seats: %w", err)
	}
	return sum, nil
}

// Count returns the total number of reservations
func (r *ReservationRepository) Count(ctx context.Context) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of reservations in the given status
func (r *ReservationRepository) CountByStatus(ctx context.Context, status models.ReservationStatus) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reservations by status: %w", err)
	}
	return count, nil
}

// Save updates a reservation by ID
func (r *ReservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	query := `
		UPDATE reservations
		SET seat_count = $2,
		    amount = $3,
		    status = $4,
		    paid_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		reservation.ID,
		reservation.SeatCount,
		reservation.Amount,
		reservation.Status,
		reservation.PaidAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", reservation.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("reservation updated",
		zap.Int64("id", reservation.ID),
		zap.String("status", string(reservation.Status)))
	return nil
}
