package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "trip_id", "seat_count", "amount",
		"status", "reservation_no", "created_at", "paid_at",
	})
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db, zap.NewNop())

	reservation := models.NewReservation(1, 7, 2, 13000)

	mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs(reservation.UserID, reservation.TripID, reservation.SeatCount,
			reservation.Amount, reservation.Status, reservation.ReservationNo,
			reservation.CreatedAt, reservation.PaidAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(500)))

	require.NoError(t, repo.Create(context.Background(), reservation))
	assert.Equal(t, int64(500), reservation.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetByNumber(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db, zap.NewNop())

		created := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .+ FROM reservations WHERE reservation_no = \$1`).
			WithArgs("RES-1A2B3C4D5E6F").
			WillReturnRows(reservationRows().AddRow(
				int64(500), int64(1), int64(7), 2, 13000.0,
				string(models.ReservationStatusConfirmed), "RES-1A2B3C4D5E6F", created, created,
			))

		reservation, err := repo.GetByNumber(context.Background(), "RES-1A2B3C4D5E6F")
		require.NoError(t, err)
		assert.Equal(t, int64(500), reservation.ID)
		assert.Equal(t, models.ReservationStatusConfirmed, reservation.Status)
		require.NotNil(t, reservation.PaidAt)
	})

	t.Run("unknown number maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db, zap.NewNop())

		mock.ExpectQuery(`SELECT .+ FROM reservations WHERE reservation_no = \$1`).
			WithArgs("RES-UNKNOWN").
			WillReturnRows(reservationRows())

		_, err := repo.GetByNumber(context.Background(), "RES-UNKNOWN")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestReservationRepository_SumReservedSeats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db, zap.NewNop())

	statuses := []models.ReservationStatus{
		models.ReservationStatusPending,
		models.ReservationStatusConfirmed,
	}

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seat_count\), 0\)`).
		WithArgs(int64(7), pq.Array([]string{"PENDING", "CONFIRMED"})).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(12))

	sum, err := repo.SumReservedSeats(context.Background(), 7, statuses)
	require.NoError(t, err)
	assert.Equal(t, 12, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Save(t *testing.T) {
	t.Run("updates mutable fields", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db, zap.NewNop())

		paidAt := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)
		reservation := models.NewReservation(1, 7, 2, 13000)
		reservation.ID = 500
		reservation.Status = models.ReservationStatusConfirmed
		reservation.PaidAt = &paidAt

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(reservation.ID, reservation.SeatCount, reservation.Amount,
				reservation.Status, reservation.PaidAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(context.Background(), reservation))
	})

	t.Run("zero rows affected maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db, zap.NewNop())

		reservation := models.NewReservation(1, 7, 2, 13000)
		reservation.ID = 99

		mock.ExpectExec(`UPDATE reservations`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), reservation)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
