package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &DB{DB: mockDB, logger: zap.NewNop()}, mock
}

func tripRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "origin", "destination", "depart_at", "arrive_at",
		"bus_id", "driver_id", "status", "price", "seats_booked",
	})
}

func TestTripRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripRepository(db, zap.NewNop())

	depart := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	trip := models.NewTrip("Yaoundé Centre", "Douala Port", depart, depart.Add(4*time.Hour), 6500)

	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(trip.Origin, trip.Destination, trip.DepartAt, trip.ArriveAt,
			trip.BusID, trip.DriverID, trip.Status, trip.Price, trip.SeatsBooked).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	require.NoError(t, repo.Create(context.Background(), trip))
	assert.Equal(t, int64(7), trip.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripRepository(db, zap.NewNop())

		depart := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
		busID := int64(2)
		mock.ExpectQuery(`SELECT .+ FROM trips WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(tripRows().AddRow(
				int64(7), "Yaoundé Centre", "Douala Port", depart, depart.Add(4*time.Hour),
				busID, nil, string(models.TripStatusPlanned), 6500.0, 3,
			))

		trip, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Douala Port", trip.Destination)
		require.NotNil(t, trip.BusID)
		assert.Equal(t, int64(2), *trip.BusID)
		assert.Nil(t, trip.DriverID)
	})

	t.Run("missing trip maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripRepository(db, zap.NewNop())

		mock.ExpectQuery(`SELECT .+ FROM trips WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(tripRows())

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestTripRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripRepository(db, zap.NewNop())

	depart := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM trips WHERE id = \$1 FOR UPDATE NOWAIT`).
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(
			int64(7), "Yaoundé Centre", "Douala Port", depart, depart.Add(4*time.Hour),
			nil, nil, string(models.TripStatusPlanned), 6500.0, 0,
		))

	trip, err := repo.GetByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), trip.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_CountArrivingWithin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripRepository(db, zap.NewNop())

	from := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)

	// Cancelled trips are excluded from the window
	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM trips\s+WHERE destination = \$1`).
		WithArgs("Douala Port", from, to, string(models.TripStatusCancelled)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountArrivingWithin(context.Background(), "Douala Port", from, to)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_Save(t *testing.T) {
	t.Run("updates row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripRepository(db, zap.NewNop())

		depart := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
		trip := models.NewTrip("Yaoundé Centre", "Douala Port", depart, depart.Add(4*time.Hour), 6500)
		trip.ID = 7
		trip.Status = models.TripStatusInProgress

		mock.ExpectExec(`UPDATE trips`).
			WithArgs(trip.ID, trip.Origin, trip.Destination, trip.DepartAt, trip.ArriveAt,
				trip.BusID, trip.DriverID, trip.Status, trip.Price, trip.SeatsBooked).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(context.Background(), trip))
	})

	t.Run("zero rows affected maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripRepository(db, zap.NewNop())

		depart := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
		trip := models.NewTrip("Yaoundé Centre", "Douala Port", depart, depart.Add(4*time.Hour), 6500)
		trip.ID = 99

		mock.ExpectExec(`UPDATE trips`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), trip)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
