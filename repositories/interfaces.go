package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/voyagecm/policy-api/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
// The policy engine maps it to an immediate DENY, never to a hard failure.
var ErrNotFound = errors.New("not found")

// TransactionManager manages database transactions. Each policy evaluation
// runs as one unit of work so the read-then-write sequence is atomic.
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// BusRepository handles bus data operations
type BusRepository interface {
	// Create inserts a new bus and assigns its ID
	Create(ctx context.Context, bus *models.Bus) error

	// GetByID retrieves a bus by ID
	GetByID(ctx context.Context, id int64) (*models.Bus, error)

	// GetByIDForUpdate retrieves a bus by ID holding a row lock for the
	// duration of the surrounding transaction. Fails fast when the row is
	// locked by a concurrent evaluation.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bus, error)

	// GetByRegistration retrieves a bus by its registration plate
	GetByRegistration(ctx context.Context, registration string) (*models.Bus, error)

	// List retrieves all buses
	List(ctx context.Context) ([]*models.Bus, error)

	// ListByAgency retrieves the buses stationed at an agency
	ListByAgency(ctx context.Context, agency string) ([]*models.Bus, error)

	// Count returns the total number of buses
	Count(ctx context.Context) (int, error)

	// CountByStatus returns the number of buses in the given status
	CountByStatus(ctx context.Context, status models.BusStatus) (int, error)

	// Save upserts a bus by ID
	Save(ctx context.Context, bus *models.Bus) error
}

// DriverRepository handles driver data operations
type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Driver, error)
	List(ctx context.Context) ([]*models.Driver, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.DriverStatus) (int, error)
	Save(ctx context.Context, driver *models.Driver) error
}

// TripRepository handles trip data operations
type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Trip, error)
	List(ctx context.Context) ([]*models.Trip, error)

	// CountArrivingWithin counts the trips arriving at an agency in the
	// [from, to] window. Backs the destination-slot predicates.
	CountArrivingWithin(ctx context.Context, agency string, from, to time.Time) (int, error)

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.TripStatus) (int, error)
	Save(ctx context.Context, trip *models.Trip) error
}

// UserRepository handles customer data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	CountByClientType(ctx context.Context, clientType models.ClientType) (int, error)
	Save(ctx context.Context, user *models.User) error
}

// ReservationRepository handles reservation data operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	GetByNumber(ctx context.Context, reservationNo string) (*models.Reservation, error)
	List(ctx context.Context) ([]*models.Reservation, error)
	ListByTrip(ctx context.Context, tripID int64) ([]*models.Reservation, error)

	// SumReservedSeats sums seat_count over a trip's reservations in the
	// given statuses. Backs the seats-available predicate.
	SumReservedSeats(ctx context.Context, tripID int64, statuses []models.ReservationStatus) (int, error)

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.ReservationStatus) (int, error)
	Save(ctx context.Context, reservation *models.Reservation) error
}

// DecisionLogRepository records policy decisions for audit
type DecisionLogRepository interface {
	Insert(ctx context.Context, log *models.DecisionLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.DecisionLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Buses        BusRepository
	Drivers      DriverRepository
	Trips        TripRepository
	Users        UserRepository
	Reservations ReservationRepository
	DecisionLogs DecisionLogRepository
}
