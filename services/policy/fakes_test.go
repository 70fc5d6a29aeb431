package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// fakeStore is an in-memory backing store shared by the fake repositories.
// Reads hand out copies so pending mutations only land through Save/Create,
// mirroring the transactional behavior of the real repositories.
type fakeStore struct {
	buses        map[int64]*models.Bus
	drivers      map[int64]*models.Driver
	trips        map[int64]*models.Trip
	users        map[int64]*models.User
	reservations map[int64]*models.Reservation

	nextTripID        int64
	nextReservationID int64

	// failOn maps a method name to an injected error
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buses:             make(map[int64]*models.Bus),
		drivers:           make(map[int64]*models.Driver),
		trips:             make(map[int64]*models.Trip),
		users:             make(map[int64]*models.User),
		reservations:      make(map[int64]*models.Reservation),
		nextTripID:        100,
		nextReservationID: 500,
		failOn:            make(map[string]error),
	}
}

func (s *fakeStore) fail(method string) error {
	return s.failOn[method]
}

func copyBus(b *models.Bus) *models.Bus                 { c := *b; return &c }
func copyDriver(d *models.Driver) *models.Driver        { c := *d; return &c }
func copyTrip(t *models.Trip) *models.Trip              { c := *t; return &c }
func copyUser(u *models.User) *models.User              { c := *u; return &c }
func copyRes(r *models.Reservation) *models.Reservation { c := *r; return &c }

type fakeBusRepo struct{ store *fakeStore }

func (r *fakeBusRepo) Create(_ context.Context, bus *models.Bus) error {
	r.store.buses[bus.ID] = copyBus(bus)
	return nil
}

func (r *fakeBusRepo) GetByID(_ context.Context, id int64) (*models.Bus, error) {
	if err := r.store.fail("bus.GetByID"); err != nil {
		return nil, err
	}
	bus, ok := r.store.buses[id]
	if !ok {
		return nil, fmt.Errorf("bus %d: %w", id, repositories.ErrNotFound)
	}
	return copyBus(bus), nil
}

func (r *fakeBusRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bus, error) {
	if err := r.store.fail("bus.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *fakeBusRepo) GetByRegistration(_ context.Context, registration string) (*models.Bus, error) {
	for _, bus := range r.store.buses {
		if bus.Registration == registration {
			return copyBus(bus), nil
		}
	}
	return nil, fmt.Errorf("bus %s: %w", registration, repositories.ErrNotFound)
}

func (r *fakeBusRepo) List(_ context.Context) ([]*models.Bus, error) { return nil, nil }
func (r *fakeBusRepo) ListByAgency(_ context.Context, _ string) ([]*models.Bus, error) {
	return nil, nil
}

func (r *fakeBusRepo) Count(_ context.Context) (int, error) {
	return len(r.store.buses), nil
}

func (r *fakeBusRepo) CountByStatus(_ context.Context, status models.BusStatus) (int, error) {
	n := 0
	for _, bus := range r.store.buses {
		if bus.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeBusRepo) Save(_ context.Context, bus *models.Bus) error {
	if err := r.store.fail("bus.Save"); err != nil {
		return err
	}
	if _, ok := r.store.buses[bus.ID]; !ok {
		return fmt.Errorf("bus %d: %w", bus.ID, repositories.ErrNotFound)
	}
	r.store.buses[bus.ID] = copyBus(bus)
	return nil
}

type fakeDriverRepo struct{ store *fakeStore }

func (r *fakeDriverRepo) Create(_ context.Context, driver *models.Driver) error {
	r.store.drivers[driver.ID] = copyDriver(driver)
	return nil
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id int64) (*models.Driver, error) {
	if err := r.store.fail("driver.GetByID"); err != nil {
		return nil, err
	}
	driver, ok := r.store.drivers[id]
	if !ok {
		return nil, fmt.Errorf("driver %d: %w", id, repositories.ErrNotFound)
	}
	return copyDriver(driver), nil
}

func (r *fakeDriverRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Driver, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeDriverRepo) List(_ context.Context) ([]*models.Driver, error) { return nil, nil }

func (r *fakeDriverRepo) Count(_ context.Context) (int, error) {
	return len(r.store.drivers), nil
}

func (r *fakeDriverRepo) CountByStatus(_ context.Context, status models.DriverStatus) (int, error) {
	n := 0
	for _, driver := range r.store.drivers {
		if driver.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeDriverRepo) Save(_ context.Context, driver *models.Driver) error {
	if _, ok := r.store.drivers[driver.ID]; !ok {
		return fmt.Errorf("driver %d: %w", driver.ID, repositories.ErrNotFound)
	}
	r.store.drivers[driver.ID] = copyDriver(driver)
	return nil
}

type fakeTripRepo struct{ store *fakeStore }

func (r *fakeTripRepo) Create(_ context.Context, trip *models.Trip) error {
	if err := r.store.fail("trip.Create"); err != nil {
		return err
	}
	r.store.nextTripID++
	trip.ID = r.store.nextTripID
	r.store.trips[trip.ID] = copyTrip(trip)
	return nil
}

func (r *fakeTripRepo) GetByID(_ context.Context, id int64) (*models.Trip, error) {
	trip, ok := r.store.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %d: %w", id, repositories.ErrNotFound)
	}
	return copyTrip(trip), nil
}

func (r *fakeTripRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Trip, error) {
	if err := r.store.fail("trip.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *fakeTripRepo) List(_ context.Context) ([]*models.Trip, error) { return nil, nil }

func (r *fakeTripRepo) CountArrivingWithin(_ context.Context, agency string, from, to time.Time) (int, error) {
	if err := r.store.fail("trip.CountArrivingWithin"); err != nil {
		return 0, err
	}
	n := 0
	for _, trip := range r.store.trips {
		if trip.Destination != agency || trip.Status == models.TripStatusCancelled {
			continue
		}
		if !trip.ArriveAt.Before(from) && !trip.ArriveAt.After(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) Count(_ context.Context) (int, error) {
	return len(r.store.trips), nil
}

func (r *fakeTripRepo) CountByStatus(_ context.Context, status models.TripStatus) (int, error) {
	n := 0
	for _, trip := range r.store.trips {
		if trip.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) Save(_ context.Context, trip *models.Trip) error {
	if err := r.store.fail("trip.Save"); err != nil {
		return err
	}
	if _, ok := r.store.trips[trip.ID]; !ok {
		return fmt.Errorf("trip %d: %w", trip.ID, repositories.ErrNotFound)
	}
	r.store.trips[trip.ID] = copyTrip(trip)
	return nil
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.store.users[user.ID] = copyUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repositories.ErrNotFound)
	}
	return copyUser(user), nil
}

func (r *fakeUserRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	if err := r.store.fail("user.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) { return nil, nil }

func (r *fakeUserRepo) Count(_ context.Context) (int, error) {
	return len(r.store.users), nil
}

func (r *fakeUserRepo) CountByClientType(_ context.Context, clientType models.ClientType) (int, error) {
	n := 0
	for _, user := range r.store.users {
		if user.ClientType == clientType {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *models.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, repositories.ErrNotFound)
	}
	r.store.users[user.ID] = copyUser(user)
	return nil
}

type fakeReservationRepo struct{ store *fakeStore }

func (r *fakeReservationRepo) Create(_ context.Context, reservation *models.Reservation) error {
	if err := r.store.fail("reservation.Create"); err != nil {
		return err
	}
	r.store.nextReservationID++
	reservation.ID = r.store.nextReservationID
	r.store.reservations[reservation.ID] = copyRes(reservation)
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	reservation, ok := r.store.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, repositories.ErrNotFound)
	}
	return copyRes(reservation), nil
}

func (r *fakeReservationRepo) GetByNumber(_ context.Context, reservationNo string) (*models.Reservation, error) {
	for _, reservation := range r.store.reservations {
		if reservation.ReservationNo == reservationNo {
			return copyRes(reservation), nil
		}
	}
	return nil, fmt.Errorf("reservation %s: %w", reservationNo, repositories.ErrNotFound)
}

func (r *fakeReservationRepo) List(_ context.Context) ([]*models.Reservation, error) {
	return nil, nil
}

func (r *fakeReservationRepo) ListByTrip(_ context.Context, tripID int64) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, reservation := range r.store.reservations {
		if reservation.TripID == tripID {
			out = append(out, copyRes(reservation))
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) SumReservedSeats(_ context.Context, tripID int64, statuses []models.ReservationStatus) (int, error) {
	if err := r.store.fail("reservation.SumReservedSeats"); err != nil {
		return 0, err
	}
	sum := 0
	for _, reservation := range r.store.reservations {
		if reservation.TripID != tripID {
			continue
		}
		for _, status := range statuses {
			if reservation.Status == status {
				sum += reservation.SeatCount
				break
			}
		}
	}
	return sum, nil
}

func (r *fakeReservationRepo) Count(_ context.Context) (int, error) {
	return len(r.store.reservations), nil
}

func (r *fakeReservationRepo) CountByStatus(_ context.Context, status models.ReservationStatus) (int, error) {
	n := 0
	for _, reservation := range r.store.reservations {
		if reservation.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, reservation *models.Reservation) error {
	if _, ok := r.store.reservations[reservation.ID]; !ok {
		return fmt.Errorf("reservation %d: %w", reservation.ID, repositories.ErrNotFound)
	}
	r.store.reservations[reservation.ID] = copyRes(reservation)
	return nil
}

type fakeDecisionLogRepo struct{ logs []*models.DecisionLog }

func (r *fakeDecisionLogRepo) Insert(_ context.Context, log *models.DecisionLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeDecisionLogRepo) ListRecent(_ context.Context, limit int) ([]*models.DecisionLog, error) {
	if limit > len(r.logs) {
		limit = len(r.logs)
	}
	return r.logs[:limit], nil
}

// fakeTx satisfies repositories.Transaction for the fake manager
type fakeTx struct{ ctx context.Context }

func (t *fakeTx) Commit() error            { return nil }
func (t *fakeTx) Rollback() error          { return nil }
func (t *fakeTx) Context() context.Context { return t.ctx }

// fakeTxManager runs the function directly against the shared store
type fakeTxManager struct{}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &fakeTx{ctx: ctx}, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, &fakeTx{ctx: ctx})
}

// recordingReporter captures reported decisions
type recordingReporter struct{ logs []*models.DecisionLog }

func (r *recordingReporter) Report(log *models.DecisionLog) error {
	r.logs = append(r.logs, log)
	return nil
}
