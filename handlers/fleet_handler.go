package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"github.com/voyagecm/policy-api/services"
	"github.com/voyagecm/policy-api/utils"
	"go.uber.org/zap"
)

// PostgreSQL error codes surfaced by lib/pq
const (
	uniqueViolation  = "23505"
	lockNotAvailable = "55P03"
)

// CreateBusRequest represents a bus registration request
type CreateBusRequest struct {
	Registration string `json:"registration" validate:"required"`
	Category     string `json:"category" validate:"required,oneof=VIP STANDARD"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
	Agency       string `json:"agency" validate:"required"`
}

// CreateDriverRequest represents a driver registration request
type CreateDriverRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	LicenseNo string `json:"license_no" validate:"required"`
	Agency    string `json:"agency" validate:"required"`
}

// CreateUserRequest represents a customer registration request
type CreateUserRequest struct {
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      string  `json:"phone"`
	ClientType string  `json:"client_type" validate:"required,oneof=VIP REGULAR OCCASIONAL"`
	Balance    float64 `json:"balance" validate:"gte=0"`
}

// BusResponse is a bus with its display labels
type BusResponse struct {
	*models.Bus
	CategoryLabel string `json:"category_label"`
	StatusLabel   string `json:"status_label"`
}

func newBusResponse(bus *models.Bus) BusResponse {
	return BusResponse{
		Bus:           bus,
		CategoryLabel: bus.Category.Label(),
		StatusLabel:   bus.Status.Label(),
	}
}

// DriverResponse is a driver with its display label
type DriverResponse struct {
	*models.Driver
	FullName    string `json:"full_name"`
	StatusLabel string `json:"status_label"`
}

func newDriverResponse(driver *models.Driver) DriverResponse {
	return DriverResponse{
		Driver:      driver,
		FullName:    driver.FullName(),
		StatusLabel: driver.Status.Label(),
	}
}

// TripResponse is a trip with its display labels
type TripResponse struct {
	*models.Trip
	Route       string `json:"route"`
	StatusLabel string `json:"status_label"`
}

func newTripResponse(trip *models.Trip) TripResponse {
	return TripResponse{
		Trip:        trip,
		Route:       trip.Route(),
		StatusLabel: trip.Status.Label(),
	}
}

// FleetHandler handles fleet and customer management HTTP requests
type FleetHandler struct {
	repos  *repositories.Repositories
	logger *zap.Logger
}

// NewFleetHandler creates a new FleetHandler
func NewFleetHandler(repos *repositories.Repositories, logger *zap.Logger) *FleetHandler {
	return &FleetHandler{
		repos:  repos,
		logger: logger,
	}
}

func pqErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// storageError translates a repository failure into the domain error
// taxonomy so HandleServiceError can pick the HTTP status. notFound and
// duplicate name the entity-specific errors for the calling endpoint.
func storageError(err error, notFound, duplicate *services.DomainError) error {
	switch {
	case notFound != nil && errors.Is(err, repositories.ErrNotFound):
		return notFound
	case duplicate != nil && pqErrorCode(err, uniqueViolation):
		return duplicate
	case pqErrorCode(err, lockNotAvailable):
		return services.ErrConcurrentUpdate
	default:
		return services.WrapInternal("storage operation failed", err)
	}
}

func pathID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}

// HandleCreateBus handles POST /api/v1/fleet/buses
func (h *FleetHandler) HandleCreateBus(w http.ResponseWriter, r *http.Request) {
	var req CreateBusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	bus := models.NewBus(req.Registration, models.BusCategory(req.Category), req.Capacity, req.Agency)
	if err := h.repos.Buses.Create(r.Context(), bus); err != nil {
		HandleServiceError(w, storageError(err, nil, services.ErrDuplicateRegistration), h.logger)
		return
	}

	h.logger.Info("bus registered",
		zap.Int64("id", bus.ID),
		zap.String("registration", bus.Registration))
	_ = utils.WriteCreated(w, bus)
}

// HandleGetBus handles GET /api/v1/fleet/buses/{busID}
func (h *FleetHandler) HandleGetBus(w http.ResponseWriter, r *http.Request) {
	busID, err := pathID(r, "busID")
	if err != nil {
		HandleServiceError(w, services.ErrInvalidInput, h.logger)
		return
	}

	bus, err := h.repos.Buses.GetByID(r.Context(), busID)
	if err != nil {
		HandleServiceError(w, storageError(err, services.ErrBusNotFound, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, newBusResponse(bus))
}

// HandleListBuses handles GET /api/v1/fleet/buses
func (h *FleetHandler) HandleListBuses(w http.ResponseWriter, r *http.Request) {
	var (
		buses []*models.Bus
		err   error
	)

	if agency := r.URL.Query().Get("agency"); agency != "" {
		buses, err = h.repos.Buses.ListByAgency(r.Context(), agency)
	} else {
		buses, err = h.repos.Buses.List(r.Context())
	}
	if err != nil {
		HandleServiceError(w, storageError(err, nil, nil), h.logger)
		return
	}

	responses := make([]BusResponse, 0, len(buses))
	for _, bus := range buses {
		responses = append(responses, newBusResponse(bus))
	}

	_ = utils.WriteOK(w, responses)
}

// HandleCreateDriver handles POST /api/v1/fleet/drivers
func (h *FleetHandler) HandleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	driver := models.NewDriver(req.FirstName, req.LastName, req.LicenseNo, req.Agency)
	if err := h.repos.Drivers.Create(r.Context(), driver); err != nil {
		HandleServiceError(w, storageError(err, nil, services.ErrDuplicateLicense), h.logger)
		return
	}

	h.logger.Info("driver registered",
		zap.Int64("id", driver.ID),
		zap.String("license_no", driver.LicenseNo))
	_ = utils.WriteCreated(w, driver)
}

// HandleGetDriver handles GET /api/v1/fleet/drivers/{driverID}
func (h *FleetHandler) HandleGetDriver(w http.ResponseWriter, r *http.Request) {
	driverID, err := pathID(r, "driverID")
	if err != nil {
		HandleServiceError(w, services.ErrInvalidInput, h.logger)
		return
	}

	driver, err := h.repos.Drivers.GetByID(r.Context(), driverID)
	if err != nil {
		HandleServiceError(w, storageError(err, services.ErrDriverNotFound, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, newDriverResponse(driver))
}

// HandleListDrivers handles GET /api/v1/fleet/drivers
func (h *FleetHandler) HandleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.repos.Drivers.List(r.Context())
	if err != nil {
		HandleServiceError(w, storageError(err, nil, nil), h.logger)
		return
	}

	responses := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		responses = append(responses, newDriverResponse(driver))
	}

	_ = utils.WriteOK(w, responses)
}

// HandleCreateUser handles POST /api/v1/fleet/users
func (h *FleetHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user := models.NewUser(req.FirstName, req.LastName, req.Email, req.Phone, models.ClientType(req.ClientType))
	user.Balance = req.Balance
	if err := h.repos.Users.Create(r.Context(), user); err != nil {
		HandleServiceError(w, storageError(err, nil, services.ErrDuplicateEmail), h.logger)
		return
	}

	h.logger.Info("customer registered",
		zap.Int64("id", user.ID),
		zap.String("email", user.Email))
	_ = utils.WriteCreated(w, user)
}

// HandleGetUser handles GET /api/v1/fleet/users/{userID}
func (h *FleetHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		HandleServiceError(w, services.ErrInvalidInput, h.logger)
		return
	}

	user, err := h.repos.Users.GetByID(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, storageError(err, services.ErrUserNotFound, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleListUsers handles GET /api/v1/fleet/users
func (h *FleetHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repos.Users.List(r.Context())
	if err != nil {
		HandleServiceError(w, storageError(err, nil, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, users)
}

// HandleGetTrip handles GET /api/v1/trips/{tripID}
func (h *FleetHandler) HandleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		HandleServiceError(w, services.ErrInvalidInput, h.logger)
		return
	}

	trip, err := h.repos.Trips.GetByID(r.Context(), tripID)
	if err != nil {
		HandleServiceError(w, storageError(err, services.ErrTripNotFound, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, newTripResponse(trip))
}

// HandleListTrips handles GET /api/v1/trips
func (h *FleetHandler) HandleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.repos.Trips.List(r.Context())
	if err != nil {
		HandleServiceError(w, storageError(err, nil, nil), h.logger)
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		responses = append(responses, newTripResponse(trip))
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetReservation handles GET /api/v1/reservations/{reservationNo}
func (h *FleetHandler) HandleGetReservation(w http.ResponseWriter, r *http.Request) {
	reservationNo := chi.URLParam(r, "reservationNo")

	reservation, err := h.repos.Reservations.GetByNumber(r.Context(), reservationNo)
	if err != nil {
		HandleServiceError(w, storageError(err, services.ErrReservationNotFound, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, reservation)
}

// HandleListReservations handles GET /api/v1/reservations
func (h *FleetHandler) HandleListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.repos.Reservations.List(r.Context())
	if err != nil {
		HandleServiceError(w, storageError(err, nil, nil), h.logger)
		return
	}

	_ = utils.WriteOK(w, reservations)
}
