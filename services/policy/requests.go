package policy

import "time"

// PlanTripRequest asks to plan a new trip between two agencies
type PlanTripRequest struct {
	Origin      string    `json:"origin" validate:"required"`
	Destination string    `json:"destination" validate:"required"`
	DepartAt    time.Time `json:"depart_at" validate:"required"`
	ArriveAt    time.Time `json:"arrive_at" validate:"required,gtfield=DepartAt"`
	BusID       int64     `json:"bus_id" validate:"required,gt=0"`
	DriverID    int64     `json:"driver_id" validate:"required,gt=0"`
	Price       float64   `json:"price" validate:"required,gt=0"`
}

// ReservationRequest asks to book seats for a customer on a trip
type ReservationRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
	TripID    int64 `json:"trip_id" validate:"required,gt=0"`
	SeatCount int   `json:"seat_count" validate:"required,gt=0"`
}

// AssignDriverRequest asks to assign a driver to a planned trip
type AssignDriverRequest struct {
	TripID   int64     `json:"trip_id" validate:"required,gt=0"`
	DriverID int64     `json:"driver_id" validate:"required,gt=0"`
	AssignAt time.Time `json:"assign_at"`
}

// TransferRequest asks to move a bus and its driver to another agency
type TransferRequest struct {
	BusID       int64     `json:"bus_id" validate:"required,gt=0"`
	DriverID    int64     `json:"driver_id" validate:"required,gt=0"`
	Destination string    `json:"destination" validate:"required"`
	TransferAt  time.Time `json:"transfer_at" validate:"required"`
}
