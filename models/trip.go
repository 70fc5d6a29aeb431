package models

import "time"

// TripStatus represents the lifecycle state of a trip
type TripStatus string

const (
	TripStatusPlanned    TripStatus = "PLANNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusDone       TripStatus = "DONE"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Trip represents a planned journey between two agencies. Bus and driver are
// assignments, not ownership: either may be nil until the corresponding
// policy attaches them.
type Trip struct {
	ID          int64      `json:"id" db:"id"`
	Origin      string     `json:"origin" db:"origin"`
	Destination string     `json:"destination" db:"destination"`
	DepartAt    time.Time  `json:"depart_at" db:"depart_at"`
	ArriveAt    time.Time  `json:"arrive_at" db:"arrive_at"`
	BusID       *int64     `json:"bus_id,omitempty" db:"bus_id"`
	DriverID    *int64     `json:"driver_id,omitempty" db:"driver_id"`
	Status      TripStatus `json:"status" db:"status"`
	Price       float64    `json:"price" db:"price"`
	SeatsBooked int        `json:"seats_booked" db:"seats_booked"`
}

// TableName returns the table name for the Trip model
func (Trip) TableName() string {
	return "trips"
}

// NewTrip creates a new Trip in the PLANNED state
func NewTrip(origin, destination string, departAt, arriveAt time.Time, price float64) *Trip {
	return &Trip{
		Origin:      origin,
		Destination: destination,
		DepartAt:    departAt,
		ArriveAt:    arriveAt,
		Status:      TripStatusPlanned,
		Price:       price,
	}
}

// IsPlanned reports whether the trip is still open for reservations
func (t *Trip) IsPlanned() bool {
	return t.Status == TripStatusPlanned
}

// Route returns the display label for the trip
func (t *Trip) Route() string {
	return t.Origin + " - " + t.Destination
}
