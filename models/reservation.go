package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the lifecycle state of a reservation.
// Reservations only transition status; they are never deleted.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusUsed      ReservationStatus = "USED"
)

// Reservation represents a seat booking on a trip. Amount is fixed at
// creation time as trip price times seat count.
type Reservation struct {
	ID            int64             `json:"id" db:"id"`
	UserID        int64             `json:"user_id" db:"user_id"`
	TripID        int64             `json:"trip_id" db:"trip_id"`
	SeatCount     int               `json:"seat_count" db:"seat_count"`
	Amount        float64           `json:"amount" db:"amount"`
	Status        ReservationStatus `json:"status" db:"status"`
	ReservationNo string            `json:"reservation_no" db:"reservation_no"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	PaidAt        *time.Time        `json:"paid_at,omitempty" db:"paid_at"`
}

// TableName returns the table name for the Reservation model
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservation creates a new Reservation in the PENDING state with a
// generated reservation number.
func NewReservation(userID, tripID int64, seatCount int, amount float64) *Reservation {
	return &Reservation{
		UserID:        userID,
		TripID:        tripID,
		SeatCount:     seatCount,
		Amount:        amount,
		Status:        ReservationStatusPending,
		ReservationNo: NewReservationNumber(),
		CreatedAt:     time.Now(),
	}
}

// NewReservationNumber generates a unique, human-quotable booking reference
func NewReservationNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RES-" + strings.ToUpper(raw[:12])
}

// IsConfirmed reports whether the reservation has been paid and confirmed
func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}

// CanBeCancelled reports whether the reservation may still be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}
