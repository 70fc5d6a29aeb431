package models

import "time"

// DriverStatus represents the duty state of a driver
type DriverStatus string

const (
	DriverStatusAvailable   DriverStatus = "AVAILABLE"
	DriverStatusOnDuty      DriverStatus = "ON_DUTY"
	DriverStatusRest        DriverStatus = "REST"
	DriverStatusLeave       DriverStatus = "LEAVE"
	DriverStatusUnavailable DriverStatus = "UNAVAILABLE"
)

// MaxDailyDriveHours is the legal daily driving limit used by the
// assignment policy.
const MaxDailyDriveHours = 8

// Driver represents a bus driver. It is referenced by the planning,
// assignment, departure and transfer policies.
type Driver struct {
	ID            int64        `json:"id" db:"id"`
	FirstName     string       `json:"first_name" db:"first_name"`
	LastName      string       `json:"last_name" db:"last_name"`
	LicenseNo     string       `json:"license_no" db:"license_no"`
	Status        DriverStatus `json:"status" db:"status"`
	CurrentAgency string       `json:"current_agency" db:"current_agency"`
	HoursWorked   int          `json:"hours_worked" db:"hours_worked"`
	LastTripAt    *time.Time   `json:"last_trip_at,omitempty" db:"last_trip_at"`
}

// TableName returns the table name for the Driver model
func (Driver) TableName() string {
	return "drivers"
}

// NewDriver creates a new Driver in the AVAILABLE state
func NewDriver(firstName, lastName, licenseNo, agency string) *Driver {
	return &Driver{
		FirstName:     firstName,
		LastName:      lastName,
		LicenseNo:     licenseNo,
		Status:        DriverStatusAvailable,
		CurrentAgency: agency,
	}
}

// IsAvailable reports whether the driver is free to take work
func (d *Driver) IsAvailable() bool {
	return d.Status == DriverStatusAvailable
}

// CanDrive reports whether the driver may legally take a trip:
// available and under the daily hour limit.
func (d *Driver) CanDrive() bool {
	return d.Status == DriverStatusAvailable && d.HoursWorked < MaxDailyDriveHours
}

// FullName returns the driver's display name
func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}
