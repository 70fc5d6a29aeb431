package models

// BusCategory represents the comfort class of a bus
type BusCategory string

const (
	BusCategoryVIP      BusCategory = "VIP"
	BusCategoryStandard BusCategory = "STANDARD"
)

// BusStatus represents the operational state of a bus
type BusStatus string

const (
	BusStatusAvailable    BusStatus = "AVAILABLE"
	BusStatusEnRoute      BusStatus = "EN_ROUTE"
	BusStatusMaintenance  BusStatus = "MAINTENANCE"
	BusStatusOutOfService BusStatus = "OUT_OF_SERVICE"
)

// Bus represents a vehicle of the fleet. It is referenced by the planning,
// departure, transfer and maintenance policies.
type Bus struct {
	ID                int64       `json:"id" db:"id"`
	Registration      string      `json:"registration" db:"registration"`
	Category          BusCategory `json:"category" db:"category"`
	Capacity          int         `json:"capacity" db:"capacity"`
	Status            BusStatus   `json:"status" db:"status"`
	CurrentAgency     string      `json:"current_agency" db:"current_agency"`
	CurrentPassengers int         `json:"current_passengers" db:"current_passengers"`
}

// TableName returns the table name for the Bus model
func (Bus) TableName() string {
	return "buses"
}

// NewBus creates a new Bus in the AVAILABLE state
func NewBus(registration string, category BusCategory, capacity int, agency string) *Bus {
	return &Bus{
		Registration:  registration,
		Category:      category,
		Capacity:      capacity,
		Status:        BusStatusAvailable,
		CurrentAgency: agency,
	}
}

// IsAvailable reports whether the bus can be scheduled for a trip or transfer
func (b *Bus) IsAvailable() bool {
	return b.Status == BusStatusAvailable
}

// HasSpareCapacity reports whether the bus can take more passengers
func (b *Bus) HasSpareCapacity() bool {
	return b.CurrentPassengers < b.Capacity
}

// IsCritical reports whether the bus is in a state that requires the workshop
func (b *Bus) IsCritical() bool {
	return b.Status == BusStatusMaintenance || b.Status == BusStatusOutOfService
}
