package models

// Human-readable labels for the domain enums. Kept in lookup tables rather
// than on the types so the wire values stay stable.

var busCategoryLabels = map[BusCategory]string{
	BusCategoryVIP:      "VIP - Premium Comfort",
	BusCategoryStandard: "Standard",
}

var busStatusLabels = map[BusStatus]string{
	BusStatusAvailable:    "Available",
	BusStatusEnRoute:      "En Route",
	BusStatusMaintenance:  "Under Maintenance",
	BusStatusOutOfService: "Out of Service",
}

var driverStatusLabels = map[DriverStatus]string{
	DriverStatusAvailable:   "Available",
	DriverStatusOnDuty:      "On Duty",
	DriverStatusRest:        "Resting",
	DriverStatusLeave:       "On Leave",
	DriverStatusUnavailable: "Unavailable",
}

var tripStatusLabels = map[TripStatus]string{
	TripStatusPlanned:    "Planned",
	TripStatusInProgress: "In Progress",
	TripStatusDone:       "Completed",
	TripStatusCancelled:  "Cancelled",
}

var clientTypeLabels = map[ClientType]string{
	ClientTypeVIP:        "VIP Client",
	ClientTypeRegular:    "Regular Client",
	ClientTypeOccasional: "Occasional Client",
}

var reservationStatusLabels = map[ReservationStatus]string{
	ReservationStatusPending:   "Awaiting Payment",
	ReservationStatusConfirmed: "Confirmed",
	ReservationStatusCancelled: "Cancelled",
	ReservationStatusUsed:      "Used",
}

// Label returns the display label for a bus category
func (c BusCategory) Label() string { return labelOr(busCategoryLabels[c], string(c)) }

// Label returns the display label for a bus status
func (s BusStatus) Label() string { return labelOr(busStatusLabels[s], string(s)) }

// Label returns the display label for a driver status
func (s DriverStatus) Label() string { return labelOr(driverStatusLabels[s], string(s)) }

// Label returns the display label for a trip status
func (s TripStatus) Label() string { return labelOr(tripStatusLabels[s], string(s)) }

// Label returns the display label for a client type
func (c ClientType) Label() string { return labelOr(clientTypeLabels[c], string(c)) }

// Label returns the display label for a reservation status
func (s ReservationStatus) Label() string { return labelOr(reservationStatusLabels[s], string(s)) }

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
