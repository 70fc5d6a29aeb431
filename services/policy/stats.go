package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
)

// Statistics is the operational dashboard snapshot
type Statistics struct {
	Buses        BusStatistics         `json:"buses"`
	Drivers      DriverStatistics      `json:"drivers"`
	Trips        TripStatistics        `json:"trips"`
	Users        UserStatistics        `json:"users"`
	Reservations ReservationStatistics `json:"reservations"`
}

// BusStatistics breaks the fleet down by status
type BusStatistics struct {
	Total         int `json:"total"`
	Available     int `json:"available"`
	EnRoute       int `json:"en_route"`
	InMaintenance int `json:"in_maintenance"`
	OutOfService  int `json:"out_of_service"`
}

// DriverStatistics breaks the drivers down by duty state
type DriverStatistics struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	OnDuty    int `json:"on_duty"`
	Resting   int `json:"resting"`
}

// TripStatistics breaks the trips down by lifecycle state
type TripStatistics struct {
	Total      int `json:"total"`
	Planned    int `json:"planned"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Cancelled  int `json:"cancelled"`
}

// UserStatistics breaks the customers down by client type
type UserStatistics struct {
	Total      int `json:"total"`
	VIP        int `json:"vip"`
	Regular    int `json:"regular"`
	Occasional int `json:"occasional"`
}

// ReservationStatistics breaks the reservations down by status
type ReservationStatistics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// GetStatistics assembles the dashboard counters
func (s *PolicyService) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	var err error
	if stats.Buses.Total, err = s.buses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Buses.Available, err = s.buses.CountByStatus(ctx, models.BusStatusAvailable); err != nil {
		return nil, err
	}
	if stats.Buses.EnRoute, err = s.buses.CountByStatus(ctx, models.BusStatusEnRoute); err != nil {
		return nil, err
	}
	if stats.Buses.InMaintenance, err = s.buses.CountByStatus(ctx, models.BusStatusMaintenance); err != nil {
		return nil, err
	}
	if stats.Buses.OutOfService, err = s.buses.CountByStatus(ctx, models.BusStatusOutOfService); err != nil {
		return nil, err
	}

	if stats.Drivers.Total, err = s.drivers.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Drivers.Available, err = s.drivers.CountByStatus(ctx, models.DriverStatusAvailable); err != nil {
		return nil, err
	}
	if stats.Drivers.OnDuty, err = s.drivers.CountByStatus(ctx, models.DriverStatusOnDuty); err != nil {
		return nil, err
	}
	if stats.Drivers.Resting, err = s.drivers.CountByStatus(ctx, models.DriverStatusRest); err != nil {
		return nil, err
	}

	if stats.Trips.Total, err = s.trips.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Trips.Planned, err = s.trips.CountByStatus(ctx, models.TripStatusPlanned); err != nil {
		return nil, err
	}
	if stats.Trips.InProgress, err = s.trips.CountByStatus(ctx, models.TripStatusInProgress); err != nil {
		return nil, err
	}
	if stats.Trips.Done, err = s.trips.CountByStatus(ctx, models.TripStatusDone); err != nil {
		return nil, err
	}
	if stats.Trips.Cancelled, err = s.trips.CountByStatus(ctx, models.TripStatusCancelled); err != nil {
		return nil, err
	}

	if stats.Users.Total, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Users.VIP, err = s.users.CountByClientType(ctx, models.ClientTypeVIP); err != nil {
		return nil, err
	}
	if stats.Users.Regular, err = s.users.CountByClientType(ctx, models.ClientTypeRegular); err != nil {
		return nil, err
	}
	if stats.Users.Occasional, err = s.users.CountByClientType(ctx, models.ClientTypeOccasional); err != nil {
		return nil, err
	}

	if stats.Reservations.Total, err = s.reservations.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Reservations.Pending, err = s.reservations.CountByStatus(ctx, models.ReservationStatusPending); err != nil {
		return nil, err
	}
	if stats.Reservations.Confirmed, err = s.reservations.CountByStatus(ctx, models.ReservationStatusConfirmed); err != nil {
		return nil, err
	}
	if stats.Reservations.Cancelled, err = s.reservations.CountByStatus(ctx, models.ReservationStatusCancelled); err != nil {
		return nil, err
	}

	return stats, nil
}
