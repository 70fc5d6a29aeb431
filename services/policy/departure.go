package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// minimumFill returns the seat count required before a bus may depart.
// VIP buses depart with a single booked seat; standard buses need half
// their capacity, rounded up.
func minimumFill(bus *models.Bus) int {
	if bus.Category == models.BusCategoryVIP {
		return 1
	}
	return (bus.Capacity + 1) / 2
}

// EvaluateDeparture runs the departure policy for a trip. On ALLOW it puts
// the trip in progress and sends the bus en route with its booked passengers.
func (s *PolicyService) EvaluateDeparture(ctx context.Context, tripID int64) *Result {
	result := s.newResult(models.PolicyDeparture)
	refs := map[string]int64{"trip_id": tripID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		trip, err := s.trips.GetByIDForUpdate(txCtx, tripID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "TripExists", "trip")
				return nil
			}
			return err
		}

		if trip.BusID == nil {
			result.Trace.Add("BusAssigned", false, "no bus assigned to trip")
			return nil
		}
		if trip.DriverID == nil {
			result.Trace.Add("DriverAssigned", false, "no driver assigned to trip")
			return nil
		}
		refs["bus_id"] = *trip.BusID
		refs["driver_id"] = *trip.DriverID

		bus, err := s.buses.GetByIDForUpdate(txCtx, *trip.BusID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "BusExists", "bus")
				return nil
			}
			return err
		}

		driver, err := s.drivers.GetByID(txCtx, *trip.DriverID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "DriverExists", "driver")
				return nil
			}
			return err
		}

		required := minimumFill(bus)

		trace := &result.Trace
		trace.Addf("MinimumFill", trip.SeatsBooked >= required,
			"%d booked, %d required for %s bus", trip.SeatsBooked, required, bus.Category.Label())
		trace.Addf("DriverOnDuty", driver.Status == models.DriverStatusOnDuty,
			"status=%s", driver.Status)
		trace.Addf("BusReady", bus.IsAvailable(),
			"status=%s", bus.Status)

		if !result.Trace.AllPassed() {
			return nil
		}

		trip.Status = models.TripStatusInProgress
		if err := s.trips.Save(txCtx, trip); err != nil {
			return err
		}

		bus.Status = models.BusStatusEnRoute
		bus.CurrentPassengers = trip.SeatsBooked
		if err := s.buses.Save(txCtx, bus); err != nil {
			return err
		}

		result.TripID = &trip.ID
		result.Trace.Addf("DepartureAuthorized", true,
			"trip %d departed with %d passenger(s)", trip.ID, trip.SeatsBooked)
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
