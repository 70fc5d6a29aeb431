package policy

import (
	"context"
	"time"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

const (
	// arrivalWindow is the half-width of the window used when counting
	// trips arriving at an agency around a candidate arrival time.
	arrivalWindow = time.Hour

	// maxArrivalsPerSlot caps concurrent arrivals at a destination when
	// planning a trip.
	maxArrivalsPerSlot = 5
)

// EvaluatePlanTrip runs the trip planning policy. On ALLOW it creates the
// planned trip with the requested bus and driver attached.
func (s *PolicyService) EvaluatePlanTrip(ctx context.Context, req *PlanTripRequest) *Result {
	result := s.newResult(models.PolicyPlanTrip)
	refs := map[string]int64{"bus_id": req.BusID, "driver_id": req.DriverID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		bus, err := s.buses.GetByID(txCtx, req.BusID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "BusExists", "bus")
				return nil
			}
			return err
		}

		driver, err := s.drivers.GetByID(txCtx, req.DriverID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "DriverExists", "driver")
				return nil
			}
			return err
		}

		arriving, err := s.trips.CountArrivingWithin(txCtx, req.Destination,
			req.ArriveAt.Add(-arrivalWindow), req.ArriveAt.Add(arrivalWindow))
		if err != nil {
			return err
		}

		trace := &result.Trace
		trace.Addf("BusCategory", true,
			"category %s", bus.Category.Label())
		trace.Addf("BusAvailable", bus.IsAvailable() && bus.CurrentAgency == req.Origin,
			"status=%s agency=%s", bus.Status, bus.CurrentAgency)
		trace.Addf("DriverAvailable", driver.IsAvailable() && driver.CurrentAgency == req.Origin,
			"status=%s agency=%s", driver.Status, driver.CurrentAgency)
		trace.Addf("DestinationSlotAvailable", arriving < maxArrivalsPerSlot,
			"%d of %d arrival slots used at %s", arriving, maxArrivalsPerSlot, req.Destination)
		trace.Addf("BusCapacityAvailable", bus.HasSpareCapacity(),
			"passengers=%d capacity=%d", bus.CurrentPassengers, bus.Capacity)

		if !result.Trace.AllPassed() {
			return nil
		}

		trip := models.NewTrip(req.Origin, req.Destination, req.DepartAt, req.ArriveAt, req.Price)
		trip.BusID = &req.BusID
		trip.DriverID = &req.DriverID

		if err := s.trips.Create(txCtx, trip); err != nil {
			return err
		}

		result.TripID = &trip.ID
		refs["trip_id"] = trip.ID
		result.Trace.Addf("TripCreated", true, "trip %d %s", trip.ID, trip.Route())
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
