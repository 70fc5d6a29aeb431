package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// maxTransferArrivals caps concurrent arrivals at the destination agency
// when transferring a bus.
const maxTransferArrivals = 3

// EvaluateTransfer runs the agency transfer policy. On ALLOW it moves the
// bus and the driver to the destination agency and puts the driver on duty.
func (s *PolicyService) EvaluateTransfer(ctx context.Context, req *TransferRequest) *Result {
	result := s.newResult(models.PolicyTransfer)
	refs := map[string]int64{"bus_id": req.BusID, "driver_id": req.DriverID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		bus, err := s.buses.GetByIDForUpdate(txCtx, req.BusID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "BusExists", "bus")
				return nil
			}
			return err
		}

		driver, err := s.drivers.GetByIDForUpdate(txCtx, req.DriverID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "DriverExists", "driver")
				return nil
			}
			return err
		}

		arriving, err := s.trips.CountArrivingWithin(txCtx, req.Destination,
			req.TransferAt.Add(-arrivalWindow), req.TransferAt.Add(arrivalWindow))
		if err != nil {
			return err
		}

		trace := &result.Trace
		trace.Addf("BusAvailable", bus.IsAvailable(),
			"status=%s", bus.Status)
		trace.Addf("DriverAtBusAgency", driver.IsAvailable() && driver.CurrentAgency == bus.CurrentAgency,
			"driver status=%s agency=%s, bus agency=%s", driver.Status, driver.CurrentAgency, bus.CurrentAgency)
		trace.Addf("DistinctAgencies", bus.CurrentAgency != req.Destination,
			"from %s to %s", bus.CurrentAgency, req.Destination)
		trace.Addf("TransferSlotAvailable", arriving < maxTransferArrivals,
			"%d of %d arrival slots used at %s", arriving, maxTransferArrivals, req.Destination)

		if !result.Trace.AllPassed() {
			return nil
		}

		bus.CurrentAgency = req.Destination
		if err := s.buses.Save(txCtx, bus); err != nil {
			return err
		}

		driver.CurrentAgency = req.Destination
		driver.Status = models.DriverStatusOnDuty
		if err := s.drivers.Save(txCtx, driver); err != nil {
			return err
		}

		result.Trace.Addf("TransferAuthorized", true,
			"bus %s relocated to %s", bus.Registration, req.Destination)
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
