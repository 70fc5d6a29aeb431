package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// EvaluateMaintenance runs the maintenance policy for a bus. On ALLOW it
// moves the bus to the workshop and empties it.
func (s *PolicyService) EvaluateMaintenance(ctx context.Context, busID int64) *Result {
	result := s.newResult(models.PolicyMaintenance)
	refs := map[string]int64{"bus_id": busID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		bus, err := s.buses.GetByIDForUpdate(txCtx, busID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "BusExists", "bus")
				return nil
			}
			return err
		}

		// A bus already in the workshop may be re-admitted; only a bus
		// on the road is refused.
		admissible := bus.IsCritical() || bus.IsAvailable()
		result.Trace.Addf("CriticalOrIdle", admissible, "status=%s", bus.Status)

		if !result.Trace.AllPassed() {
			return nil
		}

		bus.Status = models.BusStatusMaintenance
		bus.CurrentPassengers = 0
		if err := s.buses.Save(txCtx, bus); err != nil {
			return err
		}

		result.Trace.Addf("MaintenanceScheduled", true,
			"bus %s sent to the workshop", bus.Registration)
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
