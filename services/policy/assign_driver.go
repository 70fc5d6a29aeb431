package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// EvaluateAssignDriver runs the driver assignment policy. On ALLOW it
// attaches the driver to the trip and puts the driver on duty.
func (s *PolicyService) EvaluateAssignDriver(ctx context.Context, req *AssignDriverRequest) *Result {
	result := s.newResult(models.PolicyAssignDriver)
	refs := map[string]int64{"trip_id": req.TripID, "driver_id": req.DriverID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		trip, err := s.trips.GetByIDForUpdate(txCtx, req.TripID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "TripExists", "trip")
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

		assignable := driver.IsAvailable() &&
			driver.CanDrive() &&
			driver.CurrentAgency == trip.Origin

		result.Trace.Addf("DriverAssignable", assignable,
			"status=%s hours=%d/%d agency=%s",
			driver.Status, driver.HoursWorked, models.MaxDailyDriveHours, driver.CurrentAgency)

		if !result.Trace.AllPassed() {
			return nil
		}

		trip.DriverID = &driver.ID
		if err := s.trips.Save(txCtx, trip); err != nil {
			return err
		}

		driver.Status = models.DriverStatusOnDuty
		assignAt := req.AssignAt
		if assignAt.IsZero() {
			assignAt = s.now()
		}
		driver.LastTripAt = &assignAt
		if err := s.drivers.Save(txCtx, driver); err != nil {
			return err
		}

		result.TripID = &trip.ID
		result.Trace.Addf("DriverAssigned", true,
			"%s assigned to trip %d", driver.FullName(), trip.ID)
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
