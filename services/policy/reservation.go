package policy

import (
	"context"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
)

// reservedStatuses are the reservation states that hold seats on a trip
var reservedStatuses = []models.ReservationStatus{
	models.ReservationStatusPending,
	models.ReservationStatusConfirmed,
}

// EvaluateReservation runs the reservation policy. On ALLOW it creates a
// confirmed reservation, debits the customer's balance and books the seats,
// all in the same transaction as the reads.
func (s *PolicyService) EvaluateReservation(ctx context.Context, req *ReservationRequest) *Result {
	result := s.newResult(models.PolicyReservation)
	refs := map[string]int64{"user_id": req.UserID, "trip_id": req.TripID}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		user, err := s.users.GetByIDForUpdate(txCtx, req.UserID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "UserExists", "user")
				return nil
			}
			return err
		}

		trip, err := s.trips.GetByIDForUpdate(txCtx, req.TripID)
		if err != nil {
			if isNotFound(err) {
				notFoundEntry(&result.Trace, "TripExists", "trip")
				return nil
			}
			return err
		}

		trace := &result.Trace
		trace.Addf("TripPlanned", trip.IsPlanned(), "status=%s", trip.Status)
		trace.Addf("DepartureInFuture", trip.DepartAt.After(s.now()),
			"departs %s", trip.DepartAt.Format("2006-01-02 15:04"))

		amount := trip.Price * float64(req.SeatCount)

		if trip.BusID == nil {
			trace.Add("SeatsAvailable", false, "no bus assigned to trip")
		} else {
			bus, err := s.buses.GetByID(txCtx, *trip.BusID)
			if err != nil {
				if isNotFound(err) {
					trace.Add("SeatsAvailable", false, "bus not found")
				} else {
					return err
				}
			} else {
				reserved, err := s.reservations.SumReservedSeats(txCtx, trip.ID, reservedStatuses)
				if err != nil {
					return err
				}
				remaining := bus.Capacity - reserved
				trace.Addf("SeatsAvailable", remaining >= req.SeatCount,
					"%d seats remaining, %d requested", remaining, req.SeatCount)
			}
		}

		trace.Addf("PaymentFeasible", user.CanPay(amount),
			"balance=%.2f amount=%.2f", user.Balance, amount)

		if !result.Trace.AllPassed() {
			return nil
		}

		reservation := models.NewReservation(user.ID, trip.ID, req.SeatCount, amount)
		reservation.Status = models.ReservationStatusConfirmed
		paidAt := s.now()
		reservation.PaidAt = &paidAt

		if err := s.reservations.Create(txCtx, reservation); err != nil {
			return err
		}

		user.Balance -= amount
		user.TripCount++
		if err := s.users.Save(txCtx, user); err != nil {
			return err
		}

		trip.SeatsBooked += req.SeatCount
		if err := s.trips.Save(txCtx, trip); err != nil {
			return err
		}

		result.ReservationID = &reservation.ID
		result.ReservationNo = reservation.ReservationNo
		refs["reservation_id"] = reservation.ID
		result.Trace.Addf("ReservationConfirmed", true,
			"%s for %d seat(s)", reservation.ReservationNo, reservation.SeatCount)
		return nil
	})

	if err != nil {
		return s.errorResult(ctx, result, refs, err)
	}
	return s.finish(ctx, result, refs)
}
