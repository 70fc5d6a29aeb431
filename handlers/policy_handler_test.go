package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagecm/policy-api/services/policy"
	"go.uber.org/zap"
)

type stubEvaluator struct {
	result    *policy.Result
	stats     *policy.Statistics
	statsErr  error
	gotTripID int64
	gotBusID  int64
}

func (s *stubEvaluator) EvaluatePlanTrip(ctx context.Context, req *policy.PlanTripRequest) *policy.Result {
	return s.result
}

func (s *stubEvaluator) EvaluateReservation(ctx context.Context, req *policy.ReservationRequest) *policy.Result {
	return s.result
}

func (s *stubEvaluator) EvaluateAssignDriver(ctx context.Context, req *policy.AssignDriverRequest) *policy.Result {
	return s.result
}

func (s *stubEvaluator) EvaluateDeparture(ctx context.Context, tripID int64) *policy.Result {
	s.gotTripID = tripID
	return s.result
}

func (s *stubEvaluator) EvaluateTransfer(ctx context.Context, req *policy.TransferRequest) *policy.Result {
	return s.result
}

func (s *stubEvaluator) EvaluateMaintenance(ctx context.Context, busID int64) *policy.Result {
	s.gotBusID = busID
	return s.result
}

func (s *stubEvaluator) GetStatistics(ctx context.Context) (*policy.Statistics, error) {
	return s.stats, s.statsErr
}

func allowResult() *policy.Result {
	result := &policy.Result{
		Policy:    "RESERVATION",
		Decision:  policy.DecisionAllow,
		Timestamp: time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
	}
	result.Trace.Add("TripPlanned", true, "status=PLANNED")
	return result
}

func denyResult() *policy.Result {
	result := &policy.Result{
		Policy:    "RESERVATION",
		Decision:  policy.DecisionDeny,
		Timestamp: time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
	}
	result.Trace.Add("PaymentFeasible", false, "balance=100.00 amount=6500.00")
	return result
}

func decodeDecision(t *testing.T, rec *httptest.ResponseRecorder) DecisionResponse {
	t.Helper()
	var resp DecisionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestPolicyHandler_HandleReservation(t *testing.T) {
	t.Run("allow answers 200", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

		body := `{"user_id": 1, "trip_id": 10, "seat_count": 2}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/reservation", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.HandleReservation(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeDecision(t, rec)
		assert.Equal(t, "ALLOW", resp.Decision)
		assert.Equal(t, []string{"PASS TripPlanned: status=PLANNED"}, resp.Explanation)
	})

	t.Run("deny also answers 200", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{result: denyResult()}, zap.NewNop())

		body := `{"user_id": 1, "trip_id": 10, "seat_count": 2}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/reservation", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.HandleReservation(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeDecision(t, rec)
		assert.Equal(t, "DENY", resp.Decision)
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/reservation", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()

		handler.HandleReservation(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure answers 400 with fields", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

		body := `{"user_id": 1, "trip_id": 10, "seat_count": 0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/reservation", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.HandleReservation(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "SeatCount")
	})
}

func TestPolicyHandler_HandlePlanTrip(t *testing.T) {
	handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

	t.Run("arrival before departure rejected", func(t *testing.T) {
		body := `{
			"origin": "Yaoundé Centre",
			"destination": "Douala Port",
			"depart_at": "2025-03-14T10:00:00Z",
			"arrive_at": "2025-03-14T08:00:00Z",
			"bus_id": 1,
			"driver_id": 1,
			"price": 6500
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/plan-trip", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.HandlePlanTrip(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid request evaluates", func(t *testing.T) {
		body := `{
			"origin": "Yaoundé Centre",
			"destination": "Douala Port",
			"depart_at": "2025-03-14T08:00:00Z",
			"arrive_at": "2025-03-14T12:00:00Z",
			"bus_id": 1,
			"driver_id": 1,
			"price": 6500
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/plan-trip", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.HandlePlanTrip(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPolicyHandler_HandleDeparture(t *testing.T) {
	t.Run("parses trip id from path", func(t *testing.T) {
		evaluator := &stubEvaluator{result: allowResult()}
		handler := NewPolicyHandler(evaluator, zap.NewNop())

		router := chi.NewRouter()
		router.Post("/policies/departure/{tripID}", handler.HandleDeparture)

		req := httptest.NewRequest(http.MethodPost, "/policies/departure/42", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), evaluator.gotTripID)
	})

	t.Run("non-numeric trip id answers 400", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

		router := chi.NewRouter()
		router.Post("/policies/departure/{tripID}", handler.HandleDeparture)

		req := httptest.NewRequest(http.MethodPost, "/policies/departure/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPolicyHandler_HandleMaintenance(t *testing.T) {
	evaluator := &stubEvaluator{result: denyResult()}
	handler := NewPolicyHandler(evaluator, zap.NewNop())

	router := chi.NewRouter()
	router.Post("/policies/maintenance/{busID}", handler.HandleMaintenance)

	req := httptest.NewRequest(http.MethodPost, "/policies/maintenance/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), evaluator.gotBusID)
}

func TestPolicyHandler_HandleTransfer(t *testing.T) {
	handler := NewPolicyHandler(&stubEvaluator{result: allowResult()}, zap.NewNop())

	body := `{"bus_id": 1, "driver_id": 1, "destination": "Bafoussam", "transfer_at": "2025-03-14T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/transfer", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.HandleTransfer(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPolicyHandler_HandleStatistics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stats := &policy.Statistics{}
		stats.Buses.Total = 4
		handler := NewPolicyHandler(&stubEvaluator{stats: stats}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)
		rec := httptest.NewRecorder()

		handler.HandleStatistics(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total":4`)
	})

	t.Run("repository failure answers 500", func(t *testing.T) {
		handler := NewPolicyHandler(&stubEvaluator{statsErr: errors.New("db down")}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)
		rec := httptest.NewRecorder()

		handler.HandleStatistics(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
