package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/voyagecm/policy-api/services/policy"
	"github.com/voyagecm/policy-api/utils"
	"go.uber.org/zap"
)

// PolicyEvaluator defines the interface for policy evaluations
type PolicyEvaluator interface {
	EvaluatePlanTrip(ctx context.Context, req *policy.PlanTripRequest) *policy.Result
	EvaluateReservation(ctx context.Context, req *policy.ReservationRequest) *policy.Result
	EvaluateAssignDriver(ctx context.Context, req *policy.AssignDriverRequest) *policy.Result
	EvaluateDeparture(ctx context.Context, tripID int64) *policy.Result
	EvaluateTransfer(ctx context.Context, req *policy.TransferRequest) *policy.Result
	EvaluateMaintenance(ctx context.Context, busID int64) *policy.Result
	GetStatistics(ctx context.Context) (*policy.Statistics, error)
}

// DecisionResponse is the wire form of a policy evaluation result.
// A DENY is a valid outcome, not an error, so every evaluation that
// reaches the engine answers 200.
type DecisionResponse struct {
	Policy      string       `json:"policy"`
	Decision    string       `json:"decision"`
	Explanation []string     `json:"explanation"`
	Trace       policy.Trace `json:"trace"`
	Timestamp   time.Time    `json:"timestamp"`

	TripID        *int64 `json:"trip_id,omitempty"`
	ReservationID *int64 `json:"reservation_id,omitempty"`
	ReservationNo string `json:"reservation_no,omitempty"`
}

func newDecisionResponse(result *policy.Result) DecisionResponse {
	return DecisionResponse{
		Policy:        string(result.Policy),
		Decision:      string(result.Decision),
		Explanation:   result.Explanation(),
		Trace:         result.Trace,
		Timestamp:     result.Timestamp,
		TripID:        result.TripID,
		ReservationID: result.ReservationID,
		ReservationNo: result.ReservationNo,
	}
}

// PolicyHandler handles policy evaluation HTTP requests
type PolicyHandler struct {
	evaluator PolicyEvaluator
	logger    *zap.Logger
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(evaluator PolicyEvaluator, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		evaluator: evaluator,
		logger:    logger,
	}
}

func (h *PolicyHandler) writeDecision(w http.ResponseWriter, result *policy.Result) {
	if err := utils.WriteJSON(w, http.StatusOK, newDecisionResponse(result)); err != nil {
		h.logger.Error("failed to write decision response", zap.Error(err))
	}
}

// HandlePlanTrip handles POST /api/v1/policies/plan-trip
func (h *PolicyHandler) HandlePlanTrip(w http.ResponseWriter, r *http.Request) {
	var req policy.PlanTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse plan trip request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluatePlanTrip(r.Context(), &req))
}

// HandleReservation handles POST /api/v1/policies/reservation
func (h *PolicyHandler) HandleReservation(w http.ResponseWriter, r *http.Request) {
	var req policy.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse reservation request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluateReservation(r.Context(), &req))
}

// HandleAssignDriver handles POST /api/v1/policies/assign-driver
func (h *PolicyHandler) HandleAssignDriver(w http.ResponseWriter, r *http.Request) {
	var req policy.AssignDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse assign driver request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluateAssignDriver(r.Context(), &req))
}

// HandleDeparture handles POST /api/v1/policies/departure/{tripID}
func (h *PolicyHandler) HandleDeparture(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid trip ID", nil)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluateDeparture(r.Context(), tripID))
}

// HandleTransfer handles POST /api/v1/policies/transfer
func (h *PolicyHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	var req policy.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse transfer request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluateTransfer(r.Context(), &req))
}

// HandleMaintenance handles POST /api/v1/policies/maintenance/{busID}
func (h *PolicyHandler) HandleMaintenance(w http.ResponseWriter, r *http.Request) {
	busID, err := strconv.ParseInt(chi.URLParam(r, "busID"), 10, 64)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid bus ID", nil)
		return
	}

	h.writeDecision(w, h.evaluator.EvaluateMaintenance(r.Context(), busID))
}

// HandleStatistics handles GET /api/v1/statistics
func (h *PolicyHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.evaluator.GetStatistics(r.Context())
	if err != nil {
		h.logger.Error("failed to assemble statistics", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, stats)
}
