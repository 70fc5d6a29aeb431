package handlers

import (
	"net/http"
	"strconv"

	"github.com/voyagecm/policy-api/repositories"
	"github.com/voyagecm/policy-api/services"
	"github.com/voyagecm/policy-api/utils"
	"go.uber.org/zap"
)

// defaultDecisionLimit bounds the decision listing when no limit is given
const defaultDecisionLimit = 50

// maxDecisionLimit is the hard ceiling for the decision listing
const maxDecisionLimit = 500

// DecisionHandler exposes the decision audit trail
type DecisionHandler struct {
	decisions repositories.DecisionLogRepository
	logger    *zap.Logger
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(decisions repositories.DecisionLogRepository, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisions: decisions,
		logger:    logger,
	}
}

// HandleListDecisions handles GET /api/v1/decisions
func (h *DecisionHandler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultDecisionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			HandleServiceError(w, services.NewDomainError(services.ErrorTypeValidation, "invalid limit", nil).WithDetail("limit", raw), h.logger)
			return
		}
		limit = parsed
	}
	if limit > maxDecisionLimit {
		limit = maxDecisionLimit
	}

	logs, err := h.decisions.ListRecent(r.Context(), limit)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to list decisions", err), h.logger)
		return
	}

	_ = utils.WriteOK(w, logs)
}
