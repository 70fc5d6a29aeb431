package policy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

// Reporter receives the decision log entry produced by each evaluation.
// Reporting is best-effort and never changes the decision.
type Reporter interface {
	Report(log *models.DecisionLog) error
}

// PolicyService evaluates the six authorization policies. Every evaluation
// follows the same contract: all predicates of the policy are evaluated in
// order without short-circuiting, the decision is ALLOW only when every
// predicate passed, and the policy's single mutation runs atomically with
// the reads inside one transaction. Any internal failure yields DENY.
type PolicyService struct {
	buses        repositories.BusRepository
	drivers      repositories.DriverRepository
	trips        repositories.TripRepository
	users        repositories.UserRepository
	reservations repositories.ReservationRepository
	txManager    repositories.TransactionManager
	reporter     Reporter
	logger       *zap.Logger
	now          func() time.Time
}

// NewPolicyService creates a new policy service
func NewPolicyService(
	repos *repositories.Repositories,
	txManager repositories.TransactionManager,
	reporter Reporter,
	logger *zap.Logger,
) *PolicyService {
	return &PolicyService{
		buses:        repos.Buses,
		drivers:      repos.Drivers,
		trips:        repos.Trips,
		users:        repos.Users,
		reservations: repos.Reservations,
		txManager:    txManager,
		reporter:     reporter,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *PolicyService) newResult(policy models.PolicyName) *Result {
	return &Result{
		Policy:    policy,
		Decision:  DecisionDeny,
		Timestamp: s.now(),
	}
}

// finish settles the decision from the trace and reports it
func (s *PolicyService) finish(ctx context.Context, result *Result, refs map[string]int64) *Result {
	if result.Trace.AllPassed() {
		result.Decision = DecisionAllow
	} else {
		result.Decision = DecisionDeny
	}
	s.report(ctx, result, refs)
	return result
}

// deny settles a DENY decision without inspecting the trace
func (s *PolicyService) deny(ctx context.Context, result *Result, refs map[string]int64) *Result {
	result.Decision = DecisionDeny
	s.report(ctx, result, refs)
	return result
}

// errorResult converts an internal failure into a DENY with an error trace
// entry. The failed evaluation never surfaces as a transport error.
func (s *PolicyService) errorResult(ctx context.Context, result *Result, refs map[string]int64, err error) *Result {
	s.logger.Error("policy evaluation failed",
		zap.String("policy", string(result.Policy)),
		zap.Error(err))

	result.Decision = DecisionDeny
	result.TripID = nil
	result.ReservationID = nil
	result.ReservationNo = ""
	result.Trace.Add("Error", false, "evaluation failed, request denied")
	s.report(ctx, result, refs)
	return result
}

func (s *PolicyService) report(ctx context.Context, result *Result, refs map[string]int64) {
	if s.reporter == nil {
		return
	}

	var entityRefs json.RawMessage
	if len(refs) > 0 {
		if data, err := json.Marshal(refs); err == nil {
			entityRefs = data
		}
	}

	explanation := ""
	for i, line := range result.Explanation() {
		if i > 0 {
			explanation += "\n"
		}
		explanation += line
	}

	log := &models.DecisionLog{
		Policy:      result.Policy,
		Decision:    string(result.Decision),
		Explanation: explanation,
		EntityRefs:  entityRefs,
		RequestID:   chimiddleware.GetReqID(ctx),
		CreatedAt:   result.Timestamp,
	}

	if err := s.reporter.Report(log); err != nil {
		s.logger.Warn("failed to report decision",
			zap.String("policy", string(log.Policy)),
			zap.Error(err))
	}
}

// notFoundEntry records a failed existence predicate for a missing entity
func notFoundEntry(trace *Trace, predicate, entity string) {
	trace.Add(predicate, false, entity+" not found")
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
