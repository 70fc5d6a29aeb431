package postgres

import (
	"context"
	"fmt"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

// DecisionLogRepository implements the repositories.DecisionLogRepository interface
type DecisionLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDecisionLogRepository creates a new decision log repository
func NewDecisionLogRepository(db *DB, logger *zap.Logger) repositories.DecisionLogRepository {
	return &DecisionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert records a policy decision
func (r *DecisionLogRepository) Insert(ctx context.Context, log *models.DecisionLog) error {
	query := `
		INSERT INTO decision_logs (policy, decision, explanation, entity_refs, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		log.Policy,
		log.Decision,
		log.Explanation,
		log.EntityRefs,
		log.RequestID,
		log.CreatedAt,
	).Scan(&log.ID)

	if err != nil {
		return fmt.Errorf("failed to insert decision log: %w", err)
	}

	r.logger.Debug("decision logged",
		zap.String("policy", string(log.Policy)),
		zap.String("decision", log.Decision))
	return nil
}

// ListRecent retrieves the most recent decisions, newest first
func (r *DecisionLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.DecisionLog, error) {
	query := `
		SELECT id, policy, decision, explanation, entity_refs, request_id, created_at
		FROM decision_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.DecisionLog
	for rows.Next() {
		log := &models.DecisionLog{}
		err := rows.Scan(
			&log.ID,
			&log.Policy,
			&log.Decision,
			&log.Explanation,
			&log.EntityRefs,
			&log.RequestID,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision log rows: %w", err)
	}

	return logs, nil
}
