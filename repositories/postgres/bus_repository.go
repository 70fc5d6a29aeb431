package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

const busColumns = `id, registration, category, capacity, status, current_agency, current_passengers`

// BusRepository implements the repositories.BusRepository interface
type BusRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBusRepository creates a new bus repository
func NewBusRepository(db *DB, logger *zap.Logger) repositories.BusRepository {
	return &BusRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new bus and assigns its ID
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	query := `
		INSERT INTO buses (registration, category, capacity, status, current_agency, current_passengers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		bus.Registration,
		bus.Category,
		bus.Capacity,
		bus.Status,
		bus.CurrentAgency,
		bus.CurrentPassengers,
	).Scan(&bus.ID)

	if err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}

	r.logger.Debug("bus created", zap.Int64("id", bus.ID), zap.String("registration", bus.Registration))
	return nil
}

func (r *BusRepository) scanBus(row *sql.Row) (*models.Bus, error) {
	bus := &models.Bus{}
	err := row.Scan(
		&bus.ID,
		&bus.Registration,
		&bus.Category,
		&bus.Capacity,
		&bus.Status,
		&bus.CurrentAgency,
		&bus.CurrentPassengers,
	)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(ctx context.Context, id int64) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	bus, err := r.scanBus(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("bus %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}

	return bus, nil
}

// GetByIDForUpdate retrieves a bus by ID holding a row lock.
// NOWAIT makes a concurrent evaluation fail fast instead of queueing.
func (r *BusRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1 FOR UPDATE NOWAIT`

	executor := GetExecutor(ctx, r.db)
	bus, err := r.scanBus(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("bus %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock bus: %w", err)
	}

	return bus, nil
}

// GetByRegistration retrieves a bus by its registration plate
func (r *BusRepository) GetByRegistration(ctx context.Context, registration string) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE registration = $1`

	executor := GetExecutor(ctx, r.db)
	bus, err := r.scanBus(executor.QueryRowContext(ctx, query, registration))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("bus %s: %w", registration, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}

	return bus, nil
}

func (r *BusRepository) queryBuses(ctx context.Context, query string, args ...interface{}) ([]*models.Bus, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query buses: %w", err)
	}
	defer rows.Close()

	var buses []*models.Bus
	for rows.Next() {
		bus := &models.Bus{}
		err := rows.Scan(
			&bus.ID,
			&bus.Registration,
			&bus.Category,
			&bus.Capacity,
			&bus.Status,
			&bus.CurrentAgency,
			&bus.CurrentPassengers,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bus: %w", err)
		}
		buses = append(buses, bus)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bus rows: %w", err)
	}

	return buses, nil
}

// List retrieves all buses
func (r *BusRepository) List(ctx context.Context) ([]*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses ORDER BY id`
	return r.queryBuses(ctx, query)
}

// ListByAgency retrieves the buses stationed at an agency
func (r *BusRepository) ListByAgency(ctx context.Context, agency string) ([]*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE current_agency = $1 ORDER BY id`
	return r.queryBuses(ctx, query, agency)
}

// Count returns the total number of buses
func (r *BusRepository) Count(ctx context.Context) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM buses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count buses: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of buses in the given status
func (r *BusRepository) CountByStatus(ctx context.Context, status models.BusStatus) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM buses WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count buses by status: %w", err)
	}
	return count, nil
}

// Save updates a bus by ID
func (r *BusRepository) Save(ctx context.Context, bus *models.Bus) error {
	query := `
		UPDATE buses
		SET registration = $2,
		    category = $3,
		    capacity = $4,
		    status = $5,
		    current_agency = $6,
		    current_passengers = $7
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		bus.ID,
		bus.Registration,
		bus.Category,
		bus.Capacity,
		bus.Status,
		bus.CurrentAgency,
		bus.CurrentPassengers,
	)

	if err != nil {
		return fmt.Errorf("failed to update bus: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("bus %d: %w", bus.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("bus updated", zap.Int64("id", bus.ID), zap.String("status", string(bus.Status)))
	return nil
}
