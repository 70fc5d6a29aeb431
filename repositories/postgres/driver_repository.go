package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

const driverColumns = `id, first_name, last_name, license_no, status, current_agency, hours_worked, last_trip_at`

// DriverRepository implements the repositories.DriverRepository interface
type DriverRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *DB, logger *zap.Logger) repositories.DriverRepository {
	return &DriverRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new driver and assigns its ID
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (first_name, last_name, license_no, status, current_agency, hours_worked, last_trip_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		driver.FirstName,
		driver.LastName,
		driver.LicenseNo,
		driver.Status,
		driver.CurrentAgency,
		driver.HoursWorked,
		driver.LastTripAt,
	).Scan(&driver.ID)

	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	r.logger.Debug("driver created", zap.Int64("id", driver.ID), zap.String("license_no", driver.LicenseNo))
	return nil
}

func (r *DriverRepository) scanDriver(row *sql.Row) (*models.Driver, error) {
	driver := &models.Driver{}
	err := row.Scan(
		&driver.ID,
		&driver.FirstName,
		&driver.LastName,
		&driver.LicenseNo,
		&driver.Status,
		&driver.CurrentAgency,
		&driver.HoursWorked,
		&driver.LastTripAt,
	)
	if err != nil {
		return nil, err
	}
	return driver, nil
}

// GetByID retrieves a driver by ID
func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	driver, err := r.scanDriver(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("driver %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return driver, nil
}

// GetByIDForUpdate retrieves a driver by ID holding a row lock
func (r *DriverRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 FOR UPDATE NOWAIT`

	executor := GetExecutor(ctx, r.db)
	driver, err := r.scanDriver(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("driver %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock driver: %w", err)
	}

	return driver, nil
}

// List retrieves all drivers
func (r *DriverRepository) List(ctx context.Context) ([]*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		driver := &models.Driver{}
		err := rows.Scan(
			&driver.ID,
			&driver.FirstName,
			&driver.LastName,
			&driver.LicenseNo,
			&driver.Status,
			&driver.CurrentAgency,
			&driver.HoursWorked,
			&driver.LastTripAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, driver)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}

	return drivers, nil
}

// Count returns the total number of drivers
func (r *DriverRepository) Count(ctx context.Context) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count drivers: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of drivers in the given status
func (r *DriverRepository) CountByStatus(ctx context.Context, status models.DriverStatus) (int, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count drivers by status: %w", err)
	}
	return count, nil
}

// Save updates a driver by ID
func (r *DriverRepository) Save(ctx context.Context, driver *models.Driver) error {
	query := `
		UPDATE drivers
		SET first_name = $2,
		    last_name = $3,
		    license_no = $4,
		    status = $5,
		    current_agency = $6,
		    hours_worked = $7,
		    last_trip_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		driver.ID,
		driver.FirstName,
		driver.LastName,
		driver.LicenseNo,
		driver.Status,
		driver.CurrentAgency,
		driver.HoursWorked,
		driver.LastTripAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("driver %d: %w", driver.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("driver updated", zap.Int64("id", driver.ID), zap.String("status", string(driver.Status)))
	return nil
}
