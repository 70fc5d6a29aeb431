package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/voyagecm/policy-api/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Buses table
		CREATE TABLE IF NOT EXISTS buses (
			id BIGSERIAL PRIMARY KEY,
			registration VARCHAR(50) NOT NULL UNIQUE,
			category VARCHAR(20) NOT NULL,
			capacity INTEGER NOT NULL,
			status VARCHAR(30) NOT NULL,
			current_agency VARCHAR(100) NOT NULL,
			current_passengers INTEGER NOT NULL DEFAULT 0
		);

		-- Drivers table
		CREATE TABLE IF NOT EXISTS drivers (
			id BIGSERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			license_no VARCHAR(50) NOT NULL UNIQUE,
			status VARCHAR(30) NOT NULL,
			current_agency VARCHAR(100) NOT NULL,
			hours_worked INTEGER NOT NULL DEFAULT 0,
			last_trip_at TIMESTAMP
		);

		-- Trips table
		CREATE TABLE IF NOT EXISTS trips (
			id BIGSERIAL PRIMARY KEY,
			origin VARCHAR(100) NOT NULL,
			destination VARCHAR(100) NOT NULL,
			depart_at TIMESTAMP NOT NULL,
			arrive_at TIMESTAMP NOT NULL,
			bus_id BIGINT REFERENCES buses(id),
			driver_id BIGINT REFERENCES drivers(id),
			status VARCHAR(30) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			seats_booked INTEGER NOT NULL DEFAULT 0
		);

		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50),
			client_type VARCHAR(20) NOT NULL,
			balance DECIMAL(12, 2) NOT NULL DEFAULT 0,
			trip_count INTEGER NOT NULL DEFAULT 0
		);

		-- Reservations table
		CREATE TABLE IF NOT EXISTS reservations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			trip_id BIGINT NOT NULL REFERENCES trips(id),
			seat_count INTEGER NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			status VARCHAR(30) NOT NULL,
			reservation_no VARCHAR(30) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			paid_at TIMESTAMP
		);

		-- Decision logs table
		CREATE TABLE IF NOT EXISTS decision_logs (
			id BIGSERIAL PRIMARY KEY,
			policy VARCHAR(50) NOT NULL,
			decision VARCHAR(10) NOT NULL,
			explanation TEXT NOT NULL,
			entity_refs JSONB,
			request_id VARCHAR(255),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_buses_status ON buses(status);
		CREATE INDEX IF NOT EXISTS idx_buses_current_agency ON buses(current_agency);

		CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status);
		CREATE INDEX IF NOT EXISTS idx_drivers_current_agency ON drivers(current_agency);

		CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);
		CREATE INDEX IF NOT EXISTS idx_trips_destination_arrive_at ON trips(destination, arrive_at);
		CREATE INDEX IF NOT EXISTS idx_trips_bus_id ON trips(bus_id);
		CREATE INDEX IF NOT EXISTS idx_trips_driver_id ON trips(driver_id);

		CREATE INDEX IF NOT EXISTS idx_reservations_trip_id ON reservations(trip_id);
		CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);
		CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status);

		CREATE INDEX IF NOT EXISTS idx_decision_logs_policy ON decision_logs(policy);
		CREATE INDEX IF NOT EXISTS idx_decision_logs_created_at ON decision_logs(created_at);
		CREATE INDEX IF NOT EXISTS idx_decision_logs_request_id ON decision_logs(request_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
