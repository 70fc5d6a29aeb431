package app

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagecm/policy-api/config"
	"github.com/voyagecm/policy-api/repositories"
	"github.com/voyagecm/policy-api/repositories/postgres"
	"github.com/voyagecm/policy-api/services/decisions"
	"github.com/voyagecm/policy-api/services/policy"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repositories *repositories.Repositories
	TxManager    repositories.TransactionManager

	// Services
	DecisionReporter *decisions.DecisionReporter
	PolicyService    *policy.PolicyService
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() error {
	d.Repositories = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices wires the decision reporter and the policy engine
func (d *Dependencies) initServices(cfg *config.Config) error {
	reporter := decisions.NewDecisionReporter(d.Repositories.DecisionLogs, d.Logger, decisions.Config{
		BufferSize:  cfg.Decisions.BufferSize,
		WorkerCount: cfg.Decisions.WorkerCount,
	})
	if err := reporter.Start(); err != nil {
		return fmt.Errorf("failed to start decision reporter: %w", err)
	}
	d.DecisionReporter = reporter

	d.PolicyService = policy.NewPolicyService(d.Repositories, d.TxManager, reporter, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Stop the decision reporter first so pending decisions are flushed
	if d.DecisionReporter != nil {
		if err := d.DecisionReporter.Stop(5 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop decision reporter: %w", err))
		} else {
			d.Logger.Info("decision reporter stopped")
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
