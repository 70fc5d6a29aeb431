package decisions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voyagecm/policy-api/models"
	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

// DecisionReporter persists policy decisions asynchronously. Reporting is
// decoupled from evaluation so a slow or failing insert never delays or
// changes a decision.
type DecisionReporter struct {
	decisionRepo repositories.DecisionLogRepository
	logger       *zap.Logger
	eventChan    chan *models.DecisionLog
	workerCount  int
	bufferSize   int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	started      bool
	mu           sync.Mutex
}

// Config holds configuration for the DecisionReporter
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewDecisionReporter creates a new DecisionReporter instance
func NewDecisionReporter(decisionRepo repositories.DecisionLogRepository, logger *zap.Logger, config Config) *DecisionReporter {
	ctx, cancel := context.WithCancel(context.Background())

	return &DecisionReporter{
		decisionRepo: decisionRepo,
		logger:       logger,
		eventChan:    make(chan *models.DecisionLog, config.BufferSize),
		workerCount:  config.WorkerCount,
		bufferSize:   config.BufferSize,
		ctx:          ctx,
		cancel:       cancel,
		started:      false,
	}
}

// Start starts the background workers
func (s *DecisionReporter) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("decision reporter already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started decision reporter",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop gracefully stops the reporter.
// Waits for all pending decisions to be written.
func (s *DecisionReporter) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("decision reporter not started")
	}
	// Flip started and close under the same lock Report sends under, so a
	// concurrent Report either enqueues before the close or fails cleanly.
	s.started = false
	pending := len(s.eventChan)
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping decision reporter", zap.Int("pending_events", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("decision reporter stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("decision reporter stop timeout after %v", timeout)
	}
}

// Report queues a decision for persistence (non-blocking).
// Returns immediately; the decision is written in the background.
func (s *DecisionReporter) Report(log *models.DecisionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("decision reporter not started")
	}

	select {
	case s.eventChan <- log:
		return nil
	default:
		s.logger.Warn("decision buffer full, dropping entry",
			zap.String("policy", string(log.Policy)),
			zap.String("decision", log.Decision))
		return fmt.Errorf("decision buffer full")
	}
}

// worker processes decisions from the channel
func (s *DecisionReporter) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("decision worker started", zap.Int("worker_id", id))

	for log := range s.eventChan {
		if err := s.process(log); err != nil {
			s.logger.Error("failed to persist decision",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("policy", string(log.Policy)))
		}
	}

	s.logger.Debug("decision worker stopped", zap.Int("worker_id", id))
}

// process writes a single decision
func (s *DecisionReporter) process(log *models.DecisionLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.decisionRepo.Insert(ctx, log); err != nil {
		return fmt.Errorf("failed to insert decision log: %w", err)
	}

	return nil
}

// GetStats returns statistics about the reporter
func (s *DecisionReporter) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}

// Stats represents reporter statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}
