package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// Orchestrator runs one full reconciliation pass
type Orchestrator interface {
	RunFull(ctx context.Context, trigger syncdomain.Trigger) (*syncdomain.SyncRun, error)
}

// SyncSchedulerConfig holds configuration for the periodic sync scheduler
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is the time between scheduled passes
	Interval time.Duration
	// RunTimeout is the maximum time a pass can run
	RunTimeout time.Duration
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}
	if c.RunTimeout <= 0 {
		return errors.New("scheduler run timeout must be positive")
	}
	return nil
}

// SyncScheduler triggers a reconciliation pass on a fixed interval. A tick
// that lands while a pass is still running is rejected by the orchestrator's
// in-progress guard and simply skipped.
type SyncScheduler struct {
	config       SyncSchedulerConfig
	orchestrator Orchestrator
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, orchestrator Orchestrator, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:       config,
		orchestrator: orchestrator,
		logger:       logger,
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	run, err := s.orchestrator.RunFull(runCtx, syncdomain.TriggerScheduled)
	if err != nil {
		if errors.Is(err, syncdomain.ErrSyncInProgress) {
			s.logger.Info("Skipping scheduled pass, previous pass still running")
			return
		}
		s.logger.Error("Scheduled sync pass failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled sync pass finished",
		zap.String("status", string(run.Status)),
		zap.Int("mutations", run.TotalMutations()),
		zap.Int("failed", run.TotalFailed()),
	)
}
