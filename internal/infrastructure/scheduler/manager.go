// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SessionCollector is the garbage-collection face of the session store.
type SessionCollector interface {
	GC(ctx context.Context, maxLifetime time.Duration) int64
}

// Manager owns the process-wide gocron scheduler and the background jobs
// of the consistency engine: the periodic reconciliation pass and the
// session garbage-collection sweep. Neither job blocks the other; the
// only coordination between them is the shared relational store.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewManager creates a Manager instance.
func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: scheduler,
		logger:    log.Named("scheduler"),
	}, nil
}

// RegisterReconciliationJob runs the status reconciliation pass on the
// given interval, starting immediately.
func (m *Manager) RegisterReconciliationJob(job BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runReconciliation(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("user", "reconciliation"),
		gocron.WithName("status-reconciliation"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered reconciliation job", "interval", interval)
	return nil
}

func (m *Manager) runReconciliation(ctx context.Context, job BatchJob) {
	m.logger.Debugw("reconciliation pass started")

	startTime := biztime.NowUTC()
	repaired, err := job.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("reconciliation pass failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if repaired > 0 {
		m.logger.Infow("reconciliation pass completed",
			"repaired", repaired,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("reconciliation pass found nothing to repair",
			"duration", time.Since(startTime),
		)
	}
}

// RegisterSessionGCJob sweeps idle session rows on the given interval.
func (m *Manager) RegisterSessionGCJob(collector SessionCollector, interval, maxLifetime time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			collector.GC(ctx, maxLifetime)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("session", "gc"),
		gocron.WithName("session-gc"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered session gc job",
		"interval", interval,
		"max_lifetime", maxLifetime,
	)
	return nil
}

// Start starts the scheduler and all registered jobs.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *Manager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
