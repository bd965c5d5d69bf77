package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/metrics"
)

// The restaurant's maintenance work is daily by nature: stale day stocks
// and published outbox rows accumulate per calendar day.
const defaultSweepInterval = 24 * time.Hour

// ServiceParams configure the maintenance loop.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

// Service sweeps through the registered jobs on a fixed cadence, holding
// a cross-instance lock for the duration of each sweep.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	jobStats *metrics.JobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	svc := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		jobStats: params.Metrics,
		interval: params.Interval,
	}
	if svc.registry == nil {
		svc.registry = NewRegistry()
	}
	if svc.interval <= 0 {
		svc.interval = defaultSweepInterval
	}
	return svc, nil
}

// Run sweeps once immediately, then on every tick until the context ends.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "maintenance loop stopping")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "maintenance lock unavailable", err)
		return
	}
	if !held {
		s.logg.Info(ctx, "another worker holds the maintenance lock, skipping sweep")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "failed to release maintenance lock", err)
		}
	}()

	s.logg.Info(ctx, "maintenance sweep starting")
	for _, job := range s.registry.Jobs() {
		s.execute(ctx, job)
	}
	s.logg.Info(ctx, "maintenance sweep complete")
}

// execute runs one job, timing it and recording the outcome. A failing
// job never aborts the sweep; the remaining jobs still run.
func (s *Service) execute(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)

	s.jobStats.Observe(job.Name(), elapsed)
	jobCtx = s.logg.WithField(jobCtx, "elapsed_ms", elapsed.Milliseconds())
	if err != nil {
		s.jobStats.Failure(job.Name())
		s.logg.Error(jobCtx, "maintenance job failed", err)
		return
	}
	s.jobStats.Success(job.Name())
	s.logg.Info(jobCtx, "maintenance job done")
}
