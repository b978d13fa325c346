// Package scheduler runs named background jobs on cron schedules and lets callers
// trigger them on demand.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of background work.
type Job func(ctx context.Context) error

type entry struct {
	name string
	run  Job
	// running serializes scheduled and triggered runs of the same job.
	running sync.Mutex
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]*entry
}

type Option func(*Scheduler)

// WithTimeout bounds every scheduled run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func New(logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:  logger,
		timeout: 4 * time.Minute,
		jobs:    make(map[string]*entry),
	}

	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return s
}

// Add registers job under name on a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	e := &entry{name: name, run: job}

	if _, err := s.cron.AddFunc(spec, func() { s.scheduled(e) }); err != nil {
		return fmt.Errorf("scheduling %q: %w", name, err)
	}

	s.jobs[name] = e

	return nil
}

func (s *Scheduler) scheduled(e *entry) {
	if !e.running.TryLock() {
		s.logger.Warn("job still running, skipping tick", "job", e.name)
		return
	}
	defer e.running.Unlock()

	ctx := context.Background()

	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.execute(ctx, e)
}

func (s *Scheduler) execute(ctx context.Context, e *entry) error {
	start := time.Now()

	err := e.run(ctx)
	if err != nil {
		s.logger.Error("job failed", "job", e.name, "duration", time.Since(start), "error", err)
		return err
	}

	s.logger.Debug("job finished", "job", e.name, "duration", time.Since(start))

	return nil
}

// Trigger runs the named job synchronously, waiting for a run in progress to finish first.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	e.running.Lock()
	defer e.running.Unlock()

	return s.execute(ctx, e)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
