package mora

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/billing"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

// ErrNotPending is returned by MarkOverdue when the voucher was paid or marked
// overdue after it was selected.
var ErrNotPending = apperr.Validation("voucher is no longer pending")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=mora
type Repository interface {
	// ListPending returns every PENDING voucher, earliest due date first.
	ListPending(ctx context.Context) ([]*Candidate, error)
	CountOverdue(ctx context.Context, meterID uuid.UUID) (int, error)
	// MarkOverdue marks a PENDING voucher overdue, adds AccruedLateFee to the
	// stored total and reads the resulting amounts back into v.
	MarkOverdue(ctx context.Context, v *voucher.Voucher) error
}

// JobName is the scheduler name of the sweep.
const JobName = "mora"

type Job struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last Report
}

// Report is the outcome of the latest completed run.
type Report struct {
	Result
	FinishedAt time.Time
}

type Option func(*Job)

func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(j *Job) { j.logger = l }
}

func NewJob(repo Repository, opts ...Option) *Job {
	j := &Job{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Sweep marks every PENDING voucher past its due date as OVERDUE. The late fee
// replaces AccruedLateFee and is added to TotalDue. Vouchers are processed one at a
// time so a voucher marked earlier in the sweep counts as overdue for the next one
// of the same meter. A failing voucher is logged and skipped.
func (j *Job) Sweep(ctx context.Context) (Result, error) {
	candidates, err := j.repo.ListPending(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing pending vouchers: %w", err)
	}

	now := j.now()
	res := Result{Scanned: len(candidates)}

	for _, c := range candidates {
		if !c.Voucher.IsPastDue(now) {
			continue
		}

		if err := j.accrue(ctx, c); err != nil {
			if errors.Is(err, ErrNotPending) {
				res.Skipped++
				continue
			}

			res.Failed++

			j.logger.Error("failed to accrue late fee", "voucher_id", c.Voucher.ID, "error", err)

			continue
		}

		res.Overdue++
	}

	return res, nil
}

func (j *Job) accrue(ctx context.Context, c *Candidate) error {
	v := c.Voucher

	prior, err := j.repo.CountOverdue(ctx, v.MeterID)
	if err != nil {
		return fmt.Errorf("counting overdue vouchers: %w", err)
	}

	fee := billing.LateFee(c.ExcessRate, prior, c.ExponentialMora)

	updated := *v
	updated.Status = voucher.StatusOverdue
	updated.AccruedLateFee = fee

	if err := j.repo.MarkOverdue(ctx, &updated); err != nil {
		return err
	}

	*v = updated

	j.logger.Info("voucher overdue",
		"voucher_id", v.ID,
		"meter_id", v.MeterID,
		"prior_overdue", prior,
		"late_fee", fee.String(),
		"total_due", v.TotalDue.String(),
	)

	return nil
}

// Run is the scheduler entry point; it logs the outcome of one sweep.
func (j *Job) Run(ctx context.Context) error {
	res, err := j.Sweep(ctx)
	if err != nil {
		return err
	}

	j.logger.Info("mora sweep finished",
		"scanned", res.Scanned,
		"overdue", res.Overdue,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)

	j.mu.Lock()
	j.last = Report{Result: res, FinishedAt: j.now()}
	j.mu.Unlock()

	return nil
}

// LastReport returns the outcome of the latest successful run, zero before the first.
func (j *Job) LastReport() Report {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.last
}
