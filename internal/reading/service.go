package reading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/billing"
	"github.com/aguacoop/aguacoop/internal/tariff"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

var (
	ErrNotFound      = apperr.NotFound("reading not found")
	ErrMeterNotFound = apperr.NotFound("meter not found")

	// ErrInvalidReading rejects a current value below the prior value.
	ErrInvalidReading = apperr.Validation("current reading cannot be lower than the prior reading")
	// ErrVoucherPaid rejects re-registering a reading whose voucher is already settled.
	ErrVoucherPaid = apperr.Validation("the voucher of this reading is already paid")
	ErrNoOperator  = apperr.Unauthorized("operator identity is required")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reading
type Repository interface {
	GetReading(ctx context.Context, id uuid.UUID) (*Reading, error)
	GetMeter(ctx context.Context, id uuid.UUID) (*Meter, error)

	ListRolloverCandidates(ctx context.Context, period time.Time) ([]RolloverCandidate, error)
	CreatePending(ctx context.Context, readings []*Reading) (int, error)
	ListForEntry(ctx context.Context, period time.Time) ([]*EntryRow, error)
	FindForPeriod(ctx context.Context, meterID uuid.UUID, period time.Time) (*Reading, error)

	History(ctx context.Context, filter HistoryFilter) ([]*HistoryEntry, error)
	Consumption(ctx context.Context, meterID uuid.UUID) ([]*ConsumptionEntry, error)

	BeginRegistration(ctx context.Context) (RegistrationTx, error)
}

// RegistrationTx groups the writes of one registration so they commit together.
type RegistrationTx interface {
	// VoucherForReading locks and returns the reading's voucher, nil when none exists yet.
	VoucherForReading(ctx context.Context, readingID uuid.UUID) (*voucher.Voucher, error)
	UpdateReading(ctx context.Context, r *Reading) error
	// CountPendingVouchers counts the meter's PENDING vouchers other than exclude.
	CountPendingVouchers(ctx context.Context, meterID, exclude uuid.UUID) (int, error)
	CreateVoucher(ctx context.Context, v *voucher.Voucher) error
	UpdateVoucher(ctx context.Context, v *voucher.Voucher) error
	Commit() error
	Rollback() error
}

// Categories resolves the tariff category of a meter.
type Categories interface {
	Get(ctx context.Context, id uuid.UUID) (*tariff.Category, error)
}

type Service struct {
	repo       Repository
	categories Categories
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, categories Categories, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		categories: categories,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type HistoryFilter struct {
	MeterID   *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// EnsureMonthly creates the PENDING reading of the current month for every active
// meter that has none yet. It returns how many readings were created.
func (s *Service) EnsureMonthly(ctx context.Context) (int, error) {
	now := s.now()
	period := PeriodOf(now)

	candidates, err := s.repo.ListRolloverCandidates(ctx, period)
	if err != nil {
		return 0, fmt.Errorf("listing rollover candidates: %w", err)
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	readings := make([]*Reading, len(candidates))
	for i, c := range candidates {
		prior := decimal.Zero
		if c.LastRegistered != nil {
			prior = *c.LastRegistered
		}

		readings[i] = &Reading{
			MeterID:    c.MeterID,
			Period:     period,
			PriorValue: prior,
			Status:     StatusPending,
			ReadAt:     now,
		}
	}

	created, err := s.repo.CreatePending(ctx, readings)
	if err != nil {
		return 0, fmt.Errorf("creating pending readings: %w", err)
	}

	s.logger.Info("monthly readings generated", "period", period.Format("2006-01"), "created", created)

	return created, nil
}

// ListForEntry returns this month's capture sheet, generating missing readings first.
func (s *Service) ListForEntry(ctx context.Context) ([]*EntryRow, error) {
	if _, err := s.EnsureMonthly(ctx); err != nil {
		return nil, err
	}

	return s.repo.ListForEntry(ctx, PeriodOf(s.now()))
}

// CurrentReading returns the meter's reading for this month, generating it if needed.
func (s *Service) CurrentReading(ctx context.Context, meterID uuid.UUID) (*Reading, error) {
	if _, err := s.EnsureMonthly(ctx); err != nil {
		return nil, err
	}

	return s.repo.FindForPeriod(ctx, meterID, PeriodOf(s.now()))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reading, error) {
	return s.repo.GetReading(ctx, id)
}

func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]*HistoryEntry, error) {
	return s.repo.History(ctx, filter)
}

func (s *Service) Consumption(ctx context.Context, meterID uuid.UUID) ([]*ConsumptionEntry, error) {
	if _, err := s.repo.GetMeter(ctx, meterID); err != nil {
		return nil, err
	}

	return s.repo.Consumption(ctx, meterID)
}

type RegisterParams struct {
	ReadingID    uuid.UUID
	MeterID      uuid.UUID
	OperatorID   uuid.UUID
	PriorValue   decimal.Decimal
	CurrentValue decimal.Decimal
	// Consumption is optional; when set it must equal CurrentValue - PriorValue.
	Consumption *decimal.Decimal
	Note        string
}

func (p RegisterParams) validate() error {
	if p.OperatorID == uuid.Nil {
		return ErrNoOperator
	}

	if p.ReadingID == uuid.Nil || p.MeterID == uuid.Nil {
		return apperr.Validation("reading and meter are required")
	}

	if p.PriorValue.IsNegative() || p.CurrentValue.IsNegative() {
		return apperr.Validation("reading values cannot be negative")
	}

	if p.CurrentValue.LessThan(p.PriorValue) {
		return ErrInvalidReading
	}

	if p.Consumption != nil && !p.Consumption.Equal(p.CurrentValue.Sub(p.PriorValue)) {
		return apperr.Validation("consumption must equal current minus prior reading")
	}

	return nil
}

// Registration is the outcome of registering a reading.
type Registration struct {
	Reading *Reading
	Voucher *voucher.Voucher
	Created bool
}

// Register records the operator's values for a reading and creates or refreshes its voucher.
// A reading whose voucher is already paid cannot be registered again.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Registration, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	r, err := s.repo.GetReading(ctx, params.ReadingID)
	if err != nil {
		return nil, err
	}

	if r.MeterID != params.MeterID {
		return nil, apperr.Validation("reading does not belong to meter")
	}

	meter, err := s.repo.GetMeter(ctx, params.MeterID)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.Get(ctx, meter.CategoryID)
	if err != nil {
		return nil, err
	}

	rtx, err := s.repo.BeginRegistration(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	defer rtx.Rollback()

	existing, err := rtx.VoucherForReading(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("loading voucher: %w", err)
	}

	if existing != nil && existing.Status == voucher.StatusPaid {
		return nil, ErrVoucherPaid
	}

	now := s.now()
	operatorID := params.OperatorID

	r.PriorValue = params.PriorValue
	r.CurrentValue = params.CurrentValue
	r.Consumption = params.CurrentValue.Sub(params.PriorValue)
	r.Note = params.Note
	r.Status = StatusRegistered
	r.OperatorID = &operatorID
	r.ReadAt = now

	if err := rtx.UpdateReading(ctx, r); err != nil {
		return nil, fmt.Errorf("updating reading: %w", err)
	}

	// The voucher being recomputed is not debt the member already had.
	exclude := uuid.Nil
	if existing != nil {
		exclude = existing.ID
	}

	outstanding, err := rtx.CountPendingVouchers(ctx, meter.ID, exclude)
	if err != nil {
		return nil, fmt.Errorf("counting pending vouchers: %w", err)
	}

	breakdown, err := billing.Calculate(r.Consumption, category, outstanding)
	if err != nil {
		return nil, err
	}

	v := existing
	created := v == nil

	if created {
		v = &voucher.Voucher{ReadingID: r.ID, MeterID: meter.ID}
	}

	v.OperatorID = operatorID
	v.BasicAmount = breakdown.BasicAmount
	v.ExcessAmount = breakdown.ExcessAmount
	v.AccruedLateFee = breakdown.Surcharge
	v.TotalDue = breakdown.TotalDue
	v.Status = voucher.StatusPending
	v.IssueDate = now
	v.DueDate = voucher.DueDateFor(now)

	if created {
		err = rtx.CreateVoucher(ctx, v)
	} else {
		err = rtx.UpdateVoucher(ctx, v)
	}

	if err != nil {
		return nil, fmt.Errorf("saving voucher: %w", err)
	}

	if err := rtx.Commit(); err != nil {
		return nil, apperr.Dependency("committing registration", err)
	}

	s.logger.Info("reading registered",
		"reading_id", r.ID,
		"meter_id", meter.ID,
		"consumption", r.Consumption.String(),
		"total_due", v.TotalDue.String(),
		"outstanding", outstanding,
		"voucher_created", created,
	)

	return &Registration{Reading: r, Voucher: v, Created: created}, nil
}
