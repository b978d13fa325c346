package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

var (
	ErrNotFound = apperr.NotFound("payment not found")
	// ErrNothingToSettle is returned when none of the requested vouchers can be paid.
	ErrNothingToSettle = apperr.NotFound("none of the vouchers exist or are unpaid")
	ErrNoVouchers      = apperr.Validation("at least one voucher is required")
	ErrNoOperator      = apperr.Unauthorized("operator identity is required")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	BeginSettlement(ctx context.Context) (SettlementTx, error)
	// GetPayment returns the payment with its lines.
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	AttachReceipt(ctx context.Context, paymentID uuid.UUID, path string) error
	// ListPayments returns payments made in [from, to) with their lines, oldest first.
	ListPayments(ctx context.Context, from, to time.Time) ([]*Payment, error)
}

type SettlementTx interface {
	// ListSettleable locks and returns the PENDING or OVERDUE vouchers among ids.
	ListSettleable(ctx context.Context, ids []uuid.UUID) ([]*Line, error)
	CreatePayment(ctx context.Context, p *Payment) error
	MarkPaid(ctx context.Context, paymentID uuid.UUID, voucherIDs []uuid.UUID) error
	Commit() error
	Rollback() error
}

// Renderer produces the receipt document of a payment and returns where it was written.
type Renderer interface {
	Render(ctx context.Context, p *Payment) (string, error)
}

type Service struct {
	repo     Repository
	renderer Renderer
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, renderer Renderer, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		renderer: renderer,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Settle pays the given vouchers in one payment. Ids that do not resolve to an unpaid
// voucher are skipped and reported in Payment.Skipped. The receipt is rendered after the
// payment commits; a rendering failure is logged and leaves ReceiptPath empty.
func (s *Service) Settle(ctx context.Context, operatorID uuid.UUID, voucherIDs []uuid.UUID) (*Payment, error) {
	if operatorID == uuid.Nil {
		return nil, ErrNoOperator
	}

	ids := dedupe(voucherIDs)
	if len(ids) == 0 {
		return nil, ErrNoVouchers
	}

	stx, err := s.repo.BeginSettlement(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}
	defer stx.Rollback()

	lines, err := stx.ListSettleable(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading vouchers: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrNothingToSettle
	}

	p := &Payment{
		OperatorID: operatorID,
		AmountPaid: decimal.Zero,
		PaidAt:     s.now(),
		Lines:      lines,
	}

	for _, l := range lines {
		p.AmountPaid = p.AmountPaid.Add(l.Voucher.TotalDue)
	}

	p.Skipped = skipped(ids, lines)

	if err := stx.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	if err := stx.MarkPaid(ctx, p.ID, p.voucherIDs()); err != nil {
		return nil, fmt.Errorf("marking vouchers paid: %w", err)
	}

	if err := stx.Commit(); err != nil {
		return nil, apperr.Dependency("committing settlement", err)
	}

	for _, l := range lines {
		paymentID := p.ID
		l.Voucher.Status = voucher.StatusPaid
		l.Voucher.PaymentID = &paymentID
	}

	s.logger.Info("vouchers settled",
		"payment_id", p.ID,
		"operator_id", operatorID,
		"vouchers", len(lines),
		"skipped", len(p.Skipped),
		"amount_paid", p.AmountPaid.String(),
	)

	if err := s.attachReceipt(ctx, p); err != nil {
		s.logger.Error("receipt not attached", "payment_id", p.ID, "error", err)
	}

	return p, nil
}

// ReissueReceipt renders and attaches the receipt of an existing payment again.
func (s *Service) ReissueReceipt(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.attachReceipt(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]*Payment, error) {
	if !from.Before(to) {
		return nil, apperr.Validation("date range is empty")
	}

	return s.repo.ListPayments(ctx, from, to)
}

func (s *Service) attachReceipt(ctx context.Context, p *Payment) error {
	if s.renderer == nil {
		return apperr.Dependency("rendering receipt", fmt.Errorf("no renderer configured"))
	}

	path, err := s.renderer.Render(ctx, p)
	if err != nil {
		return apperr.Dependency("rendering receipt", err)
	}

	if err := s.repo.AttachReceipt(ctx, p.ID, path); err != nil {
		return fmt.Errorf("attaching receipt: %w", err)
	}

	p.ReceiptPath = path

	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func skipped(requested []uuid.UUID, lines []*Line) []uuid.UUID {
	found := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		found[l.Voucher.ID] = struct{}{}
	}

	var out []uuid.UUID

	for _, id := range requested {
		if _, ok := found[id]; !ok {
			out = append(out, id)
		}
	}

	return out
}
