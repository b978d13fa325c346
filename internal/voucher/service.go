package voucher

import (
	"context"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
)

var ErrNotFound = apperr.NotFound("voucher not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=voucher
type Repository interface {
	GetVoucher(ctx context.Context, id uuid.UUID) (*Voucher, error)
	ListUnpaid(ctx context.Context, filter UnpaidFilter) ([]*Unpaid, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UnpaidFilter narrows the unpaid listing. Zero values mean no restriction.
type UnpaidFilter struct {
	MeterID    *uuid.UUID
	MemberName string
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Voucher, error) {
	return s.repo.GetVoucher(ctx, id)
}

// ListUnpaid returns PENDING and OVERDUE vouchers, oldest issue date first.
func (s *Service) ListUnpaid(ctx context.Context, filter UnpaidFilter) ([]*Unpaid, error) {
	return s.repo.ListUnpaid(ctx, filter)
}
