package tariff

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("tariff category not found")

	errEmptyName         = apperr.Validation("category name is required")
	errNegativeAllowance = apperr.Validation("basic allowance cannot be negative")
	errBaseRate          = apperr.Validation("base rate must be greater than zero")
	errExcessRate        = apperr.Validation("excess rate must be greater than zero")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=tariff
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CategoryParams struct {
	Name            string
	Description     string
	BasicAllowance  decimal.Decimal
	BaseRate        decimal.Decimal
	ExcessRate      decimal.Decimal
	ExponentialMora bool
}

func (p CategoryParams) apply(c *Category) {
	c.Name = p.Name
	c.Description = p.Description
	c.BasicAllowance = p.BasicAllowance
	c.BaseRate = p.BaseRate
	c.ExcessRate = p.ExcessRate
	c.ExponentialMora = p.ExponentialMora
}

func (s *Service) Create(ctx context.Context, params CategoryParams) (*Category, error) {
	c := &Category{}
	params.apply(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// Update replaces every editable field of the category.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params CategoryParams) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	params.apply(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}
