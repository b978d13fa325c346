package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/tariff"
)

const foreignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCategoryColumns = `
	id, name, description, basic_allowance, base_rate, excess_rate, exponential_mora, created_at, updated_at
`

func scanCategory(s scanner) (*tariff.Category, error) {
	var c tariff.Category

	if err := s.Scan(
		&c.ID, &c.Name, &c.Description, &c.BasicAllowance, &c.BaseRate, &c.ExcessRate,
		&c.ExponentialMora, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *tariff.Category) error {
	query := `
		INSERT INTO tariff_categories (name, description, basic_allowance, base_rate, excess_rate, exponential_mora, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name,
		c.Description,
		c.BasicAllowance,
		c.BaseRate,
		c.ExcessRate,
		c.ExponentialMora,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return apperr.Dependency("creating tariff category", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*tariff.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM tariff_categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tariff.ErrNotFound
		}

		return nil, apperr.Dependency("getting tariff category", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*tariff.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM tariff_categories ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Dependency("listing tariff categories", err)
	}
	defer rows.Close()

	var categories []*tariff.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.Dependency("scanning tariff category", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating tariff categories", err)
	}

	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *tariff.Category) error {
	query := `
		UPDATE tariff_categories
		SET name = $1, description = $2, basic_allowance = $3, base_rate = $4, excess_rate = $5,
			exponential_mora = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name,
		c.Description,
		c.BasicAllowance,
		c.BaseRate,
		c.ExcessRate,
		c.ExponentialMora,
		c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tariff.ErrNotFound
		}

		return apperr.Dependency("updating tariff category", err)
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tariff_categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return apperr.Validation("tariff category is still assigned to meters")
		}

		return apperr.Dependency("deleting tariff category", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("deleting tariff category", err)
	}

	if n == 0 {
		return tariff.ErrNotFound
	}

	return nil
}

var _ tariff.Repository = (*Store)(nil)
