package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectOperatorColumns = `id, username, full_name, password_hash, role, active, created_at`

func scanOperator(s scanner) (*auth.Operator, error) {
	var o auth.Operator

	var role string

	if err := s.Scan(&o.ID, &o.Username, &o.FullName, &o.PasswordHash, &role, &o.Active, &o.CreatedAt); err != nil {
		return nil, err
	}

	o.Role = auth.Role(role)

	return &o, nil
}

func (s *Store) CreateOperator(ctx context.Context, o *auth.Operator) error {
	query := `
		INSERT INTO operators (username, full_name, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, o.Username, o.FullName, o.PasswordHash, o.Role, o.Active).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.ErrUsernameTaken
		}

		return apperr.Dependency("creating operator", err)
	}

	return nil
}

func (s *Store) GetOperator(ctx context.Context, id uuid.UUID) (*auth.Operator, error) {
	return s.get(ctx, `SELECT `+selectOperatorColumns+` FROM operators WHERE id = $1`, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*auth.Operator, error) {
	return s.get(ctx, `SELECT `+selectOperatorColumns+` FROM operators WHERE username = $1`, username)
}

func (s *Store) get(ctx context.Context, query string, arg any) (*auth.Operator, error) {
	o, err := scanOperator(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}

		return nil, apperr.Dependency("getting operator", err)
	}

	return o, nil
}

var _ auth.Repository = (*Store)(nil)
