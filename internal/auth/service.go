package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("operator not found")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrUsernameTaken      = apperr.Validation("username already registered")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	CreateOperator(ctx context.Context, o *Operator) error
	GetOperator(ctx context.Context, id uuid.UUID) (*Operator, error)
	GetByUsername(ctx context.Context, username string) (*Operator, error)
}

type Service struct {
	repo   Repository
	hasher Hasher
	tokens *TokenService
}

func NewService(repo Repository, hasher Hasher, tokens *TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

type CreateParams struct {
	Username string
	FullName string
	Password string
	Role     Role
}

func (s *Service) CreateOperator(ctx context.Context, params CreateParams) (*Operator, error) {
	username := normalize(params.Username)
	if username == "" || params.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	if !params.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", params.Role)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	o := &Operator{
		Username:     username,
		FullName:     strings.TrimSpace(params.FullName),
		PasswordHash: hash,
		Role:         params.Role,
		Active:       true,
	}

	if err := s.repo.CreateOperator(ctx, o); err != nil {
		return nil, err
	}

	slog.Info("operator created", "operator_id", o.ID, "username", o.Username, "role", o.Role)

	return o, nil
}

// Login verifies the credentials of an active operator and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Operator, error) {
	username = normalize(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	o, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if !o.Active {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(o.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(Identity{OperatorID: o.ID, Role: o.Role})
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}

	return token, o, nil
}

// Me returns the operator behind an authenticated context.
func (s *Service) Me(ctx context.Context) (*Operator, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("not authenticated")
	}

	return s.repo.GetOperator(ctx, id.OperatorID)
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
