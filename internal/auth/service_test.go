package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
)

func newService(t *testing.T) (*auth.Service, *auth.MockRepository, *auth.TokenService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := auth.NewMockRepository(ctrl)
	tokens := auth.NewTokenService("secret", time.Hour)

	return auth.NewService(repo, auth.NewBcryptHasher(bcrypt.MinCost), tokens), repo, tokens
}

func operator(t *testing.T, password string, active bool) *auth.Operator {
	t.Helper()

	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)

	return &auth.Operator{
		ID:           uuid.New(),
		Username:     "lecturador",
		PasswordHash: hash,
		Role:         auth.RoleOperator,
		Active:       active,
	}
}

func TestService_Login(t *testing.T) {
	svc, repo, tokens := newService(t)

	o := operator(t, "s3cret", true)
	repo.EXPECT().GetByUsername(gomock.Any(), "lecturador").Return(o, nil)

	token, got, err := svc.Login(context.Background(), "  Lecturador ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, o, got)

	id, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, o.ID, id.OperatorID)
	assert.Equal(t, auth.RoleOperator, id.Role)
}

func TestService_Login_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		setupMock func(t *testing.T, m *auth.MockRepository)
	}{
		{
			name:     "WrongPassword",
			password: "guess",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "lecturador").Return(operator(t, "s3cret", true), nil)
			},
		},
		{
			name:     "UnknownUser",
			password: "s3cret",
			setupMock: func(_ *testing.T, m *auth.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "lecturador").Return(nil, auth.ErrNotFound)
			},
		},
		{
			name:     "Inactive",
			password: "s3cret",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "lecturador").Return(operator(t, "s3cret", false), nil)
			},
		},
		{
			name:     "EmptyPassword",
			password: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(t, repo)
			}

			_, _, err := svc.Login(context.Background(), "lecturador", tt.password)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestService_CreateOperator(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.EXPECT().GetByUsername(gomock.Any(), "cajero").Return(nil, auth.ErrNotFound)
	repo.EXPECT().CreateOperator(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *auth.Operator) error {
			o.ID = uuid.New()
			return nil
		})

	got, err := svc.CreateOperator(context.Background(), auth.CreateParams{
		Username: "Cajero",
		FullName: "Ana Condori",
		Password: "pw",
		Role:     auth.RoleCashier,
	})
	require.NoError(t, err)

	assert.Equal(t, "cajero", got.Username)
	assert.True(t, got.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("pw")))
}

func TestService_CreateOperator_Invalid(t *testing.T) {
	svc, repo, _ := newService(t)

	_, err := svc.CreateOperator(context.Background(), auth.CreateParams{Username: "x", Password: "pw", Role: "ROOT"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	repo.EXPECT().GetByUsername(gomock.Any(), "x").Return(&auth.Operator{}, nil)

	_, err = svc.CreateOperator(context.Background(), auth.CreateParams{Username: "x", Password: "pw", Role: auth.RoleAdmin})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestService_Me(t *testing.T) {
	svc, repo, _ := newService(t)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	o := &auth.Operator{ID: uuid.New()}
	repo.EXPECT().GetOperator(gomock.Any(), o.ID).Return(o, nil)

	ctx := auth.WithIdentity(context.Background(), auth.Identity{OperatorID: o.ID, Role: auth.RoleAdmin})

	got, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, o, got)
	assert.Equal(t, o.ID, auth.OperatorID(ctx))
}
