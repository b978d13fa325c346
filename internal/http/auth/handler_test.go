package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/aguacoop/aguacoop/internal/auth"
	authHandler "github.com/aguacoop/aguacoop/internal/http/auth"
	"github.com/aguacoop/aguacoop/internal/http/middleware"
)

type fixture struct {
	repo   *auth.MockRepository
	tokens *auth.TokenService
	router chi.Router
	admin  *auth.Operator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	f := &fixture{
		repo:   auth.NewMockRepository(ctrl),
		tokens: auth.NewTokenService("test-secret", time.Hour),
		admin: &auth.Operator{
			ID:           uuid.New(),
			Username:     "admin",
			FullName:     "Ana Condori",
			PasswordHash: hash,
			Role:         auth.RoleAdmin,
			Active:       true,
		},
	}

	f.router = chi.NewRouter()
	authHandler.NewHandler(auth.NewService(f.repo, hasher, f.tokens), f.tokens).Routes(f.router)

	return f
}

func post(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	return r
}

func TestHandler_Login(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetByUsername(gomock.Any(), "admin").Return(f.admin, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, post("/login", `{"username":" Admin ","password":"correct-horse"}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
		Operator  struct {
			ID   uuid.UUID `json:"id"`
			Role string    `json:"role"`
		} `json:"operator"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(3600), body.ExpiresIn)
	assert.Equal(t, f.admin.ID, body.Operator.ID)
	assert.Equal(t, "ADMIN", body.Operator.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	id, err := f.tokens.Validate(body.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, id.OperatorID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetByUsername(gomock.Any(), "admin").Return(f.admin, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, post("/login", `{"username":"admin","password":"nope"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestHandler_Me(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetOperator(gomock.Any(), f.admin.ID).Return(f.admin, nil)

	token, err := f.tokens.Generate(auth.Identity{OperatorID: f.admin.ID, Role: auth.RoleAdmin})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"admin"`)
}

func TestHandler_CreateOperator_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	token, err := f.tokens.Generate(auth.Identity{OperatorID: uuid.New(), Role: auth.RoleCashier})
	require.NoError(t, err)

	r := post("/operators", `{"username":"caja2","password":"12345678","role":"CASHIER"}`)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_CreateOperator_InvalidRole(t *testing.T) {
	f := newFixture(t)

	token, err := f.tokens.Generate(auth.Identity{OperatorID: f.admin.ID, Role: auth.RoleAdmin})
	require.NoError(t, err)

	r := post("/operators", `{"username":"caja2","password":"12345678","role":"ROOT"}`)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "role must be one of")
}
