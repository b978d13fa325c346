package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/auth"
	"github.com/aguacoop/aguacoop/internal/http/middleware"
	"github.com/aguacoop/aguacoop/internal/http/respond"
)

type Handler struct {
	svc    *auth.Service
	tokens *auth.TokenService
}

func NewHandler(svc *auth.Service, tokens *auth.TokenService) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(h.tokens))
		r.Get("/me", h.me)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/operators", h.createOperator)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type operatorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      auth.Role `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expires_in"`
	Operator  operatorResponse `json:"operator"`
}

func toOperatorResponse(o *auth.Operator) operatorResponse {
	return operatorResponse{
		ID:        o.ID,
		Username:  o.Username,
		FullName:  o.FullName,
		Role:      o.Role,
		Active:    o.Active,
		CreatedAt: o.CreatedAt,
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, operator, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.ExpiresIn().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.ExpiresIn().Seconds()),
		Operator:  toOperatorResponse(operator),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	operator, err := h.svc.Me(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toOperatorResponse(operator))
}

type createOperatorRequest struct {
	Username string    `json:"username" validate:"required"`
	FullName string    `json:"full_name"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     auth.Role `json:"role" validate:"required,oneof=ADMIN OPERATOR CASHIER"`
}

func (h *Handler) createOperator(w http.ResponseWriter, r *http.Request) {
	var req createOperatorRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	operator, err := h.svc.CreateOperator(r.Context(), auth.CreateParams{
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toOperatorResponse(operator))
}
