// Package auth authenticates cooperative operators and carries their identity
// through request contexts.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleCashier  Role = "CASHIER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleCashier:
		return true
	}

	return false
}

// Operator is a staff account allowed to register readings or settle payments.
type Operator struct {
	ID           uuid.UUID
	Username     string
	FullName     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	OperatorID uuid.UUID
	Role       Role
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the caller stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// OperatorID returns the caller's operator id, uuid.Nil when the context is anonymous.
func OperatorID(ctx context.Context) uuid.UUID {
	id, _ := IdentityFromContext(ctx)
	return id.OperatorID
}
