package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	OperatorID string `json:"user_id"`
	Role       Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	if expiresIn <= 0 {
		expiresIn = 12 * time.Hour
	}

	return &TokenService{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
}

// WithClock returns a copy of t that reads time from now.
func (t *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *t
	c.now = now

	return &c
}

func (t *TokenService) ExpiresIn() time.Duration {
	return t.expiresIn
}

func (t *TokenService) Generate(id Identity) (string, error) {
	if id.OperatorID == uuid.Nil {
		return "", errors.New("token: operator id is required")
	}

	now := t.now().UTC()
	claims := Claims{
		OperatorID: id.OperatorID.String(),
		Role:       id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.OperatorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate verifies the signature and expiry of tokenString and returns its identity.
func (t *TokenService) Validate(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("token: unexpected signing method")
		}

		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("token: invalid claims")
	}

	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return Identity{}, errors.New("token: invalid operator id")
	}

	return Identity{OperatorID: operatorID, Role: claims.Role}, nil
}
