package admin

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wishlist/internal/config"
	apperrors "wishlist/internal/errors"
)

const (
	issuer  = "wishlist"
	subject = "admin"
)

// Authenticator checks the shared admin password and issues signed session
// tokens for it.
type Authenticator struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthenticator(cfg config.AdminConfig) *Authenticator {
	return &Authenticator{
		passwordHash: []byte(cfg.PasswordHash),
		secret:       []byte(cfg.TokenSecret),
		ttl:          cfg.TokenTTL,
		now:          time.Now,
	}
}

// Login returns a token valid until expiresAt when password matches.
func (a *Authenticator) Login(password string) (token string, expiresAt time.Time, err error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorizedError("invalid password")
	}

	now := a.now()
	expiresAt = now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError("failed to sign token", err)
	}

	return signed, expiresAt.Truncate(time.Second), nil
}

// Verify validates signature, issuer, subject and expiry of an admin token.
func (a *Authenticator) Verify(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	keyFunc := func(*jwt.Token) (any, error) { return a.secret, nil }

	_, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("invalid token: %v", err))
	}
	return claims, nil
}
