package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "wishlist/internal/errors"
)

type TokenAuthority interface {
	Login(password string) (string, time.Time, error)
	Verify(raw string) (*jwt.RegisteredClaims, error)
}

type Controller struct {
	auth   TokenAuthority
	logger *zap.Logger
}

func NewController(auth TokenAuthority, logger *zap.Logger) *Controller {
	return &Controller{
		auth:   auth,
		logger: logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionResponse struct {
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const maxLoginBody = 4 << 10

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "VALIDATION_ERROR",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Password == "" {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "VALIDATION_ERROR",
			Message: "password is required",
		})
		return
	}

	token, expiresAt, err := c.auth.Login(req.Password)
	if err != nil {
		if _, ok := apperrors.IsUnauthorizedError(err); ok {
			c.logger.Warn("admin login rejected")
			c.writeUnauthorized(w, "invalid password")
			return
		}
		c.logger.Error("admin login failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL_ERROR",
			Message: "an unexpected error occurred",
		})
		return
	}

	c.logger.Info("admin logged in")
	c.writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt.UTC()})
}

// HandleSession reports whether the presented token is a valid admin session.
func (c *Controller) HandleSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.authenticate(w, r)
	if !ok {
		return
	}
	c.writeJSON(w, http.StatusOK, sessionResponse{Admin: true, ExpiresAt: claims.ExpiresAt.Time.UTC()})
}

type claimsKey struct{}

// RequireAdmin rejects requests that do not carry a valid admin token.
func (c *Controller) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := c.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// ClaimsFromContext returns the admin claims attached by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.RegisteredClaims)
	return claims, ok
}

func (c *Controller) authenticate(w http.ResponseWriter, r *http.Request) (*jwt.RegisteredClaims, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		c.writeUnauthorized(w, "missing bearer token")
		return nil, false
	}

	claims, err := c.auth.Verify(strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		c.logger.Debug("admin token rejected", zap.Error(err))
		c.writeUnauthorized(w, "invalid or expired token")
		return nil, false
	}
	return claims, true
}

func (c *Controller) writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="wishlist"`)
	c.writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:   "UNAUTHORIZED",
		Message: message,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
