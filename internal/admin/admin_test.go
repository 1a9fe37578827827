package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wishlist/internal/config"
	apperrors "wishlist/internal/errors"
)

const (
	testPassword = "correct horse battery staple"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthenticator(config.AdminConfig{
		PasswordHash: string(hash),
		TokenSecret:  testSecret,
		TokenTTL:     time.Hour,
	})
}

func TestAuthenticator_LoginAndVerify(t *testing.T) {
	auth := newTestAuthenticator(t)

	token, expiresAt, err := auth.Login(testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "wishlist", claims.Issuer)
}

func TestAuthenticator_WrongPassword(t *testing.T) {
	auth := newTestAuthenticator(t)

	_, _, err := auth.Login("adminkasuka")
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	auth := newTestAuthenticator(t)
	issued := time.Now().Add(-2 * time.Hour)
	auth.now = func() time.Time { return issued }

	token, _, err := auth.Login(testPassword)
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.Verify(token)
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestAuthenticator_RejectsForeignTokens(t *testing.T) {
	auth := newTestAuthenticator(t)
	now := time.Now()

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: "wishlist", Subject: "admin", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	wrongSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: "wishlist", Subject: "guest", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: "wishlist", Subject: "admin",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"other secret":  otherSecret,
		"wrong subject": wrongSubject,
		"no expiry":     noExpiry,
		"garbage":       "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Verify(token)
			_, ok := apperrors.IsUnauthorizedError(err)
			assert.True(t, ok)
		})
	}
}

func TestController_HandleLogin(t *testing.T) {
	ctrl := NewController(newTestAuthenticator(t), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"`+testPassword+`"}`))
	ctrl.HandleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestController_HandleLogin_Rejections(t *testing.T) {
	ctrl := NewController(newTestAuthenticator(t), zap.NewNop())

	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"password":"nope"}`, http.StatusUnauthorized},
		{"empty password", `{"password":""}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctrl.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestController_RequireAdmin(t *testing.T) {
	auth := newTestAuthenticator(t)
	ctrl := NewController(auth, zap.NewNop())
	token, _, err := auth.Login(testPassword)
	require.NoError(t, err)

	called := false
	handler := ctrl.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "admin", claims.Subject)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/orders/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}

func TestController_RequireAdmin_Rejects(t *testing.T) {
	ctrl := NewController(newTestAuthenticator(t), zap.NewNop())
	handler := ctrl.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/orders/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	}
}

func TestController_HandleSession(t *testing.T) {
	auth := newTestAuthenticator(t)
	ctrl := NewController(auth, zap.NewNop())
	token, _, err := auth.Login(testPassword)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	ctrl.HandleSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Admin)

	rec = httptest.NewRecorder()
	ctrl.HandleSession(rec, httptest.NewRequest(http.MethodGet, "/admin/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
