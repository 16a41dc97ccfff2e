package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRequireSessionMissingHeader(t *testing.T) {
	handler := RequireSession()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run without a bearer token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSessionMalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		handler := RequireSession()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatalf("handler should not run for header %q", header)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireSessionOpaqueTokenCarried(t *testing.T) {
	var got *Identity
	handler := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
	req.Header.Set("Authorization", "Bearer session-token-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.Token != "session-token-123" {
		t.Fatalf("identity = %+v, want token carried through", got)
	}
	if got.UID != "" {
		t.Fatalf("opaque mode should not resolve a uid, got %q", got.UID)
	}
}

func TestRequireSessionVerifiesSignedToken(t *testing.T) {
	const secret = "session-secret"
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var got *Identity
	handler := RequireSession(WithSessionSecret(secret), WithClock(clock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.UID != "user-42" {
		t.Fatalf("identity = %+v, want uid user-42", got)
	}
}

func TestRequireSessionRejectsExpiredToken(t *testing.T) {
	const secret = "session-secret"
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	handler := RequireSession(WithSessionSecret(secret), WithClock(func() time.Time { return now }))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run for an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
