package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solenne/storefront/internal/platform/httpx"
)

// Option customises the session middleware.
type Option func(*options)

type options struct {
	sessionSecret string
	clock         func() time.Time
}

// WithSessionSecret enables local HS256 verification of the bearer token.
// When empty the token is carried through opaque and the commerce backend
// remains the validating party.
func WithSessionSecret(secret string) Option {
	return func(o *options) {
		o.sessionSecret = strings.TrimSpace(secret)
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// RequireSession ensures the request carries a bearer session token and
// stores the resulting Identity on the request context.
func RequireSession(opts ...Option) func(http.Handler) http.Handler {
	cfg := options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				respondAuthError(w, r, err.Error())
				return
			}

			identity := &Identity{Token: token}
			if cfg.sessionSecret != "" {
				uid, err := verifySessionToken(token, cfg.sessionSecret, cfg.clock)
				if err != nil {
					respondAuthError(w, r, "invalid session token")
					return
				}
				identity.UID = uid
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errMissingAuthorization
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedAuthorization
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMalformedAuthorization
	}
	return token, nil
}

func verifySessionToken(token, secret string, clock func() time.Time) (string, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(clock),
	)
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return "", err
	}
	return strings.TrimSpace(claims.Subject), nil
}

func respondAuthError(w http.ResponseWriter, r *http.Request, message string) {
	httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", message, http.StatusUnauthorized))
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingAuthorization   authError = "missing bearer token"
	errMalformedAuthorization authError = "malformed authorization header"
)
