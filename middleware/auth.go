package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-storefront/models"
	"go-storefront/utils"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Auth verifies session tokens.
type Auth struct {
	tokens  *utils.TokenManager
	revoked RevocationChecker
	logger  *slog.Logger
}

// NewAuth creates the auth middleware. revoked may be nil.
func NewAuth(tokens *utils.TokenManager, revoked RevocationChecker, logger *slog.Logger) *Auth {
	return &Auth{tokens: tokens, revoked: revoked, logger: logger}
}

// TokenFromRequest reads the session cookie, falling back to a bearer
// Authorization header for non-browser clients.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrTokenMissing):
		return "No token provided!"
	case errors.Is(err, utils.ErrTokenExpired):
		return "Token expired!"
	case errors.Is(err, utils.ErrTokenClaims):
		return "Invalid token structure!"
	case errors.Is(err, utils.ErrTokenRevoked):
		return "Token revoked!"
	default:
		return "Invalid token!"
	}
}

// AuthMiddleware verifies the session token and attaches its claims to the
// request context
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.ParseJWT(TokenFromRequest(r))
		if err == nil && a.revoked != nil && claims.Id != "" {
			revoked, rerr := a.revoked.IsRevoked(r.Context(), claims.Id)
			if rerr != nil {
				a.logger.ErrorContext(r.Context(), "revocation lookup failed", slog.String("error", rerr.Error()))
				writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Token verification failed!")
				return
			}
			if revoked {
				err = utils.ErrTokenRevoked
			}
		}
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", tokenErrorMessage(err))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		ctx = utils.ContextWithLogger(ctx, utils.LoggerFromContext(ctx, a.logger).With(slog.String("user_id", claims.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Role != models.RoleAdmin {
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "You are not authorized to perform this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the claims attached by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// WithClaims returns a context carrying claims, as AuthMiddleware does.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
