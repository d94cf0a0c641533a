package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jyej0a/mysns/internal/httputil"
	"github.com/jyej0a/mysns/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's local id
	UserIDKey contextKey = "user_id"

	// ExternalIDKey is the context key for the token subject, the
	// identity provider's id for the user
	ExternalIDKey contextKey = "external_id"
)

// UserResolver maps a token subject to the local user row.
type UserResolver interface {
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
}

// AuthMiddleware validates the bearer token and resolves the local
// user. Requests without a valid token, or whose user has never been
// synced, get a 401.
func AuthMiddleware(jwtSecret string, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID, ok := subjectFromRequest(r, jwtSecret)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid or missing authentication token")
				return
			}

			user, err := resolver.GetByExternalID(r.Context(), externalID)
			if err != nil {
				if errors.Is(err, model.ErrUserNotFound) {
					httputil.WriteUnauthorized(w, "Account not synced")
					return
				}
				httputil.WriteInternalError(w, "Failed to resolve user")
				return
			}

			ctx := context.WithValue(r.Context(), ExternalIDKey, externalID)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves the user when a valid token is
// present and lets the request through anonymously otherwise. Read
// endpoints use this so viewer-relative fields can be filled in for
// signed-in users.
func OptionalAuthMiddleware(jwtSecret string, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID, ok := subjectFromRequest(r, jwtSecret)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.GetByExternalID(r.Context(), externalID)
			if err != nil {
				// Unknown or unsynced user reads as anonymous.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ExternalIDKey, externalID)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VerifyTokenMiddleware validates the token without requiring a local
// user row. The sync endpoint uses this: it runs before the row exists.
func VerifyTokenMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID, ok := subjectFromRequest(r, jwtSecret)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid or missing authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), ExternalIDKey, externalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// subjectFromRequest extracts and verifies the bearer token, returning
// the subject claim.
func subjectFromRequest(r *http.Request, jwtSecret string) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}

	return sub, true
}

// GetUserIDFromContext extracts the local user id from the request
// context. Returns false for anonymous requests.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetExternalIDFromContext extracts the token subject from the request
// context.
func GetExternalIDFromContext(ctx context.Context) (string, bool) {
	externalID, ok := ctx.Value(ExternalIDKey).(string)
	return externalID, ok
}
