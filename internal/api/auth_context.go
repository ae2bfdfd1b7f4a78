package api

import (
	"context"
	"net/http"
	"strings"

	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	// userIDKey is the context key for the authenticated user ID.
	userIDKey ctxKey = "userID"
	// authErrKey holds why a presented token was rejected.
	authErrKey ctxKey = "authErr"
)

// GetUserID returns the authenticated user ID from context.
// Returns a 401 error if the request carried no valid token.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if ok && userID != "" {
		return userID, nil
	}

	if err, ok := ctx.Value(authErrKey).(*domainerrors.Error); ok {
		return "", fromDomain(err, nil)
	}
	return "", fromDomain(domainerrors.Unauthorized("authentication required"), nil)
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware returns a middleware that validates Bearer tokens and stores the user ID in context.
// Requests without a valid token continue anonymously; handlers use GetUserID to require auth.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := bearerToken(header)
			if !ok {
				ctx = context.WithValue(ctx, authErrKey, domainerrors.Unauthorized("invalid authorization header"))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := auth.VerifyToken(ctx, token)
			if err != nil {
				var domainErr *domainerrors.Error
				if domainerrors.As(err, &domainErr) {
					ctx = context.WithValue(ctx, authErrKey, domainErr)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(setUserID(ctx, claims.UserID())))
		})
	}
}
