package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hendrawijaya/shopfront-backend/api/responses"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
)

// Authentication happens upstream. The gateway forwards the resolved actor in
// these headers; this service only reads them.
const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"

	roleAdmin = "admin"
)

type userIDKey struct{}
type userRoleKey struct{}

// Identity lifts the gateway's actor headers into the request context.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if raw := r.Header.Get(userIDHeader); raw != "" {
				if userID, err := uuid.Parse(raw); err == nil {
					ctx = context.WithValue(ctx, userIDKey{}, userID)
					if logg != nil {
						ctx = logg.WithUserID(ctx, userID.String())
					}
				}
			}
			if role := r.Header.Get(userRoleHeader); role != "" {
				ctx = context.WithValue(ctx, userRoleKey{}, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests the gateway did not attribute to a user.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose actor is not an admin.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != roleAdmin {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the acting user, or uuid.Nil when anonymous.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if userID, ok := ctx.Value(userIDKey{}).(uuid.UUID); ok {
		return userID
	}
	return uuid.Nil
}

// RoleFromContext returns the acting role, or empty when none was forwarded.
func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if role, ok := ctx.Value(userRoleKey{}).(string); ok {
		return role
	}
	return ""
}
