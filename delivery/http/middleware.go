package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ctxKeySubject contextKey = "subject"
	ctxKeyRoles   contextKey = "roles"
)

// Identity carries the authenticated caller forwarded by the gateway
type Identity struct {
	Subject string
	Roles   []string
}

// IdentityFromContext returns the caller identity set by IdentityMiddleware
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	subject, ok := ctx.Value(ctxKeySubject).(string)
	if !ok {
		return Identity{}, false
	}
	roles, _ := ctx.Value(ctxKeyRoles).([]string)
	return Identity{Subject: subject, Roles: roles}, true
}

// LoggingMiddleware logs each request with its status and duration
func LoggingMiddleware(appLogger logger.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			appLogger.InfoContext(r.Context(), "HTTP request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// IdentityMiddleware extracts the caller's subject and realm roles from
// the bearer token forwarded by the gateway. Signature verification
// already happened at the gateway, so the token is only parsed here, not
// verified again.
func IdentityMiddleware(appLogger logger.LoggerInterface, apiClient api.Api) func(http.Handler) http.Handler {
	parser := jwt.NewParser()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				appLogger.WarnContext(ctx, "Missing Authorization header")
				apiClient.Unauthorized(ctx, w, "Missing Authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				appLogger.WarnContext(ctx, "Invalid Authorization header format")
				apiClient.Unauthorized(ctx, w, "Invalid Authorization header format")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

			claims := jwt.MapClaims{}
			if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
				appLogger.WarnContext(ctx, "Malformed bearer token", "error", err)
				apiClient.Unauthorized(ctx, w, "Malformed bearer token")
				return
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				appLogger.WarnContext(ctx, "Bearer token has no subject")
				apiClient.Unauthorized(ctx, w, "Bearer token has no subject")
				return
			}

			ctx = context.WithValue(ctx, ctxKeySubject, subject)
			ctx = context.WithValue(ctx, ctxKeyRoles, realmRoles(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// realmRoles reads the realm_access.roles claim
func realmRoles(claims jwt.MapClaims) []string {
	realmAccess, ok := claims["realm_access"].(map[string]any)
	if !ok {
		return nil
	}
	rawRoles, ok := realmAccess["roles"].([]any)
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(rawRoles))
	for _, raw := range rawRoles {
		if role, ok := raw.(string); ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// RequireRole rejects callers lacking all of the given realm roles.
// It must run after IdentityMiddleware.
func RequireRole(appLogger logger.LoggerInterface, apiClient api.Api, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, ok := IdentityFromContext(ctx)
			if !ok {
				apiClient.Unauthorized(ctx, w, "Missing caller identity")
				return
			}

			for _, role := range identity.Roles {
				for _, want := range allowed {
					if role == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			appLogger.WarnContext(ctx, "Access denied: missing required role",
				"subject", identity.Subject, "required", allowed)
			apiClient.Forbidden(ctx, w, "Access denied: insufficient permissions")
		})
	}
}
