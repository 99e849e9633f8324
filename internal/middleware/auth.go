package middleware

import (
	"encoding/json"
	"net/http"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// Authenticate resolves the caller from the access token. Requests without a
// token continue anonymously; a token that fails verification is rejected.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid or expired token")
				return
			}

			actor := claims.Actor()
			ctx := auth.WithActor(r.Context(), actor)
			ctx = logger.WithUser(ctx, actor.UserID, string(actor.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ActorFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := auth.ActorFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, codeAuthorization, "insufficient role")
		})
	}
}

// error codes shared with the REST error body
const (
	codeUnauthenticated = "unauthenticated"
	codeAuthorization   = "authorization"
	codeRateLimited     = "rate_limited"
)

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
