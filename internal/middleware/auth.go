package middleware

import (
	"encoding/json"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

// Authenticate resolves the Authorization header and, when it yields an
// identity, stores it in the request context. Requests without one pass
// through untouched.
func Authenticate(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := resolver.Resolve(r.Context(), header)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := auth.IdentityFrom(r.Context()); ok && identity.Subject != "" {
			next.ServeHTTP(w, r)
			return
		}

		logger.Warn("HTTP: unauthenticated request",
			zap.String("path", r.URL.Path),
			zap.String("request_id", GetRequestID(r.Context())))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
	})
}
