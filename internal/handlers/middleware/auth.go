package middleware

import (
	"net/http"

	"github.com/nkiryanov/qrgen/internal/handlers/render"
	"github.com/nkiryanov/qrgen/internal/handlers/userctx"
	"github.com/nkiryanov/qrgen/internal/service/auth"
)

type debugLogger interface {
	Debug(msg string, args ...any)
}

// Storage of one client bound to the request
type StorageFunc func(w http.ResponseWriter, r *http.Request) auth.Storage

// SessionMiddleware restores the client session and attaches it to the request context
// The session is closed when the request is served
func SessionMiddleware(storage StorageFunc, l debugLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.NewSession(storage(w, r))
			if err := session.Init(); err != nil {
				l.Debug("session restored signed out", "error", err)
			}
			defer session.Close()

			ctx := userctx.New(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectAnonymous sends clients without user to the given location
func RedirectAnonymous(location string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := userctx.FromContext(r.Context()); !ok {
				http.Redirect(w, r, location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects API requests without user
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
