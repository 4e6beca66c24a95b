package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
)

//go:generate mockgen -source=session.go -destination=session_mock.go -package=middlewares

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.UserDB, error)
}

// SessionMiddleware resolves the session cookie into a models.Identity stored in the
// request context. Requests without a usable session continue as anonymous.
func SessionMiddleware(resolver SessionResolver, cookie *cookies.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := cookie.Get(r)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, models.Anonymous())))
				return
			}

			user, err := resolver.Resolve(ctx, token)
			if err != nil {
				if errors.Is(err, services.ErrSessionNotFound) {
					cookie.Clear(w)
				} else {
					logger.Log.Errorw("failed to resolve session", "err", err)
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, models.Anonymous())))
				return
			}

			noteUser(ctx, user.Username)
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, models.Authenticated(user))))
		})
	}
}

// RequireAuth redirects anonymous visitors to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).IsAuthenticated() {
			logger.Log.Infow("authentication required", "uri", r.RequestURI)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
