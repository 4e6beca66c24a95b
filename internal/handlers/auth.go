package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/middlewares"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, password string) (*models.UserDB, error)
}

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password string) (*models.UserDB, error)
}

// SessionStarter opens a session and returns its cookie token.
type SessionStarter interface {
	Start(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
}

// SessionEnder closes the session behind a cookie token.
type SessionEnder interface {
	End(ctx context.Context, token string) error
}

// NewLoginPageHandler renders the login form.
func NewLoginPageHandler(view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, view, http.StatusOK, views.PageLogin, views.LoginPage{
			User: middlewares.IdentityFromContext(r.Context()).User,
		})
	}
}

// NewLoginHandler authenticates the submitted credentials and starts a session.
// Any failure sends the visitor back to the login form without details.
func NewLoginHandler(svc Loginer, sessions SessionStarter, cookie *cookies.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) && !errors.Is(err, services.ErrUserDoesNotExist) {
				logger.Log.Errorw("login failed", "err", err)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if !startSession(w, r, sessions, cookie, user) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// NewLogoutHandler ends the current session, if any, and returns to the index.
func NewLogoutHandler(sessions SessionEnder, cookie *cookies.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, err := cookie.Get(r); err == nil {
			if err := sessions.End(r.Context(), token); err != nil {
				logger.Log.Errorw("logout failed", "err", err)
			}
		}
		cookie.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// NewRegisterPageHandler renders the registration form.
func NewRegisterPageHandler(view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, view, http.StatusOK, views.PageRegister, views.RegisterPage{
			User: middlewares.IdentityFromContext(r.Context()).User,
		})
	}
}

// NewRegisterHandler creates the account and logs the new user in.
// Rejected registrations re-render the form with the reason.
func NewRegisterHandler(svc Registerer, sessions SessionStarter, cookie *cookies.Manager, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PostFormValue("username")

		user, err := svc.Register(r.Context(), username, r.PostFormValue("password"))
		if err != nil {
			page := views.RegisterPage{Username: username}
			status := http.StatusBadRequest

			var vErr *models.ValidationError
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				page.Error = msgUserExists
			case errors.As(err, &vErr):
				page.Error = vErr.Error()
			default:
				logger.Log.Errorw("registration failed", "err", err)
				page.Error = msgServerError
				status = http.StatusInternalServerError
			}

			render(w, view, status, views.PageRegister, page)
			return
		}

		if !startSession(w, r, sessions, cookie, user) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, sessions SessionStarter, cookie *cookies.Manager, user *models.UserDB) bool {
	token, exp, err := sessions.Start(r.Context(), user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to start session", "user_id", user.UserID, "err", err)
		return false
	}
	cookie.Set(w, token, exp)
	return true
}
