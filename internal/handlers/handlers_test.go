package handlers

import (
	"net/http"
	"testing"

	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/middlewares"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"
	"github.com/stretchr/testify/require"
)

const testCookieName = "recipe_session"

func newTestRenderer(t *testing.T) *views.Renderer {
	t.Helper()
	r, err := views.New()
	require.NoError(t, err)
	return r
}

func newTestCookie() *cookies.Manager {
	return cookies.New(testCookieName, "", false)
}

func withUser(r *http.Request, user *models.UserDB) *http.Request {
	return r.WithContext(middlewares.WithIdentity(r.Context(), models.Authenticated(user)))
}
