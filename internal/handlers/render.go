package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
)

// Messages shown to visitors on failures
const (
	msgListFailed     = "Wystąpił błąd podczas pobierania przepisów."
	msgCreateFailed   = "Wystąpił błąd podczas dodawania przepisu."
	msgRecipeNotFound = "Przepis nie został znaleziony."
	msgServerError    = "Wystąpił błąd serwera."
	msgUserExists     = "A user with the given username is already registered"
)

//go:generate mockgen -source=render.go -destination=render_mock.go -package=handlers

// Renderer renders a named HTML page.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// render writes the page with the given status once it has rendered completely.
func render(w http.ResponseWriter, view Renderer, status int, name string, data any) {
	var buf bytes.Buffer
	if err := view.Render(&buf, name, data); err != nil {
		logger.Log.Errorw("failed to render page", "page", name, "err", err)
		http.Error(w, msgServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
