package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/middlewares"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"
)

//go:generate mockgen -source=home.go -destination=home_mock.go -package=handlers

// RecipeLister defines the interface that the recipe service must implement for the index page.
type RecipeLister interface {
	List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error)
}

// NewHomeHandler returns an HTTP handler that lists recipes filtered by the
// optional category and difficulty query parameters.
func NewHomeHandler(svc RecipeLister, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := models.RecipeFilter{
			Category:   models.Category(query.Get("category")),
			Difficulty: models.Difficulty(query.Get("difficulty")),
		}

		recipes, err := svc.List(r.Context(), filter)
		if err != nil {
			logger.Log.Errorw("failed to list recipes", "err", err)
			http.Error(w, msgListFailed, http.StatusInternalServerError)
			return
		}

		render(w, view, http.StatusOK, views.PageIndex, views.IndexPage{
			User:         middlewares.IdentityFromContext(r.Context()).User,
			Recipes:      recipes,
			Filter:       filter,
			Categories:   models.Categories(),
			Difficulties: models.Difficulties(),
		})
	}
}
