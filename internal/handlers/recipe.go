package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/middlewares"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"
)

// multipartMemory is how much of a multipart form is kept in memory before spilling to temp files.
const multipartMemory = 8 << 20

//go:generate mockgen -source=recipe.go -destination=recipe_mock.go -package=handlers

// RecipeCreator defines the interface that the recipe service must implement for submissions.
type RecipeCreator interface {
	Create(ctx context.Context, input models.RecipeInput, creatorID uuid.UUID) (*models.Recipe, error)
}

// RecipeGetter defines the interface that the recipe service must implement for the detail page.
type RecipeGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
}

// NewAddRecipePageHandler renders the recipe form.
func NewAddRecipePageHandler(view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, view, http.StatusOK, views.PageAddRecipe, views.RecipeFormPage{
			User:         middlewares.IdentityFromContext(r.Context()).User,
			Categories:   models.Categories(),
			Difficulties: models.Difficulties(),
		})
	}
}

// NewAddRecipeHandler stores a submitted recipe, with an optional image, owned by
// the current user. Request bodies above maxBytes are rejected.
func NewAddRecipeHandler(svc RecipeCreator, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if !identity.IsAuthenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			logger.Log.Errorw("failed to parse recipe form", "err", err)
			http.Error(w, msgCreateFailed, http.StatusInternalServerError)
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		input := models.RecipeInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Ingredients: r.FormValue("ingredients"),
			Category:    r.FormValue("category"),
			Difficulty:  r.FormValue("difficulty"),
		}

		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			input.Image = &models.ImageUpload{Filename: header.Filename, Content: file}
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		default:
			logger.Log.Errorw("failed to read uploaded image", "err", err)
			http.Error(w, msgCreateFailed, http.StatusInternalServerError)
			return
		}

		if _, err := svc.Create(r.Context(), input, identity.User.UserID); err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			logger.Log.Errorw("failed to add recipe", "err", err)
			http.Error(w, msgCreateFailed, http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// NewGetRecipeHandler renders a single recipe with its creator.
func NewGetRecipeHandler(svc RecipeGetter, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, msgRecipeNotFound, http.StatusNotFound)
			return
		}

		recipe, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrRecipeNotFound) {
				http.Error(w, msgRecipeNotFound, http.StatusNotFound)
				return
			}
			logger.Log.Errorw("failed to get recipe", "recipe_id", id, "err", err)
			http.Error(w, msgServerError, http.StatusInternalServerError)
			return
		}

		render(w, view, http.StatusOK, views.PageRecipe, views.RecipePage{
			User:   middlewares.IdentityFromContext(r.Context()).User,
			Recipe: *recipe,
		})
	}
}
