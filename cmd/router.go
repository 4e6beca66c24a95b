package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/handlers"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/middlewares"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"
)

type routerDeps struct {
	auth     *services.AuthService
	sessions *services.SessionService
	recipes  *services.RecipeService
	view     *views.Renderer
	cookie   *cookies.Manager
	cfg      config
}

// newRouter mounts the static file servers and the page routes.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Static assets
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(d.cfg.PublicDir))))
	if d.cfg.UploadDriver == driverDisk {
		r.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix+"/", http.FileServer(http.Dir(d.cfg.UploadDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middlewares.SessionMiddleware(d.sessions, d.cookie))

		r.Get("/", handlers.NewHomeHandler(d.recipes, d.view))
		r.Get("/login", handlers.NewLoginPageHandler(d.view))
		r.Post("/login", handlers.NewLoginHandler(d.auth, d.sessions, d.cookie))
		r.Get("/logout", handlers.NewLogoutHandler(d.sessions, d.cookie))
		r.Get("/register", handlers.NewRegisterPageHandler(d.view))
		r.Post("/register", handlers.NewRegisterHandler(d.auth, d.sessions, d.cookie, d.view))
		r.Get("/recipe/{id}", handlers.NewGetRecipeHandler(d.recipes, d.view))

		// Mutating routes need a logged-in user
		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth)
			r.Get("/add-recipe", handlers.NewAddRecipePageHandler(d.view))
			r.Post("/add-recipe", handlers.NewAddRecipeHandler(d.recipes, d.cfg.UploadMaxBytes))
		})
	})

	return r
}
