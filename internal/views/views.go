// Package views renders the server-side HTML pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names
const (
	PageIndex     = "index"
	PageLogin     = "login"
	PageRegister  = "register"
	PageAddRecipe = "add-recipe"
	PageRecipe    = "recipe"
)

var pages = []string{PageIndex, PageLogin, PageRegister, PageAddRecipe, PageRecipe}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// IndexPage is the data for the recipe list.
type IndexPage struct {
	User         *models.UserDB
	Recipes      []models.Recipe
	Filter       models.RecipeFilter
	Categories   []models.Category
	Difficulties []models.Difficulty
}

// LoginPage is the data for the login form.
type LoginPage struct {
	User *models.UserDB
}

// RegisterPage is the data for the registration form.
type RegisterPage struct {
	User     *models.UserDB
	Username string // Echoed back after a failed attempt
	Error    string
}

// RecipeFormPage is the data for the add-recipe form.
type RecipeFormPage struct {
	User         *models.UserDB
	Categories   []models.Category
	Difficulties []models.Difficulty
}

// RecipePage is the data for a recipe detail page.
type RecipePage struct {
	User   *models.UserDB
	Recipe models.Recipe
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tpl, err := template.New(name).
			Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %q: %w", name, err)
		}
		r.pages[name] = tpl
	}
	return r, nil
}

// Render writes the named page filled with data to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if err := tpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("exec page %q: %w", name, err)
	}
	return nil
}
