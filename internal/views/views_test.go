package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}
	pancakes := models.Recipe{
		ID:          uuid.New(),
		Title:       "Pancakes",
		Description: "Fluffy & light",
		Ingredients: "flour, milk",
		Category:    models.CategoryDessert,
		Difficulty:  models.DifficultyEasy,
		Author:      &models.Author{ID: alice.UserID, Username: "alice"},
		ImagePath:   "/uploads/1-p.png",
		CreatedAt:   time.Now(),
	}

	tests := []struct {
		name     string
		page     string
		data     any
		contains []string
		excludes []string
	}{
		{
			name: "index anonymous",
			page: PageIndex,
			data: IndexPage{
				Recipes:      []models.Recipe{pancakes},
				Filter:       models.RecipeFilter{Category: models.CategoryDessert},
				Categories:   models.Categories(),
				Difficulties: models.Difficulties(),
			},
			contains: []string{
				"Pancakes",
				"/recipe/" + pancakes.ID.String(),
				"Autor: alice",
				`<option value="Dessert" selected>`,
				`<option value="Main Course">`,
				`href="/login"`,
			},
			excludes: []string{`href="/logout"`},
		},
		{
			name:     "index empty authenticated",
			page:     PageIndex,
			data:     IndexPage{User: alice, Categories: models.Categories(), Difficulties: models.Difficulties()},
			contains: []string{"Brak przepisów.", "Zalogowano jako alice", `href="/logout"`},
		},
		{
			name:     "login",
			page:     PageLogin,
			data:     LoginPage{},
			contains: []string{`action="/login"`, `name="password"`},
		},
		{
			name:     "register with error",
			page:     PageRegister,
			data:     RegisterPage{Username: "bob", Error: "A user with the given username is already registered"},
			contains: []string{"A user with the given username is already registered", `value="bob"`},
		},
		{
			name:     "add recipe form",
			page:     PageAddRecipe,
			data:     RecipeFormPage{User: alice, Categories: models.Categories(), Difficulties: models.Difficulties()},
			contains: []string{`enctype="multipart/form-data"`, `name="image"`, `<option value="Hard">`},
		},
		{
			name:     "recipe detail escapes text",
			page:     PageRecipe,
			data:     RecipePage{Recipe: pancakes},
			contains: []string{"<h1>Pancakes</h1>", "Fluffy &amp; light", "Autor: alice", `src="/uploads/1-p.png"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := r.Render(&buf, tt.page, tt.data)
			require.NoError(t, err)

			body := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "missing", nil))
	assert.Empty(t, buf.String())
}
