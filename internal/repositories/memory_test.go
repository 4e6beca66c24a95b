package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	alice := models.UserDB{UserID: uuid.New(), Username: "alice", PasswordHash: "h1"}
	require.NoError(t, repo.Save(ctx, alice))

	err := repo.Save(ctx, models.UserDB{UserID: uuid.New(), Username: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	// first record unchanged
	got, err := repo.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice, *got)

	got, err = repo.GetByID(ctx, alice.UserID)
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	got, err = repo.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRecipeRepository(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()
	repo := NewMemoryRecipeRepository(users)

	alice := models.UserDB{UserID: uuid.New(), Username: "alice"}
	require.NoError(t, users.Save(ctx, alice))

	mk := func(title, category, difficulty string, creator uuid.UUID) models.Recipe {
		r, err := models.NewRecipe(models.RecipeInput{
			Title: title, Description: "d", Ingredients: "i",
			Category: category, Difficulty: difficulty,
		}, creator, time.Now())
		require.NoError(t, err)
		return r
	}

	pancakes := mk("Pancakes", "Dessert", "Easy", alice.UserID)
	soup := mk("Soup", "Main Course", "Medium", alice.UserID)
	cake := mk("Cake", "Dessert", "Hard", uuid.New())
	for _, r := range []models.Recipe{pancakes, soup, cake} {
		require.NoError(t, repo.Save(ctx, r))
	}
	assert.ErrorIs(t, repo.Save(ctx, pancakes), models.ErrDuplicateKey)

	tests := []struct {
		name   string
		filter models.RecipeFilter
		want   []string
	}{
		{"all", models.RecipeFilter{}, []string{"Pancakes", "Soup", "Cake"}},
		{"category", models.RecipeFilter{Category: models.CategoryDessert}, []string{"Pancakes", "Cake"}},
		{"difficulty", models.RecipeFilter{Difficulty: models.DifficultyMedium}, []string{"Soup"}},
		{"both", models.RecipeFilter{Category: models.CategoryDessert, Difficulty: models.DifficultyEasy}, []string{"Pancakes"}},
		{"none", models.RecipeFilter{Category: models.CategoryDrink}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, err := repo.List(ctx, tt.filter)
			assert.NoError(t, err)

			titles := make([]string, 0, len(recipes))
			for _, r := range recipes {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	got, err := repo.GetByID(ctx, pancakes.ID)
	assert.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)

	// creator that does not exist stays unresolved
	got, err = repo.GetByID(ctx, cake.ID)
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Author)

	got, err = repo.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	now := time.Now()
	repo.now = func() time.Time { return now }

	live := models.Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	expired := models.Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: now.Add(-time.Second)}
	require.NoError(t, repo.Save(ctx, live))
	require.NoError(t, repo.Save(ctx, expired))

	got, err := repo.Get(ctx, live.ID)
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, live.UserID, got.UserID)

	got, err = repo.Get(ctx, expired.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Delete(ctx, live.ID))
	got, err = repo.Get(ctx, live.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	// deleting twice is fine
	assert.NoError(t, repo.Delete(ctx, live.ID))
}
