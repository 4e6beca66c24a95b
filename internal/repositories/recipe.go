package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

const selectRecipes = `
	SELECT r.recipe_id, r.title, r.description, r.ingredients, r.category, r.difficulty,
	       r.created_by, r.image_path, r.created_at, r.updated_at,
	       u.username AS author_username
	FROM recipes r
	LEFT JOIN users u ON u.user_id = r.created_by
`

// recipeRow is a recipe joined with its creator's username
type recipeRow struct {
	RecipeID       uuid.UUID      `db:"recipe_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Ingredients    string         `db:"ingredients"`
	Category       string         `db:"category"`
	Difficulty     string         `db:"difficulty"`
	CreatedBy      uuid.NullUUID  `db:"created_by"`
	ImagePath      string         `db:"image_path"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	AuthorUsername sql.NullString `db:"author_username"`
}

func (row recipeRow) toModel() models.Recipe {
	r := models.Recipe{
		ID:          row.RecipeID,
		Title:       row.Title,
		Description: row.Description,
		Ingredients: row.Ingredients,
		Category:    models.Category(row.Category),
		Difficulty:  models.Difficulty(row.Difficulty),
		CreatedBy:   row.CreatedBy,
		ImagePath:   row.ImagePath,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.CreatedBy.Valid && row.AuthorUsername.Valid {
		r.Author = &models.Author{ID: row.CreatedBy.UUID, Username: row.AuthorUsername.String}
	}
	return r
}

// RecipeReadRepository reads recipes from Postgres with their creators resolved
type RecipeReadRepository struct {
	db *sqlx.DB
}

func NewRecipeReadRepository(db *sqlx.DB) *RecipeReadRepository {
	return &RecipeReadRepository{db: db}
}

// List returns recipes matching every set field of filter in insertion order.
func (r *RecipeReadRepository) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	const query = selectRecipes + `
	WHERE ($1::VARCHAR IS NULL OR r.category = $1)
	  AND ($2::VARCHAR IS NULL OR r.difficulty = $2)
	ORDER BY r.created_at
	`
	args := []any{nullable(string(filter.Category)), nullable(string(filter.Difficulty))}

	var rows []recipeRow
	err := r.db.SelectContext(ctx, &rows, query, args...)

	logQuery(query, args, len(rows), err)

	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toModel())
	}
	return recipes, nil
}

// GetByID returns the recipe with the given id, or nil if there is none.
func (r *RecipeReadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	const query = selectRecipes + `
	WHERE r.recipe_id = $1
	`

	var row recipeRow
	err := r.db.GetContext(ctx, &row, query, id)

	logQuery(query, []any{id}, row.Title, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	recipe := row.toModel()
	return &recipe, nil
}

// RecipeWriteRepository writes recipes to Postgres
type RecipeWriteRepository struct {
	db *sqlx.DB
}

func NewRecipeWriteRepository(db *sqlx.DB) *RecipeWriteRepository {
	return &RecipeWriteRepository{db: db}
}

// Save inserts a new recipe.
func (r *RecipeWriteRepository) Save(ctx context.Context, recipe models.Recipe) error {
	const query = `
		INSERT INTO recipes (recipe_id, title, description, ingredients, category, difficulty,
		                     created_by, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	args := []any{
		recipe.ID, recipe.Title, recipe.Description, recipe.Ingredients,
		string(recipe.Category), string(recipe.Difficulty),
		recipe.CreatedBy, recipe.ImagePath, recipe.CreatedAt, recipe.UpdatedAt,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, args, rowsAffected, err)

	return err
}

// nullable maps an empty filter value to SQL NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
