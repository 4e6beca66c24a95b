package models

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of recipe categories.
type Category string

// Supported recipe categories
const (
	CategoryDessert    Category = "Dessert"
	CategoryMainCourse Category = "Main Course"
	CategoryAppetizer  Category = "Appetizer"
	CategoryDrink      Category = "Drink"
	CategoryOther      Category = "Other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryDessert, CategoryMainCourse, CategoryAppetizer, CategoryDrink, CategoryOther}
}

// ParseCategory converts s into a Category, rejecting anything outside the set.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: "must be one of Dessert, Main Course, Appetizer, Drink, Other"}
}

// Difficulty is the closed set of recipe difficulty levels.
type Difficulty string

// Supported difficulty levels
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every difficulty in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty converts s into a Difficulty, rejecting anything outside the set.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "difficulty", Reason: "must be one of Easy, Medium, Hard"}
}

// Author is the resolved creator of a recipe.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Recipe is a stored recipe document.
// Values are built with NewRecipe so category and difficulty are always valid.
type Recipe struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Ingredients string        `json:"ingredients"`
	Category    Category      `json:"category"`
	Difficulty  Difficulty    `json:"difficulty"`
	CreatedBy   uuid.NullUUID `json:"created_by"`
	Author      *Author       `json:"author,omitempty"` // Populated on reads when the creator still exists
	ImagePath   string        `json:"image_path,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RecipeInput carries the raw fields of a recipe submission.
type RecipeInput struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"required"`
	Ingredients string `validate:"required"`
	Category    string `validate:"required,recipe_category"`
	Difficulty  string `validate:"required,recipe_difficulty"`
	Image       *ImageUpload
}

// Normalize trims surrounding whitespace from the text fields.
func (in RecipeInput) Normalize() RecipeInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Ingredients = strings.TrimSpace(in.Ingredients)
	in.Category = strings.TrimSpace(in.Category)
	in.Difficulty = strings.TrimSpace(in.Difficulty)
	return in
}

// NewRecipe builds a Recipe owned by creatorID from in.
// It fails with a *ValidationError when a required field is empty or an enum value is unknown.
func NewRecipe(in RecipeInput, creatorID uuid.UUID, now time.Time) (Recipe, error) {
	in = in.Normalize()

	required := []struct {
		field, value string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"ingredients", in.Ingredients},
	}
	for _, r := range required {
		if r.value == "" {
			return Recipe{}, &ValidationError{Field: r.field, Reason: "is required"}
		}
	}

	category, err := ParseCategory(in.Category)
	if err != nil {
		return Recipe{}, err
	}
	difficulty, err := ParseDifficulty(in.Difficulty)
	if err != nil {
		return Recipe{}, err
	}

	return Recipe{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Ingredients: in.Ingredients,
		Category:    category,
		Difficulty:  difficulty,
		CreatedBy:   uuid.NullUUID{UUID: creatorID, Valid: creatorID != uuid.Nil},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RecipeFilter selects recipes by exact field match. Empty fields match everything.
type RecipeFilter struct {
	Category   Category
	Difficulty Difficulty
}

// Match reports whether r satisfies every set field of f.
func (f RecipeFilter) Match(r Recipe) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// ImageUpload is an image attached to a recipe submission.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}
