package models

// RecipeEvent is published to the message broker when a recipe is created.
type RecipeEvent struct {
	EventID    string `json:"event_id"`   // Unique event identifier
	Timestamp  int64  `json:"timestamp"`  // Unix seconds
	RecipeID   string `json:"recipe_id"`  // Created recipe
	UserID     string `json:"user_id"`    // Creator
	Title      string `json:"title"`      // Recipe title
	Category   string `json:"category"`   // Recipe category
	Difficulty string `json:"difficulty"` // Recipe difficulty
	Operation  string `json:"operation"`  // Always "recipe.created" for now
}
