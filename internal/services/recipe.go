package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/storage"
	"github.com/segmentio/kafka-go"
)

var (
	// ErrRecipeNotFound is returned when no recipe has the requested id.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrUnauthenticated is returned when a recipe is submitted without a creator.
	ErrUnauthenticated = errors.New("authentication required")
)

// OperationRecipeCreated is the event operation published after a recipe is stored.
const OperationRecipeCreated = "recipe.created"

//go:generate mockgen -source=recipe.go -destination=recipe_mock.go -package=services

// RecipeReader defines read operations for recipes.
type RecipeReader interface {
	List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) // Returns recipes matching filter
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)             // Returns nil when missing
}

// RecipeWriter defines write operations for recipes.
type RecipeWriter interface {
	Save(ctx context.Context, recipe models.Recipe) error
}

// ImageStore persists uploaded images and returns their public path.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error // Removes an image stored under name
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// RecipeService lists, fetches and creates recipes.
type RecipeService struct {
	reader      RecipeReader
	writer      RecipeWriter
	images      ImageStore
	kafkaWriter KafkaWriter
}

// NewRecipeService creates a new RecipeService. kafkaWriter may be nil.
func NewRecipeService(
	reader RecipeReader,
	writer RecipeWriter,
	images ImageStore,
	kafkaWriter KafkaWriter,
) *RecipeService {
	return &RecipeService{
		reader:      reader,
		writer:      writer,
		images:      images,
		kafkaWriter: kafkaWriter,
	}
}

// List returns the recipes matching every set field of filter.
func (s *RecipeService) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	recipes, err := s.reader.List(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to list recipes", "category", filter.Category, "difficulty", filter.Difficulty, "error", err)
		return nil, err
	}
	return recipes, nil
}

// Get returns a single recipe with its creator resolved.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get recipe", "recipe_id", id, "error", err)
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}
	return recipe, nil
}

// Create validates input, stores the optional image and saves the recipe owned by creatorID.
func (s *RecipeService) Create(ctx context.Context, input models.RecipeInput, creatorID uuid.UUID) (*models.Recipe, error) {
	if creatorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	input = input.Normalize()
	if err := validateStruct(input); err != nil {
		logger.Log.Warnw("invalid recipe", "title", input.Title, "error", err)
		return nil, err
	}

	now := time.Now().UTC()
	recipe, err := models.NewRecipe(input, creatorID, now)
	if err != nil {
		logger.Log.Warnw("invalid recipe", "title", input.Title, "error", err)
		return nil, err
	}

	var imageName string
	if input.Image != nil {
		imageName = storage.ObjectName(now, input.Image.Filename)
		path, err := s.saveImage(ctx, imageName, input.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImagePath = path
	}

	if err := s.writer.Save(ctx, recipe); err != nil {
		logger.Log.Errorw("failed to save recipe", "recipe_id", recipe.ID, "error", err)
		if imageName != "" {
			s.removeImage(ctx, imageName)
		}
		return nil, err
	}

	s.publishRecipe(ctx, recipe, OperationRecipeCreated)

	return &recipe, nil
}

func (s *RecipeService) saveImage(ctx context.Context, name string, img *models.ImageUpload) (string, error) {
	content, contentType, err := storage.DetectImage(img.Content)
	if errors.Is(err, storage.ErrNotImage) {
		logger.Log.Warnw("rejected upload", "filename", img.Filename, "error", err)
		return "", &models.ValidationError{Field: "image", Reason: "must be an image"}
	}
	if err != nil {
		logger.Log.Errorw("failed to read upload", "filename", img.Filename, "error", err)
		return "", err
	}

	path, err := s.images.Save(ctx, name, contentType, content)
	if err != nil {
		logger.Log.Errorw("failed to store image", "filename", img.Filename, "error", err)
		return "", err
	}
	return path, nil
}

// removeImage deletes an image whose recipe was never stored.
func (s *RecipeService) removeImage(ctx context.Context, name string) {
	if err := s.images.Delete(ctx, name); err != nil {
		logger.Log.Errorw("failed to remove orphaned image", "name", name, "error", err)
	}
}

// publishRecipe publishes a recipe event to Kafka.
func (s *RecipeService) publishRecipe(ctx context.Context, recipe models.Recipe, operation string) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "recipe_id", recipe.ID)
		return
	}

	event := models.RecipeEvent{
		EventID:    uuid.NewString(),
		Timestamp:  time.Now().Unix(),
		RecipeID:   recipe.ID.String(),
		UserID:     recipe.CreatedBy.UUID.String(),
		Title:      recipe.Title,
		Category:   string(recipe.Category),
		Difficulty: string(recipe.Difficulty),
		Operation:  operation,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal recipe event for Kafka", "recipe_id", recipe.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.RecipeID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish recipe event to Kafka", "recipe_id", recipe.ID, "error", err)
	} else {
		logger.Log.Infow("Recipe event published to Kafka", "recipe_id", recipe.ID, "operation", operation)
	}
}
