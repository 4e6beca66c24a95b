package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document store
const (
	UsersCollection   = "users"
	RecipesCollection = "recipes"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDocument) toModel() (*models.UserDB, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserDB{
		UserID:       id,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type recipeDocument struct {
	ID          string        `bson:"_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Ingredients string        `bson:"ingredients"`
	Category    string        `bson:"category"`
	Difficulty  string        `bson:"difficulty"`
	CreatedBy   *string       `bson:"created_by"`
	ImagePath   string        `bson:"image_path,omitempty"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
	Creator     *userDocument `bson:"creator,omitempty"` // Filled by $lookup, never stored
}

func newRecipeDocument(r models.Recipe) recipeDocument {
	doc := recipeDocument{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Ingredients: r.Ingredients,
		Category:    string(r.Category),
		Difficulty:  string(r.Difficulty),
		ImagePath:   r.ImagePath,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CreatedBy.Valid {
		createdBy := r.CreatedBy.UUID.String()
		doc.CreatedBy = &createdBy
	}
	return doc
}

func (d recipeDocument) toModel() (models.Recipe, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Recipe{}, err
	}
	r := models.Recipe{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Category:    models.Category(d.Category),
		Difficulty:  models.Difficulty(d.Difficulty),
		ImagePath:   d.ImagePath,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.CreatedBy != nil {
		createdBy, err := uuid.Parse(*d.CreatedBy)
		if err != nil {
			return models.Recipe{}, err
		}
		r.CreatedBy = uuid.NullUUID{UUID: createdBy, Valid: true}
		if d.Creator != nil {
			r.Author = &models.Author{ID: createdBy, Username: d.Creator.Username}
		}
	}
	return r, nil
}

// MongoUserRepository stores users in a MongoDB collection
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique username index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	return err
}

// GetByUsername returns the user with the given username, or nil if there is none.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByID returns the user with the given id, or nil if there is none.
func (r *MongoUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserDB, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.UserDB, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)

	logQuery("users.findOne", []any{filter}, doc.Username, err)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

// Save inserts a new user. A taken username yields models.ErrDuplicateKey.
func (r *MongoUserRepository) Save(ctx context.Context, user models.UserDB) error {
	_, err := r.coll.InsertOne(ctx, userDocument{
		ID:           user.UserID.String(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})

	logQuery("users.insertOne", []any{user.UserID, user.Username, "***"}, nil, err)

	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}

// MongoRecipeRepository stores recipes in a MongoDB collection and
// populates creators from the users collection on read.
type MongoRecipeRepository struct {
	coll *mongo.Collection
}

func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	return &MongoRecipeRepository{coll: db.Collection(RecipesCollection)}
}

// EnsureIndexes creates the filter index on category and difficulty.
func (r *MongoRecipeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}},
	})
	return err
}

// List returns recipes matching every set field of filter in natural order.
func (r *MongoRecipeRepository) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	match := bson.M{}
	if filter.Category != "" {
		match["category"] = string(filter.Category)
	}
	if filter.Difficulty != "" {
		match["difficulty"] = string(filter.Difficulty)
	}
	return r.aggregate(ctx, match, 0)
}

// GetByID returns the recipe with the given id, or nil if there is none.
func (r *MongoRecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipes, err := r.aggregate(ctx, bson.M{"_id": id.String()}, 1)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

func (r *MongoRecipeRepository) aggregate(ctx context.Context, match bson.M, limit int64) ([]models.Recipe, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "created_by"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creator"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$creator"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)

	var docs []recipeDocument
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err == nil {
		err = cursor.All(ctx, &docs)
	}

	logQuery("recipes.aggregate", []any{match, limit}, len(docs), err)

	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(docs))
	for _, doc := range docs {
		recipe, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// Save inserts a new recipe.
func (r *MongoRecipeRepository) Save(ctx context.Context, recipe models.Recipe) error {
	doc := newRecipeDocument(recipe)
	_, err := r.coll.InsertOne(ctx, doc)

	logQuery("recipes.insertOne", []any{doc.ID, doc.Title, doc.Category, doc.Difficulty}, nil, err)

	return err
}
