package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]models.UserDB
	byUsername map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[uuid.UUID]models.UserDB),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserDB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, user models.UserDB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return models.ErrDuplicateKey
	}
	if _, ok := r.byID[user.UserID]; ok {
		return models.ErrDuplicateKey
	}
	r.byID[user.UserID] = user
	r.byUsername[user.Username] = user.UserID
	return nil
}

// MemoryRecipeRepository keeps recipes in insertion order and resolves
// creators through users.
type MemoryRecipeRepository struct {
	mu      sync.RWMutex
	recipes []models.Recipe
	users   *MemoryUserRepository
}

func NewMemoryRecipeRepository(users *MemoryUserRepository) *MemoryRecipeRepository {
	return &MemoryRecipeRepository{users: users}
}

func (r *MemoryRecipeRepository) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		if filter.Match(recipe) {
			result = append(result, r.populate(ctx, recipe))
		}
	}
	return result, nil
}

func (r *MemoryRecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, recipe := range r.recipes {
		if recipe.ID == id {
			populated := r.populate(ctx, recipe)
			return &populated, nil
		}
	}
	return nil, nil
}

func (r *MemoryRecipeRepository) Save(ctx context.Context, recipe models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.recipes {
		if existing.ID == recipe.ID {
			return models.ErrDuplicateKey
		}
	}
	recipe.Author = nil
	r.recipes = append(r.recipes, recipe)
	return nil
}

func (r *MemoryRecipeRepository) populate(ctx context.Context, recipe models.Recipe) models.Recipe {
	if !recipe.CreatedBy.Valid || r.users == nil {
		return recipe
	}
	if u, _ := r.users.GetByID(ctx, recipe.CreatedBy.UUID); u != nil {
		recipe.Author = &models.Author{ID: u.UserID, Username: u.Username}
	}
	return recipe
}

// MemorySessionRepository keeps sessions in process memory and drops them once expired.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.Session
	now      func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]models.Session),
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Save(ctx context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = s
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.Expired(r.now()) {
		delete(r.sessions, id)
		return nil, nil
	}
	return &s, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
