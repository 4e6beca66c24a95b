package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeForm() url.Values {
	return url.Values{
		"title":       {"Pancakes"},
		"description": {"Fluffy"},
		"ingredients": {"flour, milk"},
		"category":    {"Dessert"},
		"difficulty":  {"Easy"},
	}
}

func multipartRecipe(t *testing.T, values url.Values, filename string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/add-recipe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAddRecipePageHandler(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}
	req := withUser(httptest.NewRequest(http.MethodGet, "/add-recipe", nil), alice)
	w := httptest.NewRecorder()

	NewAddRecipePageHandler(newTestRenderer(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `enctype="multipart/form-data"`)
	assert.Contains(t, w.Body.String(), "Zalogowano jako alice")
}

func TestAddRecipeHandler(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}
	created := &models.Recipe{ID: uuid.New(), Title: "Pancakes"}

	t.Run("multipart with image", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any(), alice.UserID).
			DoAndReturn(func(ctx context.Context, in models.RecipeInput, creator uuid.UUID) (*models.Recipe, error) {
				assert.Equal(t, "Pancakes", in.Title)
				assert.Equal(t, "Dessert", in.Category)
				assert.Equal(t, "Easy", in.Difficulty)
				require.NotNil(t, in.Image)
				assert.Equal(t, "pancakes.png", in.Image.Filename)
				b, err := io.ReadAll(in.Image.Content)
				require.NoError(t, err)
				assert.Equal(t, []byte("fake image"), b)
				return created, nil
			})

		req := withUser(multipartRecipe(t, recipeForm(), "pancakes.png", []byte("fake image")), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("multipart without image", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any(), alice.UserID).
			DoAndReturn(func(ctx context.Context, in models.RecipeInput, creator uuid.UUID) (*models.Recipe, error) {
				assert.Nil(t, in.Image)
				return created, nil
			})

		req := withUser(multipartRecipe(t, recipeForm(), "", nil), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("urlencoded form", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any(), alice.UserID).
			DoAndReturn(func(ctx context.Context, in models.RecipeInput, creator uuid.UUID) (*models.Recipe, error) {
				assert.Equal(t, "flour, milk", in.Ingredients)
				assert.Nil(t, in.Image)
				return created, nil
			})

		req := withUser(postForm("/add-recipe", recipeForm()), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("anonymous", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		req := postForm("/add-recipe", recipeForm())
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("validation error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		form := recipeForm()
		form.Set("category", "Invalid")
		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any(), alice.UserID).
			Return(nil, &models.ValidationError{Field: "category", Reason: "must be one of Dessert, Main Course, Appetizer, Drink, Other"})

		req := withUser(postForm("/add-recipe", form), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgCreateFailed, strings.TrimSpace(w.Body.String()))
	})

	t.Run("service requires login", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any(), alice.UserID).Return(nil, services.ErrUnauthenticated)

		req := withUser(postForm("/add-recipe", recipeForm()), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("body too large", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSvc := NewMockRecipeCreator(ctrl)

		req := withUser(multipartRecipe(t, recipeForm(), "big.png", bytes.Repeat([]byte("x"), 4096)), alice)
		w := httptest.NewRecorder()

		NewAddRecipeHandler(mockSvc, 1024).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgCreateFailed, strings.TrimSpace(w.Body.String()))
	})
}

func TestGetRecipeHandler(t *testing.T) {
	id := uuid.New()
	recipe := &models.Recipe{
		ID:          id,
		Title:       "Pancakes",
		Description: "Fluffy",
		Ingredients: "flour",
		Category:    models.CategoryDessert,
		Difficulty:  models.DifficultyEasy,
		Author:      &models.Author{ID: uuid.New(), Username: "alice"},
	}

	tests := []struct {
		name         string
		path         string
		mockSetup    func(m *MockRecipeGetter)
		expectedCode int
		contains     string
	}{
		{
			name: "found",
			path: "/recipe/" + id.String(),
			mockSetup: func(m *MockRecipeGetter) {
				m.EXPECT().Get(gomock.Any(), id).Return(recipe, nil)
			},
			expectedCode: http.StatusOK,
			contains:     "Autor: alice",
		},
		{
			name: "not found",
			path: "/recipe/" + id.String(),
			mockSetup: func(m *MockRecipeGetter) {
				m.EXPECT().Get(gomock.Any(), id).Return(nil, services.ErrRecipeNotFound)
			},
			expectedCode: http.StatusNotFound,
			contains:     msgRecipeNotFound,
		},
		{
			name:         "malformed id",
			path:         "/recipe/not-a-uuid",
			mockSetup:    func(m *MockRecipeGetter) {},
			expectedCode: http.StatusNotFound,
			contains:     msgRecipeNotFound,
		},
		{
			name: "store error",
			path: "/recipe/" + id.String(),
			mockSetup: func(m *MockRecipeGetter) {
				m.EXPECT().Get(gomock.Any(), id).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
			contains:     msgServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockRecipeGetter(ctrl)
			tt.mockSetup(mockSvc)

			r := chi.NewRouter()
			r.Get("/recipe/{id}", NewGetRecipeHandler(mockSvc, newTestRenderer(t)))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
