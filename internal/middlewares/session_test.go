package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSessionMiddleware(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}

	tests := []struct {
		name        string
		cookie      string
		mockSetup   func(m *MockSessionResolver)
		wantUser    *models.UserDB
		wantCleared bool
	}{
		{
			name:      "no cookie",
			mockSetup: func(m *MockSessionResolver) {},
		},
		{
			name:   "valid session",
			cookie: "tok",
			mockSetup: func(m *MockSessionResolver) {
				m.EXPECT().Resolve(gomock.Any(), "tok").Return(alice, nil)
			},
			wantUser: alice,
		},
		{
			name:   "stale session",
			cookie: "tok",
			mockSetup: func(m *MockSessionResolver) {
				m.EXPECT().Resolve(gomock.Any(), "tok").Return(nil, services.ErrSessionNotFound)
			},
			wantCleared: true,
		},
		{
			name:   "store error keeps cookie",
			cookie: "tok",
			mockSetup: func(m *MockSessionResolver) {
				m.EXPECT().Resolve(gomock.Any(), "tok").Return(nil, errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			resolver := NewMockSessionResolver(ctrl)
			tt.mockSetup(resolver)

			var got models.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			cookie := cookies.New("recipe_session", "", false)
			handler := SessionMiddleware(resolver, cookie)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "recipe_session", Value: tt.cookie})
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantUser, got.User)
			assert.Equal(t, tt.wantUser != nil, got.IsAuthenticated())

			setCookie := rr.Header().Get("Set-Cookie")
			if tt.wantCleared {
				assert.True(t, strings.HasPrefix(setCookie, "recipe_session=;"), setCookie)
				assert.Contains(t, setCookie, "Max-Age=0")
			} else {
				assert.Empty(t, setCookie)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name             string
		identity         *models.Identity
		expectedStatus   int
		expectNextCalled bool
	}{
		{
			name:           "no identity",
			expectedStatus: http.StatusSeeOther,
		},
		{
			name:           "anonymous",
			identity:       &models.Identity{},
			expectedStatus: http.StatusSeeOther,
		},
		{
			name:             "authenticated",
			identity:         &models.Identity{User: &models.UserDB{Username: "alice", CreatedAt: time.Now()}},
			expectedStatus:   http.StatusOK,
			expectNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/add-recipe", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rr := httptest.NewRecorder()

			RequireAuth(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNextCalled, nextCalled)
			if !tt.expectNextCalled {
				assert.Equal(t, "/login", rr.Header().Get("Location"))
			}
		})
	}
}
