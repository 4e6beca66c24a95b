package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		expectedLevel zapcore.Level
		expectedCode  int
		expectedBody  string
		location      string
	}{
		{
			name: "OK response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hello"))
			},
			expectedLevel: zapcore.InfoLevel,
			expectedCode:  http.StatusOK,
			expectedBody:  "hello",
		},
		{
			name: "Redirect",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			},
			expectedLevel: zapcore.InfoLevel,
			expectedCode:  http.StatusSeeOther,
			location:      "/login",
		},
		{
			name: "Not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedLevel: zapcore.WarnLevel,
			expectedCode:  http.StatusNotFound,
		},
		{
			name: "Internal server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("error"))
			},
			expectedLevel: zapcore.ErrorLevel,
			expectedCode:  http.StatusInternalServerError,
			expectedBody:  "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			var ctxReqID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxReqID = RequestIDFromContext(r.Context())
				tt.handler(w, r)
			})

			handler := LoggingMiddleware(zap.New(core).Sugar())(next)

			req := httptest.NewRequest(http.MethodGet, "/recipe/1", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			bodyBytes, _ := io.ReadAll(rr.Body)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, string(bodyBytes))
			}

			// X-Request-ID header matches the context value
			reqID := rr.Header().Get("X-Request-ID")
			assert.NotEmpty(t, reqID)
			assert.Equal(t, reqID, ctxReqID)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			fields := entry.ContextMap()
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, "request", entry.Message)
			assert.Equal(t, reqID, fields["request_id"])
			assert.Equal(t, "/recipe/1", fields["uri"])
			assert.EqualValues(t, tt.expectedCode, fields["status"])
			assert.Equal(t, "anonymous", fields["user"])
			if tt.location != "" {
				assert.Equal(t, tt.location, fields["location"])
			} else {
				assert.NotContains(t, fields, "location")
			}
		})
	}
}

func TestLoggingMiddleware_RecordsSessionUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := NewMockSessionResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tok").
		Return(&models.UserDB{UserID: uuid.New(), Username: "alice"}, nil)

	core, logs := observer.New(zapcore.InfoLevel)
	cookie := cookies.New("recipe_session", "", false)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := LoggingMiddleware(zap.New(core).Sugar())(SessionMiddleware(resolver, cookie)(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "recipe_session", Value: "tok"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "alice", logs.All()[0].ContextMap()["user"])
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
