package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nutrismart/planner/internal/domain/user"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) SignIn(ctx context.Context, accessToken string) (*inbound.Session, error) {
	args := m.Called(ctx, accessToken)
	s, _ := args.Get(0).(*inbound.Session)
	return s, args.Error(1)
}

func (m *mockAuthService) Authenticate(ctx context.Context, sessionToken string) (*user.User, error) {
	args := m.Called(ctx, sessionToken)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockAuthService) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, int64(http.StatusBadGateway), entry.ContextMap()["status_code"])
	assert.Equal(t, "/api/v1/plans", entry.ContextMap()["path"])
}

func TestSecurity_SetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Security()(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		preflight  bool
		wantOrigin string
		wantCode   int
	}{
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", false, "http://localhost:5173", http.StatusOK},
		{"unlisted origin", []string{"http://localhost:5173"}, "http://evil.test", false, "", http.StatusOK},
		{"wildcard", []string{"*"}, "http://any.test", false, "*", http.StatusOK},
		{"preflight", []string{"*"}, "http://any.test", true, "*", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/v1/profiles", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}

			rec := httptest.NewRecorder()
			CORS(tt.origins)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestJSONOnly(t *testing.T) {
	t.Run("rejects form bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/grocery", strings.NewReader("name=milk"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		JSONOnly()(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, apperrors.CodeBadRequest, body.Error.Code)
	})

	t.Run("accepts JSON and empty bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/grocery", strings.NewReader(`{"name":"milk"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()
		JSONOnly()(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		JSONOnly()(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plans/u1/grocery", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}

func TestMaxBodyBytes(t *testing.T) {
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	MaxBodyBytes(8)(readAll).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	decodeError(t, rec)

	rec = httptest.NewRecorder()
	MaxBodyBytes(8)(readAll).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	limiter := NewRateLimiter(60, 2, time.Minute, zaptest.NewLogger(t))
	handler := limiter.Middleware(ok)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001").Code)

	limited := call("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Equal(t, apperrors.CodeTooManyRequests, decodeError(t, limited).Error.Code)

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000").Code, "other clients have their own bucket")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(60, 1, time.Minute, zaptest.NewLogger(t))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(30 * time.Second)
	limiter.Allow("b")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, limiter.Cleanup())
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "b")
}

func TestRequireSession(t *testing.T) {
	signedIn, err := user.NewUser("cook@example.com", "Cook", "", time.Now())
	require.NoError(t, err)

	auth := &mockAuthService{}
	auth.On("Authenticate", mock.Anything, "good").Return(signedIn, nil)
	auth.On("Authenticate", mock.Anything, "expired").Return(nil, apperrors.NewInvalidCredentialsError())

	var seen *user.User
	handler := RequireSession(auth, zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer expired", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "cook@example.com", seen.Email())
	auth.AssertExpectations(t)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  tok ")
	token, found := BearerToken(req)
	assert.True(t, found)
	assert.Equal(t, "tok", token)

	req.Header.Set("Authorization", "Bearer ")
	_, found = BearerToken(req)
	assert.False(t, found)
}
