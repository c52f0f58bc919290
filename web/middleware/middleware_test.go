package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/web/cache"
	"github.com/mhsanaei/userhub/web/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(development bool) *gin.Engine {
	r := gin.New()
	r.Use(SecurityHeaders(), Metrics(), ErrorHandler(development), Recovery())
	return r
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(false)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = do(r, http.MethodGet, "/x", http.Header{RequestIDHeader: {"abc"}})
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestErrorHandlerShapes(t *testing.T) {
	r := newEngine(false)
	r.GET("/forbidden", func(c *gin.Context) {
		_ = c.Error(common.NewHTTPError(common.ErrForbidden, "Admins only"))
	})
	r.GET("/invalid", func(c *gin.Context) {
		_ = c.Error(entity.NewValidationError(entity.NewFieldError(entity.LocQuery, "page", "bad", "value_error")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
	})
	r.GET("/panic", func(c *gin.Context) { panic("oops") })

	rec := do(r, http.MethodGet, "/forbidden", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var generic entity.ErrorMsg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generic))
	assert.Equal(t, entity.ErrorMsg{Error: true, Message: "Admins only", StatusCode: 403}, generic)

	rec = do(r, http.MethodGet, "/invalid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var verr entity.ValidationErrorMsg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.True(t, verr.Errors)
	assert.Equal(t, "Validation Error", verr.Message)
	assert.Equal(t, "query -> page", verr.Details[0].Field)

	rec = do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db exploded")

	rec = do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestErrorHandlerDevelopmentDetail(t *testing.T) {
	r := newEngine(true)
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })

	rec := do(r, http.MethodGet, "/boom", nil)
	var body entity.InternalErrorMsg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "db exploded", body.Detail)
}

type fakeResolver map[string]*model.User

func (f fakeResolver) ResolveCaller(_ context.Context, tok string) (*model.User, error) {
	if u, ok := f[tok]; ok {
		return u, nil
	}
	return nil, common.NewHTTPError(common.ErrUnauthorized, "Could not validate credentials")
}

func TestAuthenticate(t *testing.T) {
	alice := &model.User{Id: 7, IsUser: true}
	r := newEngine(false)
	r.GET("/me", Authenticate(fakeResolver{"good": alice}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetCaller(c).Id})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			rec := do(r, http.MethodGet, "/me", h)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	require.NoError(t, cache.InitRedis(context.Background(), ""))
	t.Cleanup(func() { _ = cache.Close() })

	now := time.Date(2026, 1, 1, 0, 0, 0, 200_000_000, time.UTC)
	cfg := PerSecond(1)
	cfg.Now = func() time.Time { return now }

	r := newEngine(false)
	r.POST("/login", RateLimit(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := do(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	var body entity.RateLimitMsg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, entity.RateLimitMsg{
		Error:      true,
		Message:    "Rate Limit Exceeded",
		Detail:     "Too many request. Try again in 1 seconds",
		RetryAfter: 1,
	}, body)

	now = now.Add(time.Second)
	rec = do(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	r := newEngine(false)
	r.GET("/x", RateLimit(PerSecond(1)), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}, false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := do(r, http.MethodGet, "/x", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(r, http.MethodGet, "/x", http.Header{"Origin": {"http://evil.test"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
