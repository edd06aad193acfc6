package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCounter struct {
	hits map[string]int64
	err  error
}

func (f *fakeCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.hits[key]++
	return f.hits[key], nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/echo", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	counter := &fakeCounter{hits: map[string]int64{}}
	r := newRouter(RateLimitMiddleware(counter, 2, time.Minute))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
		if i == 0 {
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	t.Run("counter error", func(t *testing.T) {
		r := newRouter(RateLimitMiddleware(&fakeCounter{err: errors.New("down")}, 1, time.Minute))
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("unreachable redis", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer client.Close()

		r := newRouter(RateLimitMiddleware(NewRedisCounter(client), 1, time.Minute))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		r := newRouter(RateLimitMiddleware(nil, 1, time.Minute))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware(), RequestLoggerMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, generated)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestWriteLoggerMiddleware_RestoresBody(t *testing.T) {
	r := newRouter(RequestIDMiddleware(), WriteLoggerMiddleware())

	body := `{"name":"Ash","password":"hunter22"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
}

func TestMaskBody(t *testing.T) {
	assert.Equal(t, "(empty)", maskBody(nil))
	assert.Equal(t, `{"name":"Ash","password":"***"}`, maskBody([]byte(`{"name":"Ash","password":"hunter22"}`)))
	assert.Equal(t, `{"name":"Ash"}`, maskBody([]byte(`{"name":"Ash"}`)))
	assert.Equal(t, "not json", maskBody([]byte("not json")))

	long := strings.Repeat("x", maxLoggedBody+10)
	assert.Equal(t, maxLoggedBody+3, len(maskBody([]byte(long))))
}
