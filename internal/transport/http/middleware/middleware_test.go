package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier map[string]string

func (s stubVerifier) Verify(tok string) (string, error) {
	if sub, ok := s[tok]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

func TestAuthJWT(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthJWT(stubVerifier{"good": "user-1"}), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	tt := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "Valid", header: "Bearer good", status: 200, body: "user-1"},
		{name: "Lowercase Scheme", header: "bearer good", status: 200, body: "user-1"},
		{name: "Missing", header: "", status: 401, body: `"message":"missing token"`},
		{name: "Wrong Scheme", header: "Basic abc", status: 401, body: `"message":"missing token"`},
		{name: "Invalid", header: "Bearer nope", status: 401, body: `"message":"invalid token"`},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)
			require.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7?token=abc&q=x", nil)
	req.Header.Set(HeaderRequestID, "rid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "rid-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, w.Header().Get(HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, zapcore.ErrorLevel, e.Level)
	fields := e.ContextMap()
	require.Equal(t, "rid-123", fields["rid"])
	require.Equal(t, "/items/:id", fields["path"])
	require.Equal(t, int64(500), fields["status"])
	require.Contains(t, fields["errors"], "db down")
	q := fields["query"].(map[string][]string)
	require.Equal(t, []string{"****"}, q["token"])
	require.Equal(t, []string{"x"}, q["q"])
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large")))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Contains(t, w.Body.String(), `"statusCode":413`)

	// 未声明长度时由 MaxBytesReader 截断
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large"))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	require.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestConcurrencyLimit(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(1), Metrics())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}
