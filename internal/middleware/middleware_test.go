package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/likeIcare2022/shortn/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(handlers...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": middleware.GetRequestID(c)})
	})
	router.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusServiceUnavailable)
	})
	return router
}

// TestRequestID_Generated проверяет генерацию идентификатора
func TestRequestID_Generated(t *testing.T) {
	router := newRouter(middleware.RequestID())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(middleware.RequestIDHeader)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), requestID)
}

// TestRequestID_Propagated проверяет, что входящий идентификатор сохраняется
func TestRequestID_Propagated(t *testing.T) {
	router := newRouter(middleware.RequestID())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
}

// TestRequestID_TooLong проверяет замену слишком длинного идентификатора
func TestRequestID_TooLong(t *testing.T) {
	router := newRouter(middleware.RequestID())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 200))
	router.ServeHTTP(w, req)

	requestID := w.Header().Get(middleware.RequestIDHeader)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
}

// TestLogger_Fields проверяет поля записи в логе
func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newRouter(middleware.RequestID(), middleware.Logger(zap.New(core)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	router.ServeHTTP(w, req)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

// TestLogger_ServerErrorLevel проверяет уровень записи для 5xx
func TestLogger_ServerErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newRouter(middleware.Logger(zap.New(core)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/fail", nil)
	router.ServeHTTP(w, req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
