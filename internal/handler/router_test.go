package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/likeIcare2022/shortn/internal/codegen"
	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/likeIcare2022/shortn/internal/handler"
	"github.com/likeIcare2022/shortn/internal/repository"
	"github.com/likeIcare2022/shortn/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupSQLiteRouter собирает приложение целиком поверх временной SQLite базы
func setupSQLiteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewSQLiteDB(config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "urls.db"),
		BusyTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSQLiteMappingRepository(db)
	logger := zap.NewNop()
	limits := config.ShortenerConfig{
		CodeLength:          codegen.DefaultLength,
		MaxCustomCodeLength: 20,
		MaxURLLength:        2048,
		MaxGenerateAttempts: 50,
	}

	return handler.NewRouter(
		service.NewShortenService(repo, codegen.NewDefault(), limits, logger),
		service.NewResolveService(repo, logger),
		repo,
		testBaseURL,
		logger,
	)
}

func getStats(t *testing.T, router *gin.Engine, code string) handler.LinkResponse {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/links/"+code, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response handler.LinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func redirect(router *gin.Engine, code string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/"+code, nil)
	router.ServeHTTP(w, req)
	return w
}

// TestEndToEnd_ShortenAndResolve проверяет полный цикл: создание, редирект, счётчик
func TestEndToEnd_ShortenAndResolve(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := postJSON(router, "/api/v1/links", map[string]string{"url": "example.com/docs"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created handler.LinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.ShortCode, codegen.DefaultLength)
	assert.Equal(t, "http://example.com/docs", created.OriginalURL)

	for i := 0; i < 3; i++ {
		w := redirect(router, created.ShortCode)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://example.com/docs", w.Header().Get("Location"))
	}

	assert.EqualValues(t, 3, getStats(t, router, created.ShortCode).ClickCount)
}

// TestEndToEnd_CustomCodeCollision проверяет сценарий с занятым кодом promo1
func TestEndToEnd_CustomCodeCollision(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := postJSON(router, "/api/v1/links", map[string]string{"url": "https://a.example", "custom_code": "promo1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/v1/links", map[string]string{"url": "https://b.example", "custom_code": "promo1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = redirect(router, "promo1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://a.example", w.Header().Get("Location"))
}

// TestEndToEnd_UnknownCode проверяет, что неизвестный код не создаёт запись
func TestEndToEnd_UnknownCode(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := redirect(router, "zzzzzz")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/links/zzzzzz", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestEndToEnd_Validation проверяет отклонение невалидных данных
func TestEndToEnd_Validation(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := postJSON(router, "/api/v1/links", map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_url")

	w = postJSON(router, "/api/v1/links", map[string]string{"url": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_url")

	// Схема внутри query не мешает добавить http://
	w = postJSON(router, "/api/v1/links", map[string]string{"url": "example.com/go?to=https://b.example"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"original_url":"http://example.com/go?to=https://b.example"`)

	w = postJSON(router, "/api/v1/links", map[string]string{"url": "https://example.com", "custom_code": "abc-123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_custom_code")
}

// TestEndToEnd_ConcurrentRedirects проверяет, что параллельные переходы не теряются
func TestEndToEnd_ConcurrentRedirects(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := postJSON(router, "/api/v1/links", map[string]string{"url": "https://example.com", "custom_code": "hot"})
	require.Equal(t, http.StatusCreated, w.Code)

	const requests = 50
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := redirect(router, "hot")
			assert.Equal(t, http.StatusFound, w.Code)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, requests, getStats(t, router, "hot").ClickCount)
}

// TestEndToEnd_Health проверяет health check на настоящем хранилище
func TestEndToEnd_Health(t *testing.T) {
	router := setupSQLiteRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
