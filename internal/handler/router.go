package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/likeIcare2022/shortn/internal/middleware"
	"github.com/likeIcare2022/shortn/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	shortenService service.ShortenService,
	resolveService service.ResolveService,
	store Pinger,
	baseURL string,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	linkHandler := NewLinkHandler(shortenService, resolveService, baseURL, logger)
	healthHandler := NewHealthHandler(store, logger)
	formHandler := NewFormHandler(shortenService, baseURL, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.HealthCheck)
		v1.POST("/links", linkHandler.CreateLink)
		v1.GET("/links/:code", linkHandler.GetStats)
	}

	// HTML-форма
	router.GET("/", formHandler.Index)
	router.POST("/", formHandler.Shorten)

	// Редирект по короткому коду
	router.GET("/:code", linkHandler.Redirect)

	return router
}
