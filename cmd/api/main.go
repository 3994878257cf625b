package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/likeIcare2022/shortn/internal/codegen"
	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/likeIcare2022/shortn/internal/handler"
	"github.com/likeIcare2022/shortn/internal/logger"
	"github.com/likeIcare2022/shortn/internal/repository"
	"github.com/likeIcare2022/shortn/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	gin.SetMode(cfg.App.GinMode)

	// Подключение к хранилищу
	repo, store, err := repository.Open(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to open store",
			zap.String("driver", cfg.Store.Driver),
			zap.Error(err),
		)
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Error("Failed to close store", zap.Error(err))
		}
	}()
	zapLogger.Info("Store opened", zap.String("driver", cfg.Store.Driver))

	// Генератор кодов
	generator, err := codegen.NewRandom(codegen.Alphabet, cfg.Shortener.CodeLength)
	if err != nil {
		zapLogger.Fatal("Failed to init code generator", zap.Error(err))
	}

	// Инициализация сервисов
	shortenService := service.NewShortenService(repo, generator, cfg.Shortener, zapLogger)
	resolveService := service.NewResolveService(repo, zapLogger)

	// Настройка роутера
	router := handler.NewRouter(shortenService, resolveService, repo, cfg.App.BaseURL, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		zapLogger.Fatal("Failed to listen", zap.String("addr", srv.Addr), zap.Error(err))
	}

	// Graceful Shutdown по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Serving short links", zap.String("base_url", cfg.App.BaseURL))
	if err := serve(ctx, srv, ln, cfg.App.ShutdownTimeout, zapLogger); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
	}
}
