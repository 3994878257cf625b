package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/likeIcare2022/shortn/internal/codegen"
	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/likeIcare2022/shortn/internal/repository"
	"github.com/likeIcare2022/shortn/internal/validator"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrInvalidURL          = errors.New("невалидный URL")
	ErrInvalidCustomCode   = errors.New("невалидный кастомный код")
	ErrCodeTaken           = errors.New("кастомный код уже занят")
	ErrAllocationExhausted = errors.New("не удалось подобрать свободный код")
	ErrNotFound            = errors.New("короткая ссылка не найдена")
	ErrStoreUnavailable    = repository.ErrStoreUnavailable
)

// Значения по умолчанию, если лимиты не заданы
const (
	defaultMaxCustomCodeLength = 20
	defaultMaxURLLength        = 2048
	defaultMaxGenerateAttempts = 50
)

// ShortenService создаёт новые короткие ссылки
type ShortenService interface {
	Shorten(ctx context.Context, originalURL, customCode string) (*models.Mapping, error)
}

type shortenService struct {
	repo      repository.MappingRepository
	generator codegen.Generator
	limits    config.ShortenerConfig
	logger    *zap.Logger
}

// NewShortenService создаёт новый экземпляр сервиса
func NewShortenService(
	repo repository.MappingRepository,
	generator codegen.Generator,
	limits config.ShortenerConfig,
	logger *zap.Logger,
) ShortenService {
	if limits.MaxCustomCodeLength <= 0 {
		limits.MaxCustomCodeLength = defaultMaxCustomCodeLength
	}
	if limits.MaxURLLength <= 0 {
		limits.MaxURLLength = defaultMaxURLLength
	}
	if limits.MaxGenerateAttempts <= 0 {
		limits.MaxGenerateAttempts = defaultMaxGenerateAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &shortenService{
		repo:      repo,
		generator: generator,
		limits:    limits,
		logger:    logger,
	}
}

// Shorten сохраняет URL под кастомным или сгенерированным кодом.
// Пустой customCode означает, что код нужно сгенерировать.
func (s *shortenService) Shorten(ctx context.Context, originalURL, customCode string) (*models.Mapping, error) {
	normalized := validator.NormalizeURL(originalURL)
	if len(normalized) > s.limits.MaxURLLength || !validator.ValidateURL(normalized) {
		return nil, ErrInvalidURL
	}

	if customCode != "" {
		return s.shortenWithCustomCode(ctx, normalized, customCode)
	}

	return s.shortenWithGeneratedCode(ctx, normalized)
}

func (s *shortenService) shortenWithCustomCode(ctx context.Context, originalURL, code string) (*models.Mapping, error) {
	if len(code) > s.limits.MaxCustomCodeLength || !validator.ValidateCustomCode(code) {
		return nil, ErrInvalidCustomCode
	}

	mapping, err := s.repo.Insert(ctx, code, originalURL)
	if err != nil {
		// Явно запрошенный код не подменяется другим
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrCodeTaken
		}
		return nil, storeError(err)
	}

	s.logger.Info("Mapping created",
		zap.String("short_code", mapping.ShortCode),
		zap.Bool("custom", true),
	)
	return mapping, nil
}

func (s *shortenService) shortenWithGeneratedCode(ctx context.Context, originalURL string) (*models.Mapping, error) {
	for attempt := 1; attempt <= s.limits.MaxGenerateAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			// Сбой источника случайности временный, клиент может повторить запрос
			s.logger.Error("Failed to generate short code", zap.Error(err))
			return nil, fmt.Errorf("%w: generate code: %w", ErrAllocationExhausted, err)
		}

		mapping, err := s.repo.Insert(ctx, code, originalURL)
		if err == nil {
			s.logger.Info("Mapping created",
				zap.String("short_code", mapping.ShortCode),
				zap.Int("attempts", attempt),
			)
			return mapping, nil
		}

		if !errors.Is(err, repository.ErrCodeExists) {
			return nil, storeError(err)
		}

		s.logger.Debug("Short code collision, retrying",
			zap.String("short_code", code),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Warn("Short code allocation exhausted",
		zap.Int("max_attempts", s.limits.MaxGenerateAttempts),
	)
	return nil, ErrAllocationExhausted
}

// storeError гарантирует, что любой сбой хранилища распознаётся как ErrStoreUnavailable
func storeError(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
