package service

import (
	"context"
	"errors"

	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/likeIcare2022/shortn/internal/repository"
	"go.uber.org/zap"
)

// ResolveService разрешает короткие коды в исходные URL
type ResolveService interface {
	// Resolve возвращает исходный URL и засчитывает переход
	Resolve(ctx context.Context, shortCode string) (string, error)
	// Stats читает запись без изменения счётчика
	Stats(ctx context.Context, shortCode string) (*models.Mapping, error)
}

type resolveService struct {
	repo   repository.MappingRepository
	logger *zap.Logger
}

func NewResolveService(repo repository.MappingRepository, logger *zap.Logger) ResolveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resolveService{
		repo:   repo,
		logger: logger,
	}
}

func (s *resolveService) Resolve(ctx context.Context, shortCode string) (string, error) {
	originalURL, err := s.repo.IncrementAndGet(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return "", ErrNotFound
		}
		return "", storeError(err)
	}

	s.logger.Debug("Short code resolved", zap.String("short_code", shortCode))
	return originalURL, nil
}

func (s *resolveService) Stats(ctx context.Context, shortCode string) (*models.Mapping, error) {
	mapping, err := s.repo.Lookup(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError(err)
	}
	return mapping, nil
}
