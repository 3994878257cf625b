package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/likeIcare2022/shortn/internal/repository"
)

// MockMappingRepository implements repository.MappingRepository in memory.
// Every operation holds the mutex for its whole duration, so Insert and
// IncrementAndGet are atomic like the real stores.
type MockMappingRepository struct {
	mu       sync.Mutex
	mappings map[string]*models.Mapping
	nextID   int64
	inserts  int
}

func NewMockMappingRepository() *MockMappingRepository {
	return &MockMappingRepository{
		mappings: make(map[string]*models.Mapping),
		nextID:   1,
	}
}

func (m *MockMappingRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inserts++
	if _, exists := m.mappings[shortCode]; exists {
		return nil, repository.ErrCodeExists
	}

	mapping := &models.Mapping{
		ID:          m.nextID,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}
	m.nextID++
	m.mappings[shortCode] = mapping

	stored := *mapping
	return &stored, nil
}

func (m *MockMappingRepository) Lookup(ctx context.Context, shortCode string) (*models.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, exists := m.mappings[shortCode]
	if !exists {
		return nil, repository.ErrMappingNotFound
	}
	stored := *mapping
	return &stored, nil
}

func (m *MockMappingRepository) IncrementAndGet(ctx context.Context, shortCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, exists := m.mappings[shortCode]
	if !exists {
		return "", repository.ErrMappingNotFound
	}
	mapping.ClickCount++
	return mapping.OriginalURL, nil
}

func (m *MockMappingRepository) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored mappings.
func (m *MockMappingRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}

// Inserts returns how many times Insert was called, including rejected calls.
func (m *MockMappingRepository) Inserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

func (m *MockMappingRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings = make(map[string]*models.Mapping)
	m.nextID = 1
	m.inserts = 0
}

// ErrConnectionRefused is the underlying failure reported by FailingMappingRepository.
var ErrConnectionRefused = errors.New("connection refused")

// FailingMappingRepository simulates a store that cannot be reached.
type FailingMappingRepository struct{}

func (FailingMappingRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error) {
	return nil, fmt.Errorf("%w: insert: %w", repository.ErrStoreUnavailable, ErrConnectionRefused)
}

func (FailingMappingRepository) Lookup(ctx context.Context, shortCode string) (*models.Mapping, error) {
	return nil, fmt.Errorf("%w: lookup: %w", repository.ErrStoreUnavailable, ErrConnectionRefused)
}

func (FailingMappingRepository) IncrementAndGet(ctx context.Context, shortCode string) (string, error) {
	return "", fmt.Errorf("%w: increment: %w", repository.ErrStoreUnavailable, ErrConnectionRefused)
}

func (FailingMappingRepository) Ping(ctx context.Context) error {
	return fmt.Errorf("%w: ping: %w", repository.ErrStoreUnavailable, ErrConnectionRefused)
}

// FixedGenerator returns the same code on every call.
type FixedGenerator struct {
	Code string
}

func (g FixedGenerator) Generate() (string, error) {
	return g.Code, nil
}

// ErrEntropyUnavailable is returned by FailingGenerator.
var ErrEntropyUnavailable = errors.New("entropy source unavailable")

// FailingGenerator simulates a broken random source.
type FailingGenerator struct{}

func (FailingGenerator) Generate() (string, error) {
	return "", ErrEntropyUnavailable
}
