package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/likeIcare2022/shortn/internal/models"
)

type mappingRepository struct {
	db *PostgresDB
}

func NewMappingRepository(db *PostgresDB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error) {
	// ON CONFLICT DO NOTHING: при конфликте RETURNING не вернёт строк
	query := `
		INSERT INTO urls (short_code, original_url)
		VALUES ($1, $2)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING id, click_count, created_at
	`

	mapping := &models.Mapping{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
	}

	err := r.db.Pool.QueryRow(ctx, query, shortCode, originalURL).Scan(
		&mapping.ID,
		&mapping.ClickCount,
		&mapping.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeExists
		}
		return nil, unavailable("insert mapping", err)
	}

	return mapping, nil
}

func (r *mappingRepository) Lookup(ctx context.Context, shortCode string) (*models.Mapping, error) {
	query := `
		SELECT id, short_code, original_url, click_count, created_at
		FROM urls
		WHERE short_code = $1
	`

	mapping := &models.Mapping{}
	err := r.db.Pool.QueryRow(ctx, query, shortCode).Scan(
		&mapping.ID,
		&mapping.ShortCode,
		&mapping.OriginalURL,
		&mapping.ClickCount,
		&mapping.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMappingNotFound
		}
		return nil, unavailable("lookup mapping", err)
	}

	return mapping, nil
}

func (r *mappingRepository) IncrementAndGet(ctx context.Context, shortCode string) (string, error) {
	// Одна команда: блокировка строки, инкремент и чтение без гонок
	query := `
		UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1
		RETURNING original_url
	`

	var originalURL string
	err := r.db.Pool.QueryRow(ctx, query, shortCode).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrMappingNotFound
		}
		return "", unavailable("increment click count", err)
	}

	return originalURL, nil
}

func (r *mappingRepository) Ping(ctx context.Context) error {
	if err := r.db.Pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
