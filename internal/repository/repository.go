package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/likeIcare2022/shortn/internal/models"
)

var (
	ErrMappingNotFound  = errors.New("mapping not found")
	ErrCodeExists       = errors.New("short code already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// MappingRepository - единственная точка контроля уникальности кодов и атомарности счётчика
type MappingRepository interface {
	// Insert создаёт запись с click_count = 0 или возвращает ErrCodeExists
	Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error)
	Lookup(ctx context.Context, shortCode string) (*models.Mapping, error)
	// IncrementAndGet атомарно увеличивает click_count и возвращает original_url
	IncrementAndGet(ctx context.Context, shortCode string) (string, error)
	Ping(ctx context.Context) error
}

// unavailable оборачивает ошибку ввода-вывода так, чтобы её нельзя было спутать с NotFound
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

type PostgresDB struct {
	Pool *pgxpool.Pool
}

const createURLsTablePostgres = `
	CREATE TABLE IF NOT EXISTS urls (
		id           BIGSERIAL PRIMARY KEY,
		short_code   TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		click_count  BIGINT NOT NULL DEFAULT 0 CHECK (click_count >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настройка пула соединений
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Аналог db.create_all(): таблица создаётся при старте
	if _, err := pool.Exec(ctx, createURLsTablePostgres); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create urls table: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.Pool.Close()
	return nil
}
