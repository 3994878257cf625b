package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/mattn/go-sqlite3"
)

type SQLiteDB struct {
	DB *sql.DB
}

const createURLsTableSQLite = `
	CREATE TABLE IF NOT EXISTS urls (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code   TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		click_count  INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0),
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

func NewSQLiteDB(cfg config.SQLiteConfig) (*SQLiteDB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite допускает одного писателя, поэтому запросы сериализуются на одном соединении
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, createURLsTableSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create urls table: %w", err)
	}

	return &SQLiteDB{DB: db}, nil
}

func (db *SQLiteDB) Close() error {
	return db.DB.Close()
}

type sqliteMappingRepository struct {
	db *SQLiteDB
}

func NewSQLiteMappingRepository(db *SQLiteDB) MappingRepository {
	return &sqliteMappingRepository{db: db}
}

func (r *sqliteMappingRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error) {
	createdAt := time.Now().UTC()

	result, err := r.db.DB.ExecContext(ctx,
		"INSERT INTO urls (short_code, original_url, created_at) VALUES (?, ?, ?)",
		shortCode, originalURL, createdAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrCodeExists
		}
		return nil, unavailable("insert mapping", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, unavailable("insert mapping", err)
	}

	return &models.Mapping{
		ID:          id,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

func (r *sqliteMappingRepository) Lookup(ctx context.Context, shortCode string) (*models.Mapping, error) {
	mapping := &models.Mapping{}
	err := r.db.DB.QueryRowContext(ctx,
		"SELECT id, short_code, original_url, click_count, created_at FROM urls WHERE short_code = ?",
		shortCode,
	).Scan(&mapping.ID, &mapping.ShortCode, &mapping.OriginalURL, &mapping.ClickCount, &mapping.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMappingNotFound
		}
		return nil, unavailable("lookup mapping", err)
	}

	return mapping, nil
}

func (r *sqliteMappingRepository) IncrementAndGet(ctx context.Context, shortCode string) (string, error) {
	var originalURL string
	err := r.db.DB.QueryRowContext(ctx,
		"UPDATE urls SET click_count = click_count + 1 WHERE short_code = ? RETURNING original_url",
		shortCode,
	).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMappingNotFound
		}
		return "", unavailable("increment click count", err)
	}

	return originalURL, nil
}

func (r *sqliteMappingRepository) Ping(ctx context.Context) error {
	if err := r.db.DB.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
