package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/redis/go-redis/v9"
)

// Префикс отличается от url:, чтобы не пересекаться с ключами кодов
const sequenceKey = "urls:seq"

// Скрипты выполняются Redis атомарно, поэтому проверка и запись не разделены
var (
	insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local id = redis.call('INCR', KEYS[2])
redis.call('HSET', KEYS[1], 'id', id, 'original_url', ARGV[1], 'click_count', '0', 'created_at', ARGV[2])
return id
`)

	incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'click_count', 1)
return redis.call('HGET', KEYS[1], 'original_url')
`)
)

type redisMappingRepository struct {
	redis *RedisDB
}

func NewRedisMappingRepository(redis *RedisDB) MappingRepository {
	return &redisMappingRepository{redis: redis}
}

func (r *redisMappingRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.Mapping, error) {
	createdAt := time.Now().UTC()

	id, err := insertScript.Run(ctx, r.redis.Client,
		[]string{r.key(shortCode), sequenceKey},
		originalURL, createdAt.UnixMilli(),
	).Int64()
	if err != nil {
		return nil, unavailable("insert mapping", err)
	}
	if id == 0 {
		return nil, ErrCodeExists
	}

	return &models.Mapping{
		ID:          id,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.UnixMilli(createdAt.UnixMilli()).UTC(),
	}, nil
}

func (r *redisMappingRepository) Lookup(ctx context.Context, shortCode string) (*models.Mapping, error) {
	fields, err := r.redis.Client.HGetAll(ctx, r.key(shortCode)).Result()
	if err != nil {
		return nil, unavailable("lookup mapping", err)
	}
	if len(fields) == 0 {
		return nil, ErrMappingNotFound
	}

	mapping := &models.Mapping{
		ShortCode:   shortCode,
		OriginalURL: fields["original_url"],
	}

	if mapping.ID, err = strconv.ParseInt(fields["id"], 10, 64); err != nil {
		return nil, unavailable("decode mapping id", err)
	}
	if mapping.ClickCount, err = strconv.ParseInt(fields["click_count"], 10, 64); err != nil {
		return nil, unavailable("decode click count", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, unavailable("decode created_at", err)
	}
	mapping.CreatedAt = time.UnixMilli(createdAt).UTC()

	return mapping, nil
}

func (r *redisMappingRepository) IncrementAndGet(ctx context.Context, shortCode string) (string, error) {
	originalURL, err := incrementScript.Run(ctx, r.redis.Client, []string{r.key(shortCode)}).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMappingNotFound
		}
		return "", unavailable("increment click count", err)
	}

	return originalURL, nil
}

func (r *redisMappingRepository) Ping(ctx context.Context) error {
	if err := r.redis.Client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *redisMappingRepository) key(shortCode string) string {
	return "url:" + shortCode
}
