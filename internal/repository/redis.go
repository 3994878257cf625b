package repository

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/likeIcare2022/shortn/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis-хранилище: каждый редирект выполняет один EVALSHA, поэтому пул
// рассчитан на число одновременных запросов gin, а не на число воркеров.
// MinIdleConns держит прогретые соединения, чтобы первый редирект после
// простоя не ждал установки TCP.
type RedisDB struct {
	Client *redis.Client
}

const redisConnectTimeout = 5 * time.Second

func NewRedisClient(cfg config.RedisConfig) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	// Хранилище без Redis бесполезно, поэтому недоступность видна сразу при старте
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable(fmt.Sprintf("connect to redis at %s", client.Options().Addr), err)
	}

	return &RedisDB{Client: client}, nil
}

func (db *RedisDB) Close() error {
	return db.Client.Close()
}
