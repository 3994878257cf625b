package repository

import (
	"fmt"
	"io"

	"github.com/likeIcare2022/shortn/internal/config"
)

// Open подключается к хранилищу, выбранному в конфиге. Вызывающий закрывает
// возвращённый io.Closer при остановке сервиса.
func Open(cfg *config.Config) (MappingRepository, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return NewMappingRepository(db), db, nil

	case config.DriverSQLite:
		db, err := NewSQLiteDB(cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteMappingRepository(db), db, nil

	case config.DriverRedis:
		db, err := NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisMappingRepository(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
