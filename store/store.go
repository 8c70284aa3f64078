// Package store opens the record store selected by configuration.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	poller "nba-game-poller"
	"nba-game-poller/config"
	"nba-game-poller/store/memstore"
	"nba-game-poller/store/redisstore"
	"nba-game-poller/store/sqlstore"
)

// Backend is an open record store and the connections behind it.
type Backend struct {
	Records poller.RecordStore
	// Redis is set for the redis backend so other components can share the client.
	Redis *redis.Client

	closers []func() error
}

func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Open connects to the backend named by cfg.RecordBackend.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.RecordBackend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &Backend{Records: redisstore.New(client), Redis: client, closers: []func() error{client.Close}}, nil
	case config.BackendSQLite, config.BackendPostgres:
		driver := sqlstore.DriverSQLite
		if cfg.RecordBackend == config.BackendPostgres {
			driver = sqlstore.DriverPostgres
		}
		s, err := sqlstore.Open(ctx, driver, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.RecordBackend, err)
		}
		return &Backend{Records: s, closers: []func() error{s.Close}}, nil
	case config.BackendMemory:
		return &Backend{Records: memstore.New()}, nil
	default:
		return nil, fmt.Errorf("unknown record backend %q", cfg.RecordBackend)
	}
}
