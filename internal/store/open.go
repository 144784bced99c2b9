package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Driver        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the configured store. The returned func releases its
// connections.
func Open(ctx context.Context, opts Options, log *slog.Logger) (CustomerStore, func(), error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryStore(), func() {}, nil
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres store: DATABASE_URL is empty")
		}
		db, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st := NewPostgresStore(db, log)
		if err := st.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, func() { db.Close() }, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(rdb), func() { rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
