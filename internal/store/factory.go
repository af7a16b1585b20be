package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"gerard.app/bot/core/config"
	"gerard.app/bot/core/db"
)

// Open builds the slot store selected by MEMORY_BACKEND. The returned cleanup releases
// connections the store opened itself and is always safe to call.
func Open(ctx context.Context, cfg config.Config) (SlotStore, func(), error) {
	switch cfg.Memory.Backend {
	case "", "file":
		s, err := NewFileStore(cfg.Memory.FilesDir)
		if err != nil {
			return nil, func() {}, err
		}
		slog.InfoContext(ctx, "memory store ready", "backend", "file", "dir", cfg.Memory.FilesDir)
		return s, func() {}, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.Memory.RedisURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, func() {}, fmt.Errorf("connecting to redis: %w", err)
		}
		s := NewRedisStore(client, cfg.Memory.RedisPrefix)
		slog.InfoContext(ctx, "memory store ready", "backend", "redis", "prefix", cfg.Memory.RedisPrefix)
		return s, func() { s.Close() }, nil

	case "postgres":
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, func() {}, fmt.Errorf("migrating database: %w", err)
		}
		slog.InfoContext(ctx, "memory store ready", "backend", "postgres")
		return NewPostgresStore(database.Pool()), database.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("unsupported memory backend %q", cfg.Memory.Backend)
	}
}
