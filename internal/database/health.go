package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Checker pings the backing stores for the health endpoint.
type Checker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func NewChecker(pool *pgxpool.Pool, rdb *redis.Client) *Checker {
	return &Checker{pool: pool, rdb: rdb}
}

// Check returns a per-store status map and the first failure, if any.
func (h *Checker) Check(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"postgres": "ok", "redis": "ok"}
	var firstErr error

	if err := h.pool.Ping(ctx); err != nil {
		status["postgres"] = "down"
		firstErr = fmt.Errorf("postgres: %w", err)
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		status["redis"] = "down"
		if firstErr == nil {
			firstErr = fmt.Errorf("redis: %w", err)
		}
	}
	return status, firstErr
}
