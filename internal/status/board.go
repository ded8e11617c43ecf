// Package status keeps the latest user-visible status of each run in Redis
// so that any API instance can answer status queries for jobs executed by
// any worker.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no status was recorded for a run or it
// has expired.
var ErrNotFound = errors.New("status not found")

const keyPrefix = "runbox:run:"

// Key is the Redis key holding the status of runID.
func Key(runID string) string {
	return keyPrefix + runID + ":status"
}

// Channel is the pub/sub channel status changes of runID are published on.
func Channel(runID string) string {
	return keyPrefix + runID
}

// Board reads and writes run statuses.
type Board struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// New creates a Board. Entries expire ttl after their last update; zero
// keeps them forever.
func New(rdb redis.Cmdable, ttl time.Duration) *Board {
	return &Board{rdb: rdb, ttl: ttl}
}

// Set stores status for runID and publishes it.
func (b *Board) Set(ctx context.Context, runID, status string) error {
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, Key(runID), status, b.ttl)
		p.Publish(ctx, Channel(runID), status)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set status of %s: %w", runID, err)
	}
	return nil
}

// Get returns the last status stored for runID.
func (b *Board) Get(ctx context.Context, runID string) (string, error) {
	s, err := b.rdb.Get(ctx, Key(runID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get status of %s: %w", runID, err)
	}
	return s, nil
}

// Connect opens a client and checks that the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}
