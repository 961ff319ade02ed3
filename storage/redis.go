package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/redis/go-redis/v9"
)

// RedisProgressPrefix namespaces progress keys.
const RedisProgressPrefix = "longdoc:progress:"

// Redis provides a Redis implementation of longdoc.ProgressStore.
type Redis struct {
	Client *redis.Client
	// TTL expires progress entries. Zero keeps them forever.
	TTL time.Duration
}

// NewRedis creates a new Redis client connection with the provided configuration.
// It returns an initialized Redis struct and any error encountered during connection setup.
func NewRedis(addr, password string, db int) (Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return Redis{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return Redis{
		Client: client,
	}, nil
}

// Progress returns the next segment ordinal recorded for docID, or longdoc.ErrProgressNotFound.
func (r Redis) Progress(docID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	value, err := r.Client.Get(ctx, RedisProgressPrefix+docID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, longdoc.ErrProgressNotFound
		}
		return 0, fmt.Errorf("failed to get progress: %w", err)
	}

	next, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", longdoc.ErrCorruptProgress, docID, err)
	}

	return next, nil
}

// SaveProgress records next as the segment ordinal to resume docID from.
func (r Redis) SaveProgress(docID string, next int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.Client.Set(ctx, RedisProgressPrefix+docID, next, r.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}

	return nil
}

// ResetProgress forgets the progress of docID.
func (r Redis) ResetProgress(docID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.Client.Del(ctx, RedisProgressPrefix+docID).Err(); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	return nil
}
