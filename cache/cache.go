// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache stores the rendered leaderboard between awards.
//
// The store stays the source of truth: a miss or a cache error just means
// the leaderboard is read from the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/ctf-scoreboard/models"
)

const (
	// LeaderboardKey is the Redis key holding the JSON leaderboard
	LeaderboardKey = "scoreboard:leaderboard"
	// GenerationKey counts invalidations
	GenerationKey = "scoreboard:leaderboard:gen"
)

// Generation identifies the cache state a miss was observed in. Set
// only stores a leaderboard if no Invalidate happened since then.
type Generation int64

// Leaderboard caches the ordered leaderboard.
type Leaderboard interface {
	// Get returns the cached leaderboard and whether it was present. On a
	// miss the generation must be passed to Set along with the recomputed
	// leaderboard.
	Get(ctx context.Context) ([]models.TeamScore, Generation, bool, error)
	// Set stores scores unless the cache was invalidated after gen was read.
	Set(ctx context.Context, gen Generation, scores []models.TeamScore) error
	Invalidate(ctx context.Context) error
}

// Noop never caches. Used when no Redis URL is configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]models.TeamScore, Generation, bool, error) {
	return nil, 0, false, nil
}

func (Noop) Set(context.Context, Generation, []models.TeamScore) error {
	return nil
}

func (Noop) Invalidate(context.Context) error {
	return nil
}

// Redis caches the leaderboard as a JSON string with a TTL
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis parses a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisFromClient(client, ttl), nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context) ([]models.TeamScore, Generation, bool, error) {
	vals, err := r.client.MGet(ctx, LeaderboardKey, GenerationKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	scores, err := decode([]byte(data))
	if err != nil {
		return nil, gen, false, err
	}
	return scores, gen, true, nil
}

// Set writes inside WATCH on the generation key, so an Invalidate that
// lands between the check and the write aborts it.
func (r *Redis) Set(ctx context.Context, gen Generation, scores []models.TeamScore) error {
	data, err := encode(scores)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, GenerationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current, err := parseGeneration(raw)
		if err != nil {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, LeaderboardKey, data, r.ttl)
			return nil
		})
		return err
	}, GenerationKey)

	// A newer award owns the next fill
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, LeaderboardKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var errStale = errors.New("leaderboard cache invalidated since read")

func parseGeneration(v any) (Generation, error) {
	var raw string
	switch v := v.(type) {
	case nil:
		return 0, nil
	case string:
		raw = v
	default:
		return 0, fmt.Errorf("unexpected leaderboard generation %T", v)
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid leaderboard generation %q: %w", raw, err)
	}
	return Generation(n), nil
}

func encode(scores []models.TeamScore) ([]byte, error) {
	if scores == nil {
		scores = []models.TeamScore{}
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.TeamScore, error) {
	var scores []models.TeamScore
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	for i := range scores {
		if scores[i].CompletedChallenges == nil {
			scores[i].CompletedChallenges = []string{}
		}
	}
	return scores, nil
}
