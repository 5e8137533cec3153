package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/assistec/backend/internal/domain/trade"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SequenceFloor reports the value a fresh counter must start from so that numbers
// already stored in the database are never handed out again
type SequenceFloor interface {
	Floor(ctx context.Context, name trade.SequenceName) (int64, error)
}

// RedisSequenceGenerator hands out document numbers with INCR.
// A missing counter is seeded from the database under a distributed lock.
// Numbers are not returned on rollback, so a failed conversion leaves a gap.
type RedisSequenceGenerator struct {
	client    *redis.Client
	locker    *redislock.Client
	floor     SequenceFloor
	keyPrefix string
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewRedisSequenceGenerator creates a Redis-backed sequence generator
func NewRedisSequenceGenerator(client *redis.Client, floor SequenceFloor, logger *zap.Logger) *RedisSequenceGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSequenceGenerator{
		client:    client,
		locker:    redislock.New(client),
		floor:     floor,
		keyPrefix: "sequence:",
		lockTTL:   10 * time.Second,
		logger:    logger,
	}
}

// Next increments and returns the counter of the series
func (g *RedisSequenceGenerator) Next(ctx context.Context, name trade.SequenceName) (int64, error) {
	key := g.keyPrefix + string(name)

	exists, err := g.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("check sequence %s: %w", name, err)
	}
	if exists == 0 {
		if err := g.seed(ctx, name, key); err != nil {
			return 0, err
		}
	}

	n, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", name, err)
	}
	return n, nil
}

func (g *RedisSequenceGenerator) seed(ctx context.Context, name trade.SequenceName, key string) error {
	lock, err := g.locker.Obtain(ctx, key+":lock", g.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 100),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("could not obtain seed lock for sequence %s", name)
	} else if err != nil {
		return fmt.Errorf("obtain seed lock for sequence %s: %w", name, err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	floor, err := g.floor.Floor(ctx, name)
	if err != nil {
		return err
	}
	seeded, err := g.client.SetNX(ctx, key, floor, 0).Result()
	if err != nil {
		return fmt.Errorf("seed sequence %s: %w", name, err)
	}
	if seeded {
		g.logger.Info("sequence seeded", zap.String("sequence", string(name)), zap.Int64("floor", floor))
	}
	return nil
}

// Ensure RedisSequenceGenerator implements SequenceGenerator
var _ trade.SequenceGenerator = (*RedisSequenceGenerator)(nil)
