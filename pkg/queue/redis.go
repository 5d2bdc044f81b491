package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/reportnotify/pkg/config"
	"github.com/kart-io/reportnotify/pkg/logger"
)

// RedisSource pops jobs from a Redis list. Producers LPUSH, the source BRPOPs,
// so jobs are consumed in FIFO order.
type RedisSource struct {
	client     redis.UniversalClient
	key        string
	popTimeout time.Duration
	logger     logger.Logger
}

// NewRedisSource connects to Redis and verifies the connection.
func NewRedisSource(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*RedisSource, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		// BRPOP blocks for up to PopTimeout; reads must outlast it
		ReadTimeout: cfg.PopTimeout + 2*time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSourceWithClient(client, cfg.Queue, cfg.PopTimeout, log), nil
}

// NewRedisSourceWithClient wraps an existing client.
func NewRedisSourceWithClient(client redis.UniversalClient, key string, popTimeout time.Duration, log logger.Logger) *RedisSource {
	if log == nil {
		log = logger.Discard
	}
	return &RedisSource{
		client:     client,
		key:        key,
		popTimeout: popTimeout,
		logger:     log,
	}
}

// Push enqueues job.
func (s *RedisSource) Push(ctx context.Context, job *Job) error {
	data, err := job.Encode()
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("push job %s: %w", job.ID, err)
	}
	s.logger.Debug("Delivery job enqueued", "job_id", job.ID, "queue", s.key)
	return nil
}

// Pop waits up to the pop timeout for a job. It returns (nil, nil) when the
// wait elapsed without a job. A malformed entry is consumed and reported as
// ErrMalformedJob.
func (s *RedisSource) Pop(ctx context.Context) (*Job, error) {
	res, err := s.client.BRPop(ctx, s.popTimeout, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop from %s: %w", s.key, err)
	}

	// BRPOP replies with [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("%w: unexpected BRPOP reply of length %d", ErrMalformedJob, len(res))
	}
	return DecodeJob([]byte(res[1]))
}

// Len returns the number of queued jobs.
func (s *RedisSource) Len(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.key).Result()
}

// Close closes the Redis client.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
