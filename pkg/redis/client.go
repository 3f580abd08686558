package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	keyNamespace      = "sf"
	idempotencyPrefix = "idempotency"
	jobsPrefix        = "jobs"
	delayedSuffix     = "delayed"
	processingSuffix  = "processing"
)

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	LPush(context.Context, string, ...any) *redis.IntCmd
	BLMove(ctx context.Context, source, destination, srcpos, destpos string, timeout time.Duration) *redis.StringCmd
	LMove(ctx context.Context, source, destination, srcpos, destpos string) *redis.StringCmd
	LRem(ctx context.Context, key string, count int64, value any) *redis.IntCmd
	ZAdd(context.Context, string, ...redis.Z) *redis.IntCmd
	ZRangeByScore(context.Context, string, *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(context.Context, string, ...any) *redis.IntCmd
}

// Client wraps the redis connection helpers needed by the API and worker.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// IdempotencyStore exposes the operations used by the idempotency middleware.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// JobStore exposes the list/sorted-set operations backing the job queue.
// A popped job sits on the processing list until AckJob removes it.
type JobStore interface {
	PushJob(ctx context.Context, queue, payload string) error
	PopJob(ctx context.Context, queue string, timeout time.Duration) (string, bool, error)
	AckJob(ctx context.Context, queue, payload string) error
	RequeueInFlight(ctx context.Context, queue string) (int, error)
	ScheduleJob(ctx context.Context, queue, payload string, at time.Time) error
	PromoteDueJobs(ctx context.Context, queue string, now time.Time) (int, error)
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Set stores a value with an optional TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns the string stored at key, or redis.Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", errNotInitialized
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the provided keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, keys...).Err()
}

// PushJob appends a serialized job to the ready list.
func (c *Client) PushJob(ctx context.Context, queue, payload string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.LPush(ctx, c.JobQueueKey(queue), payload).Err()
}

// PopJob blocks up to timeout for the next ready job and moves it onto the
// processing list. ok is false on timeout.
func (c *Client) PopJob(ctx context.Context, queue string, timeout time.Duration) (string, bool, error) {
	if c.store == nil {
		return "", false, errNotInitialized
	}
	payload, err := c.store.BLMove(ctx, c.JobQueueKey(queue), c.ProcessingJobsKey(queue), "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// AckJob drops a handled job from the processing list.
func (c *Client) AckJob(ctx context.Context, queue, payload string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.LRem(ctx, c.ProcessingJobsKey(queue), 1, payload).Err()
}

// RequeueInFlight moves every job left on the processing list back to the
// head of the ready list, oldest first. Run it before a worker starts popping.
func (c *Client) RequeueInFlight(ctx context.Context, queue string) (int, error) {
	if c.store == nil {
		return 0, errNotInitialized
	}
	moved := 0
	for {
		err := c.store.LMove(ctx, c.ProcessingJobsKey(queue), c.JobQueueKey(queue), "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}

// ScheduleJob parks a job in the delayed set until at.
func (c *Client) ScheduleJob(ctx context.Context, queue, payload string, at time.Time) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.ZAdd(ctx, c.DelayedJobsKey(queue), redis.Z{Score: float64(at.UnixMilli()), Member: payload}).Err()
}

// PromoteDueJobs moves delayed jobs whose time has come onto the ready list.
// A job is only pushed by the caller whose ZREM removed it.
func (c *Client) PromoteDueJobs(ctx context.Context, queue string, now time.Time) (int, error) {
	if c.store == nil {
		return 0, errNotInitialized
	}
	delayedKey := c.DelayedJobsKey(queue)
	due, err := c.store.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, payload := range due {
		removed, err := c.store.ZRem(ctx, delayedKey, payload).Result()
		if err != nil {
			return promoted, err
		}
		if removed == 0 {
			continue
		}
		if err := c.store.LPush(ctx, c.JobQueueKey(queue), payload).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.buildKey(idempotencyPrefix, scope, id)
}

func (c *Client) JobQueueKey(queue string) string {
	return c.buildKey(jobsPrefix, queue)
}

func (c *Client) DelayedJobsKey(queue string) string {
	return c.buildKey(jobsPrefix, queue, delayedSuffix)
}

func (c *Client) ProcessingJobsKey(queue string) string {
	return c.buildKey(jobsPrefix, queue, processingSuffix)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
