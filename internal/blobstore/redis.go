package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

const (
	fieldData        = "data"
	fieldContentType = "content_type"
)

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long a handle can outlive its view if a release is lost.
	TTL time.Duration
}

type Redis struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(ctx context.Context, log *logger.Logger, opts RedisOptions) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisWithClient(log, rdb, opts), nil
}

func NewRedisWithClient(log *logger.Logger, rdb goredis.UniversalClient, opts RedisOptions) *Redis {
	prefix := strings.TrimSpace(opts.KeyPrefix)
	if prefix == "" {
		prefix = "artsfront:blob:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{
		log:    log.With("component", "RedisBlobStore"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *Redis) key(h domain.ImageHandle) string { return r.prefix + string(h) }

func (r *Redis) Put(ctx context.Context, b Blob) (domain.ImageHandle, error) {
	h := newHandle()
	key := r.key(h)
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, fieldData, b.Data, fieldContentType, b.ContentType)
		p.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis put: %w", err)
	}
	return h, nil
}

func (r *Redis) Get(ctx context.Context, h domain.ImageHandle) (Blob, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key(h)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Blob{}, ErrNotFound
		}
		return Blob{}, fmt.Errorf("redis get: %w", err)
	}
	data, ok := vals[fieldData]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return Blob{Data: []byte(data), ContentType: vals[fieldContentType]}, nil
}

func (r *Redis) Release(ctx context.Context, h domain.ImageHandle) error {
	if h.IsZero() {
		return nil
	}
	if err := r.rdb.Del(ctx, r.key(h)).Err(); err != nil {
		r.log.Warn("redis release failed", "handle", string(h), "error", err)
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
