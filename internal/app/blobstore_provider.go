package app

import (
	"context"
	"fmt"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/config"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

var newRedisBlobStore = blobstore.NewRedis

type BlobstoreBootstrapErrorCode string

const (
	BlobstoreBootstrapErrorInvalidDriver BlobstoreBootstrapErrorCode = "invalid_driver"
	BlobstoreBootstrapErrorConnectFailed BlobstoreBootstrapErrorCode = "connect_failed"
)

type BlobstoreBootstrapError struct {
	Code   BlobstoreBootstrapErrorCode
	Driver string
	Addr   string
	Cause  error
}

func (e *BlobstoreBootstrapError) Error() string {
	if e == nil {
		return "blob store bootstrap failed"
	}
	return fmt.Sprintf("blob store bootstrap failed (code=%s driver=%q addr=%q): %v", e.Code, e.Driver, e.Addr, e.Cause)
}

func (e *BlobstoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg config.BlobstoreConfig, metrics *observability.Metrics, out *Clients) error {
	switch cfg.Driver {
	case config.DriverMemory, "":
		mem := blobstore.NewMemory()
		mem.OnChange = metrics.SetImageHandlesLive
		out.Blobs = mem
		log.Info("Blob store selected", "driver", config.DriverMemory)
		return nil

	case config.DriverRedis:
		rs, err := newRedisBlobStore(ctx, log, blobstore.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TTL.Duration,
		})
		if err != nil {
			berr := &BlobstoreBootstrapError{
				Code:   BlobstoreBootstrapErrorConnectFailed,
				Driver: cfg.Driver,
				Addr:   cfg.Redis.Addr,
				Cause:  err,
			}
			log.Error("Blob store bootstrap failed", "driver", cfg.Driver, "addr", cfg.Redis.Addr, "error_code", berr.Code, "error", err)
			return berr
		}
		out.Blobs = rs
		out.Ready = rs.Ping
		out.Close = func(context.Context) error { return rs.Close() }
		log.Info("Blob store selected", "driver", config.DriverRedis, "addr", cfg.Redis.Addr)
		return nil

	default:
		return &BlobstoreBootstrapError{
			Code:   BlobstoreBootstrapErrorInvalidDriver,
			Driver: cfg.Driver,
			Cause:  fmt.Errorf("unsupported blob store driver %q", cfg.Driver),
		}
	}
}
