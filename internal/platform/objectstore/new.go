package objectstore

import (
	"context"
	"fmt"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// New builds the gateway for cfg.Mode.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Gateway, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	storeLog := log.With("service", "ObjectStore")

	var (
		gw  Gateway
		err error
	)
	switch cfg.Mode {
	case ModeS3:
		gw, err = NewS3(ctx, cfg)
	case ModeGCS, ModeGCSEmulator:
		gw, err = NewGCS(ctx, cfg)
	case ModeMemory:
		gw = NewMemory(publicBase(cfg))
	}
	if err != nil {
		return nil, err
	}
	storeLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"region", cfg.Region,
		"endpoint", cfg.Endpoint,
		"public_base_url", cfg.PublicBaseURL,
	)
	return gw, nil
}

func publicBase(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	return "http://localhost/" + cfg.Bucket
}
