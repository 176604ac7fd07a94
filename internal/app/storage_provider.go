package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/objectstore"
)

var newObjectStore = objectstore.New

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidURL          StorageProviderBootstrapErrorCode = "invalid_url"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code   StorageProviderBootstrapErrorCode
	Mode   string
	Bucket string
	Cause  error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q bucket=%q): %v",
		e.Code,
		e.Mode,
		e.Bucket,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func objectStoreConfig(cfg config.StorageConfig) objectstore.Config {
	return objectstore.Config{
		Mode:            objectstore.Mode(strings.TrimSpace(cfg.Mode)),
		Bucket:          strings.TrimSpace(cfg.Bucket),
		Region:          strings.TrimSpace(cfg.Region),
		Endpoint:        strings.TrimSpace(cfg.Endpoint),
		PublicBaseURL:   strings.TrimSpace(cfg.PublicBaseURL),
		CDNDomain:       strings.TrimSpace(cfg.CDNDomain),
		EmulatorHost:    strings.TrimSpace(cfg.EmulatorHost),
		CredentialsJSON: cfg.CredentialsJSON,
	}
}

func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg config.StorageConfig) (objectstore.Gateway, error) {
	storeCfg := objectStoreConfig(cfg)
	log.Info(
		"Selecting object storage provider",
		"mode", storeCfg.Mode,
		"bucket", storeCfg.Bucket,
		"region", storeCfg.Region,
		"emulator_host", storeCfg.EmulatorHost,
	)

	store, err := newObjectStore(ctx, log, storeCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storeCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storeCfg.Mode,
			"bucket", storeCfg.Bucket,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(storeCfg objectstore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *objectstore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case objectstore.ConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case objectstore.ConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		case objectstore.ConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case objectstore.ConfigErrorInvalidURL:
			code = StorageProviderBootstrapErrorInvalidURL
		}
	}
	return &StorageProviderBootstrapError{
		Code:   code,
		Mode:   string(storeCfg.Mode),
		Bucket: storeCfg.Bucket,
		Cause:  err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
