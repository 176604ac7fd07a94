package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/objectstore"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return log
}

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", &objectstore.ConfigError{Code: objectstore.ConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{"missing emulator host", &objectstore.ConfigError{Code: objectstore.ConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid url", &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidURL}, StorageProviderBootstrapErrorInvalidURL},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(objectstore.Config{Mode: objectstore.ModeS3}, tc.err)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not preserved")
			}
		})
	}
}

func TestResolveObjectStoreInvalidMode(t *testing.T) {
	_, err := resolveObjectStore(context.Background(), testLogger(t), config.StorageConfig{Mode: "ftp"})
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, code, err)
	}
}

func TestResolveObjectStoreMissingEmulatorHost(t *testing.T) {
	_, err := resolveObjectStore(context.Background(), testLogger(t), config.StorageConfig{Mode: "gcs_emulator"})
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorMissingEmulatorHost, code, err)
	}
}

func TestResolveObjectStorePassesConfig(t *testing.T) {
	orig := newObjectStore
	t.Cleanup(func() { newObjectStore = orig })

	var captured objectstore.Config
	expected := objectstore.NewMemory("http://localhost/patent-uploads")
	newObjectStore = func(_ context.Context, _ *logger.Logger, cfg objectstore.Config) (objectstore.Gateway, error) {
		captured = cfg
		return expected, nil
	}

	got, err := resolveObjectStore(context.Background(), testLogger(t), config.StorageConfig{
		Mode:      " s3 ",
		Bucket:    "patent-uploads",
		Region:    "eu-central-1",
		CDNDomain: "cdn.futureofgaming.com",
	})
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if got != expected {
		t.Fatalf("expected stub gateway")
	}
	if captured.Mode != objectstore.ModeS3 || captured.Bucket != "patent-uploads" || captured.CDNDomain != "cdn.futureofgaming.com" {
		t.Fatalf("captured: %+v", captured)
	}
}

func TestResolveObjectStoreMemory(t *testing.T) {
	store, err := resolveObjectStore(context.Background(), testLogger(t), config.StorageConfig{Mode: "memory", Bucket: "patent-uploads"})
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if _, ok := store.(*objectstore.Memory); !ok {
		t.Fatalf("want *objectstore.Memory got %T", store)
	}
}
