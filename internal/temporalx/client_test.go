package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
)

func TestFromConfigDefaults(t *testing.T) {
	got := FromConfig(config.TemporalConfig{Address: "  localhost:7233 "})
	if got.Address != "localhost:7233" || got.Namespace != "default" || got.TaskQueue != "futureofgaming" {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.PublishCron != "0 14 * * *" {
		t.Fatalf("cron: %q", got.PublishCron)
	}
	if got.hasTLS() {
		t.Fatalf("tls should be off")
	}
}

func TestNewClientWithoutAddress(t *testing.T) {
	c, err := NewClient(context.Background(), nil, Config{})
	if err != nil || c != nil {
		t.Fatalf("expected disabled client, got=%v err=%v", c, err)
	}
}

func TestRetryRPC(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return status.Error(codes.Unavailable, "starting")
		}
		return nil
	}, isRetryableRPC)
	if err != nil || calls != 3 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}

	calls = 0
	denied := status.Error(codes.PermissionDenied, "nope")
	err = Retry(context.Background(), nil, "test", func(context.Context) error {
		calls++
		return denied
	}, isRetryableRPC)
	if !errors.Is(err, denied) || calls != 1 {
		t.Fatalf("non-retryable: calls=%d err=%v", calls, err)
	}
}

func TestRetryRPCStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := Retry(ctx, nil, "test", func(context.Context) error {
		return status.Error(codes.Unavailable, "down")
	}, isRetryableRPC)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got=%v", err)
	}
}

func TestLoadTLSConfigNeedsPair(t *testing.T) {
	if _, err := loadTLSConfig(Config{ClientCAPath: "/tmp/ca.pem"}); err == nil {
		t.Fatalf("expected error without cert and key")
	}
}
