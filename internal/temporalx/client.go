package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

const (
	dialAttemptTimeout = 5 * time.Second
	namespaceTimeout   = 10 * time.Second
	retryFloor         = 250 * time.Millisecond
	retryCeiling       = 5 * time.Second

	// Publish runs are daily; a week of history covers a missed-run review.
	namespaceRetention = 7 * 24 * time.Hour
)

// NewClient connects to Temporal. A cold cluster is retried until
// cfg.DialMaxWait has passed or ctx is done. An empty address returns a nil
// client so the site can run without the publish schedule.
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (temporalsdkclient.Client, error) {
	if cfg.Address == "" {
		if log != nil {
			log.Warn("TEMPORAL_ADDRESS not set; publish schedule disabled")
		}
		return nil, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, max(cfg.DialMaxWait, dialAttemptTimeout))
	defer cancel()

	opts, err := clientOptions(log, cfg, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	var c temporalsdkclient.Client
	err = Retry(dialCtx, log, "dial", func(ctx context.Context) error {
		attemptCtx, done := context.WithTimeout(ctx, dialAttemptTimeout)
		defer done()
		var derr error
		c, derr = temporalsdkclient.DialContext(attemptCtx, opts)
		return derr
	}, func(error) bool { return cfg.DialMaxWait > 0 })
	if err != nil {
		return nil, fmt.Errorf("temporal dial %s/%s: %w", cfg.Address, cfg.Namespace, err)
	}

	if cfg.AutoRegisterNamespace {
		if err := EnsureNamespace(ctx, log, cfg); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// EnsureNamespace registers cfg.Namespace on self-hosted clusters where it
// does not exist yet. Hosted namespaces are provisioned out of band.
func EnsureNamespace(ctx context.Context, log *logger.Logger, cfg Config) error {
	if cfg.Address == "" || cfg.Namespace == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, namespaceTimeout)
	defer cancel()

	// No namespace header, otherwise the server rejects the Register call.
	opts, err := clientOptions(log, cfg, "")
	if err != nil {
		return err
	}
	ns, err := temporalsdkclient.NewNamespaceClient(opts)
	if err != nil {
		return fmt.Errorf("temporal namespace client: %w", err)
	}
	defer ns.Close()

	return Retry(ctx, log, "ensure namespace", func(ctx context.Context) error {
		_, err := ns.Describe(ctx, cfg.Namespace)
		var missing *serviceerror.NamespaceNotFound
		if !errors.As(err, &missing) {
			return err
		}
		err = ns.Register(ctx, &workflowservice.RegisterNamespaceRequest{
			Namespace:                        cfg.Namespace,
			Description:                      "Future of Gaming publish schedule",
			WorkflowExecutionRetentionPeriod: durationpb.New(namespaceRetention),
		})
		var exists *serviceerror.NamespaceAlreadyExists
		if errors.As(err, &exists) {
			return nil
		}
		if err == nil && log != nil {
			log.Info("Registered Temporal namespace", "namespace", cfg.Namespace)
		}
		return err
	}, isRetryableRPC)
}

func clientOptions(log *logger.Logger, cfg Config, namespace string) (temporalsdkclient.Options, error) {
	opts := temporalsdkclient.Options{HostPort: cfg.Address, Namespace: namespace}
	if log != nil {
		opts.Logger = log
	}
	if !cfg.hasTLS() {
		return opts, nil
	}
	tlsCfg, err := loadTLSConfig(cfg)
	if err != nil {
		return opts, err
	}
	opts.ConnectionOptions.TLS = tlsCfg
	return opts, nil
}

// Retry calls fn until it succeeds, ctx is done, or retryable rejects the
// error. Waits double from 250ms up to 5s.
func Retry(ctx context.Context, log *logger.Logger, op string, fn func(context.Context) error, retryable func(error) bool) error {
	wait := retryFloor
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 && log != nil {
				log.Info("Temporal reachable", "op", op, "attempts", attempt)
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		if log != nil {
			log.Warn("Temporal not ready; retrying", "op", op, "attempt", attempt, "error", err)
		}
		if serr := httpx.SleepContext(ctx, wait); serr != nil {
			return fmt.Errorf("%w (last error: %v)", serr, err)
		}
		wait = min(wait*2, retryCeiling)
	}
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return nil, errors.New("temporal tls: TEMPORAL_CLIENT_CERT_PATH and TEMPORAL_CLIENT_KEY_PATH must both be set")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: %w", err)
	}
	out := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if cfg.ClientCAPath == "" {
		return out, nil
	}
	pem, err := os.ReadFile(cfg.ClientCAPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: %w", err)
	}
	out.RootCAs = x509.NewCertPool()
	if !out.RootCAs.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("temporal tls: no certificates in %s", cfg.ClientCAPath)
	}
	return out, nil
}

func isRetryableRPC(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}
