package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
)

// s3API is the subset of *s3.Client the gateway calls.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Gateway struct {
	client s3API
	cfg    Config
}

const s3OpTimeout = 30 * time.Second

// NewS3 loads credentials from the default AWS chain. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3(ctx context.Context, cfg Config) (Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3Gateway(s3.NewFromConfig(awsCfg, opts...), cfg), nil
}

func newS3Gateway(client s3API, cfg Config) *s3Gateway {
	return &s3Gateway{client: client, cfg: cfg}
}

func (g *s3Gateway) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s3OpTimeout)
	defer cancel()
	_, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.cfg.Bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3 head object: %w", err)
}

func (g *s3Gateway) Write(ctx context.Context, key string, content []byte, contentType, cacheControl string) error {
	ctx, cancel := context.WithTimeout(ctx, s3OpTimeout)
	defer cancel()
	in := &s3.PutObjectInput{
		Bucket: aws.String(g.cfg.Bucket),
		Key:    aws.String(cleanKey(key)),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if cacheControl != "" {
		in.CacheControl = aws.String(cacheControl)
	}
	if _, err := g.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

func (g *s3Gateway) Read(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s3OpTimeout)
	defer cancel()
	out, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.cfg.Bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body: %w", err)
	}
	return body, nil
}

// PublicURL prefers the configured public base, then the custom endpoint,
// then the virtual-hosted AWS URL.
func (g *s3Gateway) PublicURL(key string) string {
	key = cleanKey(key)
	switch {
	case g.cfg.CDNDomain != "":
		return fmt.Sprintf("https://%s/%s", g.cfg.CDNDomain, key)
	case g.cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s", g.cfg.PublicBaseURL, key)
	case g.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", g.cfg.Endpoint, g.cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", g.cfg.Bucket, g.cfg.Region, key)
	}
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
