package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeS3          Mode = "s3"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeMemory      Mode = "memory"
)

type Config struct {
	Mode          Mode
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	CDNDomain     string
	EmulatorHost  string
	// CredentialsJSON is a GCP service account (inline JSON or a file path).
	CredentialsJSON string
}

const (
	DefaultBucket = "patent-uploads"
	DefaultRegion = "eu-central-1"
)

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeS3, ModeGCS, ModeGCSEmulator, ModeMemory:
		return true
	default:
		return false
	}
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidURL          ConfigErrorCode = "invalid_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Field string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid storage mode %q (allowed: %q, %q, %q, %q)", e.Mode, ModeS3, ModeGCS, ModeGCSEmulator, ModeMemory)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("storage mode %q requires a bucket name", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("storage mode %q requires an emulator host", ModeGCSEmulator)
	case ConfigErrorInvalidURL:
		return fmt.Sprintf("invalid %s=%q; expected absolute URL like http://localhost:4443", e.Field, e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Normalize applies defaults. An empty mode falls back to the GCS emulator
// when an emulator host is present and to S3 otherwise.
func (c Config) Normalize() Config {
	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		if strings.TrimSpace(c.EmulatorHost) != "" {
			c.Mode = ModeGCSEmulator
		} else {
			c.Mode = ModeS3
		}
	}
	c.Bucket = strings.TrimSpace(c.Bucket)
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	c.Region = strings.TrimSpace(c.Region)
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.EmulatorHost = strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
	c.CDNDomain = strings.Trim(strings.TrimSpace(c.CDNDomain), "/")
	return c
}

func (c Config) Validate() error {
	if !IsSupportedMode(c.Mode) {
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(c.Mode)}
	}
	if c.Bucket == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(c.Mode)}
	}
	if c.Mode == ModeGCSEmulator && c.EmulatorHost == "" {
		return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(c.Mode)}
	}
	for _, f := range []struct{ name, raw string }{
		{"storage.endpoint", c.Endpoint},
		{"storage.public_base_url", c.PublicBaseURL},
		{"storage.emulator_host", c.EmulatorHost},
	} {
		if f.raw == "" {
			continue
		}
		if err := validateAbsoluteURL(f.raw); err != nil {
			return &ConfigError{Code: ConfigErrorInvalidURL, Mode: string(c.Mode), Field: f.name, Value: f.raw, Cause: err}
		}
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("missing scheme or host")
	}
	return nil
}
