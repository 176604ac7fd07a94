// Package config loads process configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"strings"
	"time"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	DB         DBConfig         `koanf:"db"`
	Storage    StorageConfig    `koanf:"storage"`
	Redis      RedisConfig      `koanf:"redis"`
	Newsletter NewsletterConfig `koanf:"newsletter"`
	CleanTalk  CleanTalkConfig  `koanf:"cleantalk"`
	Email      EmailConfig      `koanf:"email"`
	Features   FeatureConfig    `koanf:"features"`
	Auth       AuthConfig       `koanf:"auth"`
	Temporal   TemporalConfig   `koanf:"temporal"`
	NATS       NATSConfig       `koanf:"nats"`
	Events     EventsConfig     `koanf:"events"`
	OTel       OTelConfig       `koanf:"otel"`
	Site       SiteConfig       `koanf:"site"`
	Scorecard  ScorecardConfig  `koanf:"scorecard"`
	CORS       CORSConfig       `koanf:"cors"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
}

type AppConfig struct {
	Env             string        `koanf:"env"`
	Port            string        `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Mode             string `koanf:"mode"`
	Level            string `koanf:"level"`
	RedactionEnabled bool   `koanf:"redaction_enabled"`
	HashSalt         string `koanf:"hash_salt"`
}

type DBConfig struct {
	DSN            string        `koanf:"dsn"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Name           string        `koanf:"name"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	SSLMode        string        `koanf:"sslmode"`
	MaxConns       int           `koanf:"max_conns"`
	MaxIdleTime    time.Duration `koanf:"max_idle_time"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

type StorageConfig struct {
	Mode            string `koanf:"mode"`
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	PublicBaseURL   string `koanf:"public_base_url"`
	CDNDomain       string `koanf:"cdn_domain"`
	EmulatorHost    string `koanf:"emulator_host"`
	CredentialsJSON string `koanf:"credentials_json"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type NewsletterConfig struct {
	APIKey  string        `koanf:"api_key"`
	ListID  string        `koanf:"list_id"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type CleanTalkConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type EmailConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	From    string `koanf:"from"`
	Admin   string `koanf:"admin"`
	// CalendarURL is linked from the publish summary e-mail.
	CalendarURL string        `koanf:"calendar_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

type FeatureConfig struct {
	AutoSubscribeOnLogin bool `koanf:"auto_subscribe_on_login"`
}

type AuthConfig struct {
	SessionSecret string `koanf:"session_secret"`
	CookieName    string `koanf:"cookie_name"`
	UpstreamURL   string `koanf:"upstream_url"`
	AdminToken    string `koanf:"admin_token"`
}

type TemporalConfig struct {
	Address   string `koanf:"address"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`

	ClientCertPath string `koanf:"client_cert_path"`
	ClientKeyPath  string `koanf:"client_key_path"`
	ClientCAPath   string `koanf:"client_ca_path"`

	AutoRegisterNamespace bool          `koanf:"auto_register_namespace"`
	DialMaxWait           time.Duration `koanf:"dial_max_wait"`
	WorkerConcurrency     int           `koanf:"worker_concurrency"`
	PublishCron           string        `koanf:"publish_cron"`
}

type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
	Queue   string `koanf:"queue"`
}

type EventsConfig struct {
	// Publisher is one of temporal, nats or noop.
	Publisher string        `koanf:"publisher"`
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`
}

type OTelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	SampleRatio float64 `koanf:"sample_ratio"`
	Insecure    bool    `koanf:"insecure"`
}

type SiteConfig struct {
	URL  string `koanf:"url"`
	Name string `koanf:"name"`
}

type ScorecardConfig struct {
	PNGEnabled bool `koanf:"png_enabled"`
	WrapWidth  int  `koanf:"wrap_width"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	NewsletterLimit  int           `koanf:"newsletter_limit"`
	NewsletterWindow time.Duration `koanf:"newsletter_window"`
	AuthLimit        int           `koanf:"auth_limit"`
	AuthWindow       time.Duration `koanf:"auth_window"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		App: AppConfig{Env: "development", Port: "3000", ShutdownTimeout: 15 * time.Second},
		Log: LogConfig{Mode: "development", Level: "info", RedactionEnabled: true},
		DB: DBConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "futureofgaming",
			User:           "postgres",
			SSLMode:        "disable",
			MaxConns:       20,
			MaxIdleTime:    30 * time.Second,
			ConnectTimeout: 2 * time.Second,
		},
		Storage:    StorageConfig{Mode: "s3", Bucket: "patent-uploads", Region: "eu-central-1"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Newsletter: NewsletterConfig{BaseURL: "https://emailoctopus.com/api/1.6", Timeout: 5 * time.Second},
		CleanTalk:  CleanTalkConfig{BaseURL: "https://api.cleantalk.org", Timeout: 3 * time.Second},
		Email: EmailConfig{
			BaseURL:     "https://api.resend.com",
			From:        "noreply@auth.futureofgaming.com",
			Admin:       "contact@futureofgaming.com",
			CalendarURL: "http://localhost:5001/calendar",
			Timeout:     10 * time.Second,
		},
		Features: FeatureConfig{AutoSubscribeOnLogin: true},
		Auth:     AuthConfig{CookieName: "fog_session", UpstreamURL: "http://localhost:3001"},
		Temporal: TemporalConfig{
			Address:           "localhost:7233",
			Namespace:         "default",
			TaskQueue:         "futureofgaming",
			DialMaxWait:       10 * time.Second,
			WorkerConcurrency: 4,
			PublishCron:       "0 14 * * *",
		},
		NATS:      NATSConfig{URL: "nats://127.0.0.1:4222", Subject: "user.logged_in", Queue: "newsletter-reconciler"},
		Events:    EventsConfig{Publisher: "temporal", DedupeTTL: 8 * time.Hour},
		OTel:      OTelConfig{ServiceName: "futureofgaming-backend", Exporter: "otlp", SampleRatio: 1},
		Site:      SiteConfig{URL: "https://futureofgaming.com", Name: "Future of Gaming"},
		Scorecard: ScorecardConfig{PNGEnabled: true, WrapWidth: 50},
		CORS:      CORSConfig{AllowedOrigins: []string{"https://futureofgaming.com", "http://localhost:3000"}},
		RateLimit: RateLimitConfig{
			NewsletterLimit:  3,
			NewsletterWindow: 24 * time.Hour,
			AuthLimit:        5,
			AuthWindow:       15 * time.Minute,
		},
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), "production")
}
