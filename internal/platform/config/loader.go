package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// PathEnv names the optional YAML config file.
const PathEnv = "FOG_CONFIG"

const nestedPrefix = "FOG_"

// envKeys maps the deployment's historical variable names onto config keys.
var envKeys = map[string]string{
	"APP_ENV":                             "app.env",
	"PORT":                                "app.port",
	"LOG_MODE":                            "log.mode",
	"LOG_LEVEL":                           "log.level",
	"LOG_REDACTION_ENABLED":               "log.redaction_enabled",
	"LOG_HASH_SALT":                       "log.hash_salt",
	"DATABASE_URL":                        "db.dsn",
	"DB_HOST":                             "db.host",
	"DB_PORT":                             "db.port",
	"DB_NAME":                             "db.name",
	"DB_USER":                             "db.user",
	"DB_PASSWORD":                         "db.password",
	"DB_SSLMODE":                          "db.sslmode",
	"OBJECT_STORAGE_MODE":                 "storage.mode",
	"AWS_REGION":                          "storage.region",
	"AWS_S3_BUCKET":                       "storage.bucket",
	"AWS_S3_ENDPOINT":                     "storage.endpoint",
	"OBJECT_STORAGE_PUBLIC_BASE_URL":      "storage.public_base_url",
	"STORAGE_EMULATOR_HOST":               "storage.emulator_host",
	"GOOGLE_APPLICATION_CREDENTIALS_JSON": "storage.credentials_json",
	"REDIS_ADDR":                          "redis.addr",
	"REDIS_PASSWORD":                      "redis.password",
	"EMAILOCTOPUS_API_KEY":                "newsletter.api_key",
	"EMAILOCTOPUS_FOG_LIST":               "newsletter.list_id",
	"CLEANTALK_API_KEY":                   "cleantalk.api_key",
	"RESEND_API_KEY":                      "email.api_key",
	"EMAIL_FROM":                          "email.from",
	"ADMIN_EMAIL":                         "email.admin",
	"SESSION_JWT_SECRET":                  "auth.session_secret",
	"BETTER_AUTH_SECRET":                  "auth.session_secret",
	"AUTH_UPSTREAM_URL":                   "auth.upstream_url",
	"BETTER_AUTH_URL":                     "auth.upstream_url",
	"ADMIN_API_TOKEN":                     "auth.admin_token",
	"TEMPORAL_ADDRESS":                    "temporal.address",
	"TEMPORAL_NAMESPACE":                  "temporal.namespace",
	"TEMPORAL_TASK_QUEUE":                 "temporal.task_queue",
	"TEMPORAL_CLIENT_CERT_PATH":           "temporal.client_cert_path",
	"TEMPORAL_CLIENT_KEY_PATH":            "temporal.client_key_path",
	"TEMPORAL_CLIENT_CA_PATH":             "temporal.client_ca_path",
	"TEMPORAL_AUTO_REGISTER_NAMESPACE":    "temporal.auto_register_namespace",
	"NATS_URL":                            "nats.url",
	"EVENTS_PUBLISHER":                    "events.publisher",
	"OTEL_ENABLED":                        "otel.enabled",
	"OTEL_SERVICE_NAME":                   "otel.service_name",
	"OTEL_EXPORTER_OTLP_ENDPOINT":         "otel.endpoint",
	"OTEL_EXPORTER_OTLP_INSECURE":         "otel.insecure",
	"OTEL_EXPORTER":                       "otel.exporter",
	"OTEL_SAMPLER_RATIO":                  "otel.sample_ratio",
	"SITE_URL":                            "site.url",
}

// Load layers, lowest precedence first:
//  1. Default()
//  2. the YAML file named by FOG_CONFIG, if set
//  3. the environment
func Load() (*Config, error) {
	return LoadFile(os.Getenv(PathEnv))
}

func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", mapEnv), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mapEnv translates one environment variable into a config key. An empty key
// drops the variable.
func mapEnv(name, value string) (string, interface{}) {
	switch name {
	case "NODE_ENV":
		if os.Getenv("APP_ENV") != "" {
			return "", nil
		}
		return "app.env", value
	case "AUTO_SUBSCRIBE_ON_LOGIN":
		// Only the literal "false" turns the feature off.
		return "features.auto_subscribe_on_login", value != "false"
	case "CORS_ALLOWED_ORIGINS":
		return "cors.allowed_origins", splitList(value)
	}
	if key, ok := envKeys[name]; ok {
		if name == "BETTER_AUTH_SECRET" && os.Getenv("SESSION_JWT_SECRET") != "" {
			return "", nil
		}
		if name == "BETTER_AUTH_URL" && os.Getenv("AUTH_UPSTREAM_URL") != "" {
			return "", nil
		}
		return key, value
	}
	if strings.HasPrefix(name, nestedPrefix) && name != PathEnv {
		key := strings.ToLower(strings.TrimPrefix(name, nestedPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}
	return "", nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
