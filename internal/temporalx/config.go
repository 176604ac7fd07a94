package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	DialMaxWait           time.Duration
	WorkerConcurrency     int
	PublishCron           string
}

func FromConfig(c config.TemporalConfig) Config {
	return Config{
		Address:   strings.TrimSpace(c.Address),
		Namespace: stringsOr(strings.TrimSpace(c.Namespace), "default"),
		TaskQueue: stringsOr(strings.TrimSpace(c.TaskQueue), "futureofgaming"),

		ClientCertPath: strings.TrimSpace(c.ClientCertPath),
		ClientKeyPath:  strings.TrimSpace(c.ClientKeyPath),
		ClientCAPath:   strings.TrimSpace(c.ClientCAPath),

		AutoRegisterNamespace: c.AutoRegisterNamespace,
		DialMaxWait:           c.DialMaxWait,
		WorkerConcurrency:     c.WorkerConcurrency,
		PublishCron:           stringsOr(strings.TrimSpace(c.PublishCron), "0 14 * * *"),
	}
}

func (c Config) hasTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
