package config

import "fmt"

// ValidationError reports a single invalid setting.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (c *Config) Validate() error {
	if c.App.Port == "" {
		return &ValidationError{Key: "app.port", Reason: "must not be empty"}
	}
	if c.DB.MaxConns <= 0 {
		return &ValidationError{Key: "db.max_conns", Reason: "must be positive"}
	}
	switch c.Events.Publisher {
	case "temporal", "nats", "noop":
	default:
		return &ValidationError{Key: "events.publisher", Reason: fmt.Sprintf("unknown publisher %q", c.Events.Publisher)}
	}
	if c.IsProduction() && c.Auth.SessionSecret == "" {
		return &ValidationError{Key: "auth.session_secret", Reason: "required in production"}
	}
	return nil
}
