package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

type fieldAction int

const (
	keepField fieldAction = iota
	redactField
	hashField
	maskField
)

// fieldRules are matched in order against the lowercased key. The first
// rule with a matching fragment wins.
var fieldRules = []struct {
	action fieldAction
	frags  []string
}{
	{redactField, []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "auth_key"}},
	{hashField, []string{"user_id", "session_id", "client_ip"}},
	{maskField, []string{"email"}},
}

type redactor struct {
	enabled bool
	salt    string
}

// LOG_REDACTION_ENABLED=false turns scrubbing off for local debugging.
// LOG_HASH_SALT keys the identifier hashes.
var loadRedactor = sync.OnceValue(func() redactor {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		return redactor{}
	}
	return redactor{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
})

func scrub(kv []interface{}) []interface{} {
	r := loadRedactor()
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, r.value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func classify(key string) fieldAction {
	if key == "ip" {
		return hashField
	}
	for _, rule := range fieldRules {
		for _, frag := range rule.frags {
			if strings.Contains(key, frag) {
				return rule.action
			}
		}
	}
	return keepField
}

func (r redactor) value(key string, val interface{}) interface{} {
	switch classify(key) {
	case redactField:
		return redacted
	case hashField:
		return r.hash(val)
	case maskField:
		return maskEmail(stringify(val))
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

// hash keeps identifiers joinable across log lines without exposing them.
func (r redactor) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

// maskEmail keeps the first letter and the domain so a log line can still be
// matched to a subscriber report.
func maskEmail(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	at := strings.LastIndex(raw, "@")
	if at <= 0 {
		return redacted
	}
	return raw[:1] + "***" + raw[at:]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
