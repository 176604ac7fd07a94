// Package cleantalk checks e-mail addresses against the CleanTalk spam_check
// API. Every failure is reported as a clean verdict so an outage never blocks
// a signup.
package cleantalk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.cleantalk.org"

const (
	MessageClean       = "Clean"
	MessageDisabled    = "Spam check disabled"
	MessageCheckFailed = "Check failed, allowing by default"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

func New(log *logger.Logger, cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{
		log:        log.With("client", "CleanTalkClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

// Record is the per-address entry of a spam_check response.
type Record struct {
	Appears         int
	SpamRate        float64
	Frequency       int
	DisposableEmail int
	Updated         *time.Time
	// UpdatedInvalid marks an "updated" value that was sent but could not be
	// parsed. The record's age is then unknown rather than old.
	UpdatedInvalid bool
}

// CheckSpam never returns an error; the signature matches the consumer
// interface so callers can treat all checkers alike.
func (c *Client) CheckSpam(ctx context.Context, email string) (newsletter.SpamVerdict, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.log.Warn("CleanTalk API key not configured, skipping spam check")
		return newsletter.SpamVerdict{Message: MessageDisabled}, nil
	}
	rec, found, err := c.lookup(ctx, email)
	if err != nil {
		c.log.Error("CleanTalk check failed", "email", email, "error", err)
		return newsletter.SpamVerdict{Message: MessageCheckFailed}, nil
	}
	if !found {
		return newsletter.SpamVerdict{Message: MessageClean}, nil
	}
	v := newsletter.SpamVerdict{Score: rec.SpamRate, Message: MessageClean}
	if IsSpam(rec, c.now()) {
		v.IsSpam = true
		v.Message = fmt.Sprintf("Email flagged: appears=%d, spam_rate=%s, frequency=%d",
			rec.Appears, strconv.FormatFloat(rec.SpamRate, 'f', -1, 64), rec.Frequency)
	}
	return v, nil
}

// IsSpam applies the provider's documented blocking rules to one record.
// A missing update date counts as 999 days old; an unparseable one disables
// the age-gated rules.
func IsSpam(r Record, now time.Time) bool {
	switch {
	case r.Appears == 1:
		return true
	case r.DisposableEmail == 1:
		return true
	case r.SpamRate > 0.7:
		return true
	}
	if r.UpdatedInvalid {
		return false
	}
	days := 999
	if r.Updated != nil {
		days = int(now.Sub(*r.Updated).Hours() / 24)
	}
	switch {
	case r.SpamRate > 0.5 && days > 30:
		return true
	case r.SpamRate == 1 && r.Frequency >= 5 && days < 30:
		return true
	case r.Frequency >= 200 && days < 90:
		return true
	}
	return false
}

type response struct {
	Data map[string]map[string]any `json:"data"`
}

func (c *Client) lookup(ctx context.Context, email string) (Record, bool, error) {
	q := url.Values{}
	q.Set("method_name", "spam_check")
	q.Set("auth_key", c.cfg.APIKey)
	q.Set("email", email)

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, c.cfg.BaseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return Record{}, false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, false, err
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return Record{}, false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Record{}, false, fmt.Errorf("cleantalk http %d: %s", resp.StatusCode, httpx.Truncate(string(raw), 500))
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Record{}, false, fmt.Errorf("cleantalk: decode: %w", err)
	}
	if out.Data == nil {
		return Record{}, false, fmt.Errorf("cleantalk: invalid API response format")
	}
	fields, ok := out.Data[email]
	if !ok || len(fields) == 0 {
		return Record{}, false, nil
	}
	return recordFrom(fields), true, nil
}

func recordFrom(m map[string]any) Record {
	r := Record{
		Appears:         int(number(m["appears"])),
		SpamRate:        number(m["spam_rate"]),
		Frequency:       int(number(m["frequency"])),
		DisposableEmail: int(number(m["disposable_email"])),
	}
	if s, ok := m["updated"].(string); ok && strings.TrimSpace(s) != "" {
		r.Updated = parseUpdated(s)
		r.UpdatedInvalid = r.Updated == nil
	}
	return r
}

// number reads values the API sends either as JSON numbers or numeric strings.
func number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func parseUpdated(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
