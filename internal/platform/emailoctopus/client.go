// Package emailoctopus is a minimal client for the EmailOctopus list API.
package emailoctopus

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://emailoctopus.com/api/1.6"

const codeMemberExists = "MEMBER_EXISTS_WITH_EMAIL_ADDRESS"

type Client interface {
	GetStatus(ctx context.Context, email string) (newsletter.ContactStatus, error)
	Subscribe(ctx context.Context, c newsletter.Contact) error
}

type Config struct {
	APIKey     string
	ListID     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing EMAILOCTOPUS_API_KEY")
	}
	if strings.TrimSpace(cfg.ListID) == "" {
		return nil, fmt.Errorf("missing EMAILOCTOPUS_FOG_LIST")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "EmailOctopusClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type contactFields struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
}

type createContactRequest struct {
	APIKey       string        `json:"api_key"`
	EmailAddress string        `json:"email_address"`
	Fields       contactFields `json:"fields"`
	Tags         []string      `json:"tags"`
	Status       string        `json:"status"`
}

type contactResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ContactID is the provider's id for an address: md5 of the lowercased email.
func ContactID(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// GetStatus returns StatusAbsent when the list has no such contact.
func (c *client) GetStatus(ctx context.Context, email string) (newsletter.ContactStatus, error) {
	path := fmt.Sprintf("/lists/%s/contacts/%s?api_key=%s",
		url.PathEscape(c.cfg.ListID), ContactID(email), url.QueryEscape(c.cfg.APIKey))

	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
			return newsletter.StatusAbsent, nil
		}
		return newsletter.StatusAbsent, err
	}
	var out contactResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return newsletter.StatusAbsent, fmt.Errorf("emailoctopus: decode contact: %w", err)
	}
	return newsletter.ContactStatus(strings.ToUpper(strings.TrimSpace(out.Status))), nil
}

// Subscribe adds the contact as SUBSCRIBED. A contact that is already on the
// list yields an error matching newsletter.ErrAlreadySubscribed.
func (c *client) Subscribe(ctx context.Context, in newsletter.Contact) error {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = newsletter.SourceSubscribeForm
	}
	body := createContactRequest{
		APIKey:       c.cfg.APIKey,
		EmailAddress: in.Email,
		Fields:       contactFields{FirstName: in.FirstName, LastName: in.LastName},
		Tags:         []string{source},
		Status:       string(newsletter.StatusSubscribed),
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/lists/%s/contacts", url.PathEscape(c.cfg.ListID)), body)
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.memberExists() {
			return fmt.Errorf("%w: %s", newsletter.ErrAlreadySubscribed, he.Error())
		}
		return err
	}
	return nil
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "emailoctopus: <nil error>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "Unknown error"
	}
	if e.Code != "" {
		return fmt.Sprintf("EmailOctopus API error (%d %s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("EmailOctopus API error (%d): %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (e *HTTPError) memberExists() bool {
	if e == nil {
		return false
	}
	return e.Code == codeMemberExists ||
		strings.Contains(strings.ToLower(e.Message), "already subscribed")
}

func (c *client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt >= c.cfg.MaxRetries {
			return nil, err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("EmailOctopus request retrying",
			"method", method,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.SleepContext(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var rdr io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
		rdr = &buf
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.cfg.BaseURL+path, rdr)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: httpx.Truncate(string(raw), 2000)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			he.Code = eb.Error.Code
			he.Message = eb.Error.Message
		}
		return resp, nil, he
	}
	return resp, raw, nil
}
