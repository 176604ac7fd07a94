// Package nats carries domain events over core NATS subjects as JSON.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// Connect dials url with unlimited reconnects. Extra options are appended.
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	defaults := []nats.Option{
		nats.Name("futureofgaming-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, subject string, event any) error {
	if p == nil || p.conn == nil {
		return fmt.Errorf("nats publisher not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// Handler processes one message. Returned errors are logged; core NATS has no
// redelivery so handlers must be idempotent and own their retries.
type Handler func(ctx context.Context, data []byte) error

type Consumer struct {
	log     *logger.Logger
	conn    *nats.Conn
	subject string
	queue   string
	timeout time.Duration
}

func NewConsumer(log *logger.Logger, conn *nats.Conn, subject, queue string) *Consumer {
	return &Consumer{
		log:     log.With("service", "NATSConsumer", "subject", subject),
		conn:    conn,
		subject: subject,
		queue:   queue,
		timeout: 30 * time.Second,
	}
}

// Run subscribes in the consumer's queue group and blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("nats consumer not initialized")
	}
	if h == nil {
		return fmt.Errorf("handler required")
	}
	sub, err := c.conn.QueueSubscribe(c.subject, c.queue, func(msg *nats.Msg) {
		hctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := h(hctx, msg.Data); err != nil {
			c.log.Error("Event handler failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", c.subject, err)
	}
	if err := c.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flushing subscription: %w", err)
	}
	c.log.Info("Consuming events", "queue", c.queue)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		c.log.Warn("Drain failed", "error", err)
	}
	return nil
}
