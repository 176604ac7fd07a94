package nats

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestPublishConsume(t *testing.T) {
	url := startTestNATS(t)
	pubConn, err := Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pubConn.Close()
	subConn, err := Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer subConn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan newsletter.LoginEvent, 1)
	consumer := NewConsumer(logger.Nop(), subConn, newsletter.EventUserLoggedIn, "reconciler")
	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx, func(_ context.Context, data []byte) error {
			var ev newsletter.LoginEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				return err
			}
			select {
			case got <- ev:
			default:
			}
			return nil
		})
	}()

	// Subscription is registered asynchronously; publish until received.
	pub := NewPublisher(pubConn)
	want := newsletter.LoginEvent{UserID: "u1", Email: "ada@example.com", Name: "Ada"}
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := pub.Publish(ctx, newsletter.EventUserLoggedIn, want); err != nil {
			t.Fatalf("publish: %v", err)
		}
		select {
		case ev := <-got:
			if ev != want {
				t.Fatalf("got %+v want %+v", ev, want)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Run: %v", err)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestHandlerErrorsDoNotStopConsumer(t *testing.T) {
	url := startTestNATS(t)
	conn, err := Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	consumer := NewConsumer(logger.Nop(), conn, "test.subject", "q")
	go func() {
		_ = consumer.Run(ctx, func(context.Context, []byte) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("boom")
		})
	}()

	pub := NewPublisher(conn)
	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&calls) < 2 && time.Now().Before(deadline) {
		_ = pub.Publish(ctx, "test.subject", map[string]string{"k": "v"})
		time.Sleep(20 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected handler to keep receiving after errors, got %d calls", calls)
	}
}

func TestPublisherNotInitialized(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), "x", 1); err == nil {
		t.Fatal("expected error")
	}
}
