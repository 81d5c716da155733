package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const testChannel = "organizations:reload"

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// publishWhenSubscribed retries until the listener has subscribed.
func publishWhenSubscribed(t *testing.T, client *redis.Client, payload string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := PublishReload(context.Background(), client, testChannel, payload)
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("listener never subscribed")
}

func TestRedisReloadListenerReloadsOnMessage(t *testing.T) {
	client := newTestClient(t)
	logger, _ := test.NewNullLogger()

	reloaded := make(chan struct{}, 8)
	l := NewRedisReloadListener(client, testChannel, func(ctx context.Context) error {
		reloaded <- struct{}{}
		return nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	publishWhenSubscribed(t, client, "seed")

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload was not triggered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRedisReloadListenerLogsFailedReload(t *testing.T) {
	client := newTestClient(t)
	logger, hook := test.NewNullLogger()

	attempted := make(chan struct{}, 8)
	l := NewRedisReloadListener(client, testChannel, func(ctx context.Context) error {
		defer func() { attempted <- struct{}{} }()
		return errors.New("source unavailable")
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	publishWhenSubscribed(t, client, "admin")

	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("reload was not attempted")
	}

	// The log entry is written after the reload func returns.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.ErrorLevel {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("failed reload was not logged")
}

func TestRedisReloadListenerNilClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	l := NewRedisReloadListener(nil, testChannel, func(context.Context) error { return nil }, logger)

	if err := l.Run(context.Background()); err == nil {
		t.Fatal("expected error for nil client")
	}
}
