package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const reloadTimeout = time.Minute

// ReloadFunc rebuilds whatever the notification invalidates.
type ReloadFunc func(ctx context.Context) error

// RedisReloadListener reloads on every message published to a channel.
// Processes that change organization data publish to the channel; the
// message payload is only logged.
type RedisReloadListener struct {
	client  *redis.Client
	channel string
	reload  ReloadFunc
	logger  logrus.FieldLogger
}

func NewRedisReloadListener(client *redis.Client, channel string, reload ReloadFunc, logger logrus.FieldLogger) *RedisReloadListener {
	return &RedisReloadListener{
		client:  client,
		channel: channel,
		reload:  reload,
		logger:  logger,
	}
}

// Run subscribes and handles notifications until ctx is done.
// Notifications are handled one at a time.
func (l *RedisReloadListener) Run(ctx context.Context) error {
	if l.client == nil {
		return errors.New("redis reload listener: client is nil")
	}

	sub := l.client.Subscribe(ctx, l.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so errors surface here.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis reload listener: subscribe %q: %w", l.channel, err)
	}

	l.logger.WithField("channel", l.channel).Info("listening for reload notifications")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *RedisReloadListener) handle(ctx context.Context, msg *redis.Message) {
	entry := l.logger.WithFields(logrus.Fields{
		"channel": msg.Channel,
		"payload": msg.Payload,
	})

	rctx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()

	if err := l.reload(rctx); err != nil {
		entry.WithError(err).Error("reload on notification failed")
		return
	}
	entry.Info("reloaded on notification")
}

// PublishReload announces that organization data changed. It returns the
// number of listeners that received the message.
func PublishReload(ctx context.Context, client *redis.Client, channel, reason string) (int64, error) {
	n, err := client.Publish(ctx, channel, reason).Result()
	if err != nil {
		return 0, fmt.Errorf("publish reload to %q: %w", channel, err)
	}
	return n, nil
}
