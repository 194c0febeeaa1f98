package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher is the part of a redis client used for pub/sub.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisOpener treats topic identifiers as redis pub/sub channels.
type RedisOpener struct {
	client RedisPublisher
}

// NewRedisOpener connects to redis and checks the connection.
func NewRedisOpener(cfg config.NotifyConfig) (*RedisOpener, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisOpener{client: client}, nil
}

// NewRedisOpenerWithClient wraps an existing client.
func NewRedisOpenerWithClient(client RedisPublisher) *RedisOpener {
	return &RedisOpener{client: client}
}

func buildRedisOptions(cfg config.NotifyConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (o *RedisOpener) Topic(channel string) (Topic, error) {
	return &redisTopic{client: o.client, channel: channel}, nil
}

type redisTopic struct {
	client  RedisPublisher
	channel string
}

// redisEnvelope is the JSON payload published on the channel.
type redisEnvelope struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (t *redisTopic) ID() string { return t.channel }

func (t *redisTopic) Publish(ctx context.Context, subject, message string) error {
	payload, err := json.Marshal(redisEnvelope{Subject: subject, Message: message})
	if err != nil {
		return fmt.Errorf("redis payload encode failed: %w", err)
	}
	if err := t.client.Publish(ctx, t.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s failed: %w", t.channel, err)
	}
	return nil
}

var _ Opener = (*RedisOpener)(nil)
