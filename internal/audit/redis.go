package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

// RedisLog stores audit entries in a Redis list, newest at the head.
type RedisLog struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedisLog connects to Redis and verifies the connection.
func NewRedisLog(redisURL, keyPrefix string, log *logger.Logger) (*RedisLog, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	l := log.WithComponent("audit")
	l.Info("redis audit log connected", zap.String("url", maskRedisURL(redisURL)))

	return &RedisLog{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    l,
	}, nil
}

func (r *RedisLog) key() string {
	return r.keyPrefix + ":entries"
}

// Record implements Log via LPUSH, so List reads newest-first naturally.
func (r *RedisLog) Record(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := r.client.LPush(ctx, r.key(), data).Err(); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// List implements Log.
func (r *RedisLog) List(ctx context.Context, limit int) ([]Entry, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit) - 1
	}
	values, err := r.client.LRange(ctx, r.key(), 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			r.logger.Warn("skipping malformed audit entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close implements Log.
func (r *RedisLog) Close() error {
	return r.client.Close()
}

// maskRedisURL hides credentials in a redis URL for logging.
func maskRedisURL(url string) string {
	if at := strings.Index(url, "@"); at > 0 {
		if scheme := strings.Index(url, "://"); scheme > 0 {
			return url[:scheme+3] + "***" + url[at:]
		}
	}
	return url
}
