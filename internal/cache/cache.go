package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "vk-tinder:"
	defaultTTL = 24 * time.Hour
)

type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string        `mapstructure:"password" json:"-"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Lists keeps id lists (friends, group subscriptions) in Redis so repeated runs
// over the same search pages do not hit the VK rate limit again.
type Lists struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLists(client *redis.Client, ttl time.Duration) *Lists {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Lists{client: client, ttl: ttl}
}

// Connect creates a client from config and checks the server answers.
func Connect(ctx context.Context, cfg *Config) (*Lists, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewLists(client, cfg.TTL), nil
}

// IDs returns the cached list. The bool is false on a cache miss.
func (l *Lists) IDs(ctx context.Context, key string) ([]int64, bool, error) {
	data, err := l.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("decoding cached list %s: %w", key, err)
	}

	return ids, true, nil
}

func (l *Lists) SetIDs(ctx context.Context, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return l.client.Set(ctx, keyPrefix+key, data, l.ttl).Err()
}

func (l *Lists) Close() error {
	return l.client.Close()
}
