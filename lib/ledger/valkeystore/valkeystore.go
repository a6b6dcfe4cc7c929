// Package valkeystore keeps the ledger in Redis/Valkey.
package valkeystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	valkey "github.com/redis/go-redis/v9"

	"github.com/glyphforge/sphinx/lib/ledger"
)

func init() {
	ledger.Register("valkey", Factory{})
}

var (
	ErrNoURL  = errors.New("valkeystore.Config: no URL defined")
	ErrBadURL = errors.New("valkeystore.Config: URL is invalid")
)

type Config struct {
	URL string `json:"url"`
}

func (c Config) Valid() error {
	if c.URL == "" {
		return ErrNoURL
	}

	if _, err := valkey.ParseURL(c.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrBadURL, err)
	}

	return nil
}

// redisClient is the subset of *valkey.Client this store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *valkey.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *valkey.StatusCmd
	Del(ctx context.Context, keys ...string) *valkey.IntCmd
	Ping(ctx context.Context) *valkey.StatusCmd
}

type Store struct {
	client redisClient
}

var _ ledger.Interface = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return nil, fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
		}
		return nil, err
	}
	return cmd.Bytes()
}

func (s *Store) Set(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	return s.client.Set(ctx, key, value, expiry).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res := s.client.Del(ctx, key)
	if err := res.Err(); err != nil {
		return err
	}
	if n, _ := res.Result(); n == 0 {
		return fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
	}
	return nil
}

type Factory struct{}

func (Factory) Valid(data json.RawMessage) error {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	return cfg.Valid()
}

func (Factory) Build(ctx context.Context, data json.RawMessage) (ledger.Interface, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}

	opts, err := valkey.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("valkeystore.Factory: %w", err)
	}

	client := valkey.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkeystore.Factory: ping failed: %w", err)
	}

	return &Store{client: client}, nil
}
