package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/ixcache/provider"
)

// DefaultURL points at a local server, database 0.
const DefaultURL = "redis://127.0.0.1:6379/0"

// DialConfig describes the single connection a Store owns.
type DialConfig struct {
	// URL is redis://[user:pass@]host:port/db or rediss:// for TLS.
	URL          string        `validate:"required,url"`
	DialTimeout  time.Duration `validate:"gte=0"`
	ReadTimeout  time.Duration `validate:"gte=0"`
	WriteTimeout time.Duration `validate:"gte=0"`

	// Hooks are attached to the client before the first command.
	Hooks []goredis.Hook `validate:"-"`
}

// Dialer opens a provider. It matches ixcache.Dialer.
type Dialer func(ctx context.Context) (pr.Provider, error)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options validates cfg and returns client options restricted to one pooled
// connection with client-side retries disabled.
func Options(cfg DialConfig) (*goredis.Options, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("redis provider: invalid config: %w", err)
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis provider: parse url: %w", err)
	}
	opts.PoolSize = 1
	opts.MinIdleConns = 0
	opts.MaxRetries = -1
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// NewDialer validates cfg up front; the returned Dialer connects and PINGs
// each time it is called. The provider it returns owns its client.
func NewDialer(cfg DialConfig) (Dialer, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	hooks := append([]goredis.Hook(nil), cfg.Hooks...)
	return func(ctx context.Context) (pr.Provider, error) {
		rdb := goredis.NewClient(opts)
		for _, h := range hooks {
			rdb.AddHook(h)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis provider: ping %s: %w", opts.Addr, err)
		}
		p, err := New(Config{Client: rdb, CloseClient: true})
		if err != nil {
			return nil, err
		}
		return p, nil
	}, nil
}
