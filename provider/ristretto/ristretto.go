// Package ristretto is an in-process provider for local runs and tests. It
// honors per-entry TTLs but does not survive the process.
package ristretto

import (
	"bytes"
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/ixcache/provider"
)

type Provider struct {
	c       *rc.Cache
	maxCost int64
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // bytes; each entry costs len(value)
	BufferItems int64
	Metrics     bool
}

// DefaultConfig holds roughly 64 MiB of payloads.
func DefaultConfig() Config {
	return Config{NumCounters: 1e6, MaxCost: 64 << 20, BufferItems: 64}
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true, // cost is the payload size alone
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, maxCost: cfg.MaxCost}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write to be applied so the value is visible to the next
// Get, matching a remote store's read-after-write. Ristretto may still drop
// an accepted write at admission, so Set reads the key back and reports
// ErrRejected unless it holds value.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	cost := int64(len(value))
	if cost > p.maxCost {
		return pr.ErrRejected
	}
	if !p.c.SetWithTTL(key, value, cost, ttl) {
		return pr.ErrRejected
	}
	p.c.Wait()

	got, ok := p.c.Get(key)
	if b, _ := got.([]byte); !ok || !bytes.Equal(b, value) {
		return pr.ErrRejected
	}
	return nil
}

// TTL reports the remaining lifetime of key. ok is false on miss or when the
// entry never expires.
func (p *Provider) TTL(key string) (time.Duration, bool) {
	d, ok := p.c.GetTTL(key)
	if !ok || d == 0 {
		return 0, false
	}
	return d, true
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
