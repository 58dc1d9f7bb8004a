package ixcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/geyser"
	pr "github.com/unkn0wn-root/ixcache/provider"
)

// Store is the cache client: one lazily dialed connection shared by every
// caller, with writes serialized on it.
type Store[V any] interface {
	// Store encodes value and writes it under key with the given TTL, as a
	// single operation. ttl == 0 selects the store's default TTL.
	Store(ctx context.Context, key string, value V, ttl time.Duration) error
	Close(ctx context.Context) error
}

// Dialer opens the provider a Store writes to. It is called lazily, on the
// first Store, and again after a failed attempt.
type Dialer func(ctx context.Context) (pr.Provider, error)

// StoreOptions configure a Store. Dialer and Codec are required.
type StoreOptions[V any] struct {
	Dialer Dialer
	Codec  c.Codec[V]

	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	DefaultTTL time.Duration // 0 => 24h
	// Envelope wraps each payload in a small self-describing header naming
	// the codec. Readers must then unwrap with Decode. The codec must
	// implement codec.Named.
	Envelope bool
}

func NewStore[V any](opts StoreOptions[V]) (Store[V], error) {
	s, err := newStore[V](opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Options tune the plugin. The zero value writes JSON to DefaultRedisURL with
// a 24h TTL.
type Options struct {
	RedisURL string // "" => DefaultRedisURL; ignored when Dialer is set
	// DialTimeout, ReadTimeout and WriteTimeout bound single network
	// operations; 0 keeps the client defaults.
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Dialer       Dialer // overrides RedisURL, e.g. an in-process provider

	Codec      c.Codec[geyser.InnerInstructionSet] // nil => JSON
	MaxPayload int                                 // > 0 rejects larger encoded payloads
	Envelope   bool
	KeyPrefix  string        // keys become "<prefix>:<signature>"
	TTL        time.Duration // 0 => 24h

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// New returns an unloaded plugin; the host calls OnLoad before any
// notification.
func New(opts Options) *Plugin {
	return newPlugin(opts)
}

var _ geyser.Plugin = (*Plugin)(nil)
