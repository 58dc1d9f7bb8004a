package ixcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/internal/wire"
	pr "github.com/unkn0wn-root/ixcache/provider"
)

type store[V any] struct {
	dial       Dialer
	codec      c.Codec[V]
	codecName  string
	log        Logger
	hooks      Hooks
	defaultTTL time.Duration
	envelope   bool

	// mu is held for the whole of dial + encode + write so two writers never
	// share the connection at once.
	mu     sync.Mutex
	conn   pr.Provider
	closed bool
}

func newStore[V any](opts StoreOptions[V]) (*store[V], error) {
	if opts.Dialer == nil {
		return nil, fmt.Errorf("ixcache: dialer is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("ixcache: codec is required")
	}
	if opts.DefaultTTL != 0 && !validTTL(opts.DefaultTTL) {
		return nil, ErrInvalidTTL
	}

	s := &store[V]{
		dial:      opts.Dialer,
		codec:     opts.Codec,
		codecName: c.NameOf(opts.Codec),
		envelope:  opts.Envelope,
	}
	if s.envelope && s.codecName == "" {
		return nil, fmt.Errorf("ixcache: envelope requires a named codec")
	}

	// defaults
	s.log = withComponent(coalesce[Logger](opts.Logger, NopLogger{}), "store")
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, DefaultTTL)

	return s, nil
}

func (s *store[V]) Store(ctx context.Context, key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if !validTTL(ttl) {
		return ErrInvalidTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	conn, err := s.connLocked(ctx)
	if err != nil {
		return &StoreError{Key: key, Op: OpDial, Err: err}
	}

	payload, err := s.encode(value)
	if err != nil {
		s.hooks.EncodeFailed(key, err)
		s.log.Warn("payload encode failed", Fields{"key": key, "codec": s.codecName, "err": err})
		return &StoreError{Key: key, Op: OpEncode, Err: err}
	}

	if err := conn.Set(ctx, key, payload, ttl); err != nil {
		s.hooks.WriteFailed(key, err)
		s.log.Warn("cache write failed", Fields{"key": key, "err": err})
		return &StoreError{Key: key, Op: OpWrite, Err: err}
	}

	s.hooks.Stored(key, len(payload))
	s.log.Debug("stored", Fields{"key": key, "bytes": len(payload), "ttl": ttl})
	return nil
}

// connLocked returns the shared connection, dialing it on first use.
// A failed dial is not retried here; the next Store tries again.
func (s *store[V]) connLocked(ctx context.Context) (pr.Provider, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.dial(ctx)
	if err != nil {
		s.hooks.DialFailed(err)
		s.log.Error("cache connection failed", Fields{"err": err})
		return nil, err
	}
	if conn == nil {
		err := fmt.Errorf("ixcache: dialer returned nil provider")
		s.hooks.DialFailed(err)
		return nil, err
	}
	s.conn = conn
	s.hooks.Connected()
	s.log.Info("cache connection established", nil)
	return conn, nil
}

func (s *store[V]) encode(value V) ([]byte, error) {
	payload, err := s.codec.Encode(value)
	if err != nil {
		return nil, err
	}
	if !s.envelope {
		return payload, nil
	}
	return wire.EncodeEntry(s.codecName, payload)
}

func (s *store[V]) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(ctx)
	s.conn = nil
	return err
}
