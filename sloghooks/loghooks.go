// Package sloghooks reports store events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/ixcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StoredEvery   uint64
	SentinelEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	storedCtr   atomic.Uint64
	sentinelCtr atomic.Uint64
}

var _ ixcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SentinelSkipped(slot uint64) {
	if h.l == nil || !sample(h.opts.SentinelEvery, &h.sentinelCtr) {
		return
	}
	h.l.Debug("ixcache.sentinel_skipped", "slot", slot)
}

func (h *Hooks) Stored(key string, size int) {
	if h.l == nil || !sample(h.opts.StoredEvery, &h.storedCtr) {
		return
	}
	h.l.Debug("ixcache.stored",
		"key", h.redact(key),
		"bytes", size)
}

func (h *Hooks) Connected() {
	if h.l == nil {
		return
	}
	h.l.Info("ixcache.connected")
}

func (h *Hooks) DialFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("ixcache.dial_failed", "err", err)
}

func (h *Hooks) EncodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("ixcache.encode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) WriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("ixcache.write_failed",
		"key", h.redact(key),
		"err", err)
}
