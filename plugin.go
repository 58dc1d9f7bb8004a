package ixcache

import (
	"context"
	"sync"
	"time"

	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/geyser"
	"github.com/unkn0wn-root/ixcache/internal/util"
	redisprov "github.com/unkn0wn-root/ixcache/provider/redis"
)

// Plugin forwards transaction inner instructions to a Store. All other
// notification categories are accepted and ignored.
type Plugin struct {
	opts  Options
	log   Logger
	hooks Hooks
	ttl   time.Duration

	mu    sync.RWMutex
	store Store[geyser.InnerInstructionSet] // nil while unloaded
}

func newPlugin(opts Options) *Plugin {
	return &Plugin{
		opts:  opts,
		log:   withComponent(coalesce[Logger](opts.Logger, NopLogger{}), "plugin"),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
		ttl:   coalesce[time.Duration](opts.TTL, DefaultTTL),
	}
}

func (p *Plugin) Name() string { return PluginName }

// OnLoad builds the store without connecting; the connection is dialed on the
// first transaction. The config file is not read.
func (p *Plugin) OnLoad(configFile string, isReload bool) error {
	s, err := p.buildStore()
	if err != nil {
		p.log.Error("plugin load failed", Fields{"err": err})
		return geyser.Custom(err)
	}

	p.mu.Lock()
	old := p.store
	p.store = s
	p.mu.Unlock()
	if old != nil {
		_ = old.Close(context.Background())
	}

	p.log.Info("plugin loaded", Fields{
		"name":       PluginName,
		"config":     configFile,
		"reload":     isReload,
		"ttl":        p.ttl,
		"key_prefix": p.opts.KeyPrefix,
	})
	return nil
}

func (p *Plugin) buildStore() (Store[geyser.InnerInstructionSet], error) {
	if !validTTL(p.ttl) {
		return nil, ErrInvalidTTL
	}

	dial := p.opts.Dialer
	if dial == nil {
		d, err := redisprov.NewDialer(redisprov.DialConfig{
			URL:          coalesce(p.opts.RedisURL, DefaultRedisURL),
			DialTimeout:  p.opts.DialTimeout,
			ReadTimeout:  p.opts.ReadTimeout,
			WriteTimeout: p.opts.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		dial = Dialer(d)
	}

	var codec c.Codec[geyser.InnerInstructionSet] = c.JSON[geyser.InnerInstructionSet]{}
	if p.opts.Codec != nil {
		codec = p.opts.Codec
	}
	if p.opts.MaxPayload > 0 {
		codec = c.LimitCodec[geyser.InnerInstructionSet]{Inner: codec, Max: p.opts.MaxPayload}
	}

	return NewStore(StoreOptions[geyser.InnerInstructionSet]{
		Dialer:     dial,
		Codec:      codec,
		Logger:     p.opts.Logger,
		Hooks:      p.hooks,
		DefaultTTL: p.ttl,
		Envelope:   p.opts.Envelope,
	})
}

func (p *Plugin) OnUnload() {
	p.mu.Lock()
	s := p.store
	p.store = nil
	p.mu.Unlock()
	if s == nil {
		return
	}
	if err := s.Close(context.Background()); err != nil {
		p.log.Warn("closing store on unload", Fields{"err": err})
	}
	p.log.Info("plugin unloaded", nil)
}

func (p *Plugin) UpdateAccount(geyser.ReplicaAccountInfoVersions, uint64, bool) error {
	return nil
}

func (p *Plugin) NotifyEndOfStartup() error {
	p.log.Debug("end of startup", nil)
	return nil
}

// NotifyTransaction writes the transaction's inner instructions under its
// signature. Events carrying the zero signature are dropped without a write.
func (p *Plugin) NotifyTransaction(tx geyser.ReplicaTransactionInfoVersions, slot uint64) error {
	ev, err := geyser.NormalizeTransaction(tx)
	if err != nil {
		return geyser.Custom(err)
	}
	if ev.Signature.IsZero() {
		p.hooks.SentinelSkipped(slot)
		return nil
	}

	p.mu.RLock()
	s := p.store
	p.mu.RUnlock()
	if s == nil {
		return geyser.Custom(ErrNotLoaded)
	}

	key := util.Key(p.opts.KeyPrefix, ev.Signature.String())
	p.log.Debug("forwarding transaction", Fields{
		"key":     key,
		"slot":    slot,
		"version": ev.Version,
		"groups":  len(ev.Meta.InnerInstructions),
	})
	if err := s.Store(context.Background(), key, ev.Meta.InnerInstructions, p.ttl); err != nil {
		return geyser.Custom(err)
	}
	return nil
}

func (p *Plugin) NotifyEntry(geyser.ReplicaEntryInfoVersions) error { return nil }

func (p *Plugin) NotifyBlockMetadata(geyser.ReplicaBlockInfoVersions) error { return nil }

func (p *Plugin) AccountDataNotificationsEnabled() bool { return true }
func (p *Plugin) TransactionNotificationsEnabled() bool { return true }
func (p *Plugin) EntryNotificationsEnabled() bool       { return true }
