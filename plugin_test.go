package ixcache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr-tron/base58"

	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/geyser"
	pr "github.com/unkn0wn-root/ixcache/provider"
	ristprov "github.com/unkn0wn-root/ixcache/provider/ristretto"
)

func sigOf(b byte) geyser.Signature {
	var s geyser.Signature
	for i := range s {
		s[i] = b
	}
	return s
}

func txV2(sig geyser.Signature, set geyser.InnerInstructionSet) *geyser.ReplicaTransactionInfoV2 {
	return &geyser.ReplicaTransactionInfoV2{
		Signature: sig,
		Meta:      geyser.TransactionStatusMeta{InnerInstructions: set},
		Index:     3,
	}
}

func loadedPlugin(t *testing.T, d *countingDialer, opts Options) *Plugin {
	t.Helper()
	opts.Dialer = d.Dial
	p := New(opts)
	if err := p.OnLoad("", false); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}
	t.Cleanup(p.OnUnload)
	return p
}

func TestPluginSkipsZeroSignature(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	h := &countingHooks{}
	p := loadedPlugin(t, d, Options{Hooks: h})

	if err := p.NotifyTransaction(txV2(geyser.Signature{}, sampleSet()), 10); err != nil {
		t.Fatalf("NotifyTransaction: %v", err)
	}
	if d.mp.setCount() != 0 || d.dials.Load() != 0 {
		t.Fatalf("sentinel must not touch the cache (sets=%d dials=%d)", d.mp.setCount(), d.dials.Load())
	}
	if h.skipped.Load() != 1 {
		t.Fatalf("SentinelSkipped not reported")
	}
}

func TestPluginStoresInnerInstructionsUnderBase58Signature(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{})

	sig := sigOf(0xAA)
	if err := p.NotifyTransaction(txV2(sig, sampleSet()), 42); err != nil {
		t.Fatalf("NotifyTransaction: %v", err)
	}

	key := base58.Encode(sig[:])
	e, ok := d.mp.entry(key)
	if !ok {
		t.Fatalf("no entry under %s", key)
	}
	want := `[{"index":0,"instructions":[{"instruction":{"program_id_index":1,"accounts":[2,3],"data":[9,9]},"stack_height":null}]}]`
	if string(e.v) != want {
		t.Fatalf("payload = %s\nwant      %s", e.v, want)
	}
	if e.ttl != 86400*time.Second {
		t.Fatalf("ttl = %v", e.ttl)
	}
	if d.mp.setCount() != 1 {
		t.Fatalf("expected exactly one write, got %d", d.mp.setCount())
	}
}

func TestPluginAbsentAndEmptyInnerInstructions(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{})

	absent, empty := sigOf(1), sigOf(2)
	if err := p.NotifyTransaction(txV2(absent, nil), 1); err != nil {
		t.Fatalf("absent: %v", err)
	}
	if err := p.NotifyTransaction(txV2(empty, geyser.InnerInstructionSet{}), 1); err != nil {
		t.Fatalf("empty: %v", err)
	}

	a, _ := d.mp.entry(absent.String())
	e, _ := d.mp.entry(empty.String())
	if string(a.v) != "null" || string(e.v) != "[]" {
		t.Fatalf("absent=%s empty=%s", a.v, e.v)
	}
}

func TestPluginAcceptsBothEventVersions(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{})

	v1 := &geyser.ReplicaTransactionInfoV1{Signature: sigOf(7), Meta: geyser.TransactionStatusMeta{InnerInstructions: sampleSet()}}
	if err := p.NotifyTransaction(v1, 1); err != nil {
		t.Fatalf("v1: %v", err)
	}
	if err := p.NotifyTransaction(txV2(sigOf(8), sampleSet()), 1); err != nil {
		t.Fatalf("v2: %v", err)
	}
	for _, s := range []geyser.Signature{sigOf(7), sigOf(8)} {
		if _, ok := d.mp.entry(s.String()); !ok {
			t.Fatalf("missing entry for %s", s)
		}
	}

	var nilV2 *geyser.ReplicaTransactionInfoV2
	if err := p.NotifyTransaction(nilV2, 1); !errors.Is(err, geyser.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestPluginWrapsStoreFailures(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	d := &countingDialer{mp: newMemProvider(), fail: cause}
	p := loadedPlugin(t, d, Options{})

	sig := sigOf(0xAA)
	err := p.NotifyTransaction(txV2(sig, sampleSet()), 1)
	var pe *geyser.PluginError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *geyser.PluginError, got %T %v", err, err)
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != OpDial || !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if _, ok := d.mp.entry(sig.String()); ok {
		t.Fatalf("entry written despite failure")
	}

	// the next notification dials again and succeeds
	d.fail = nil
	if err := p.NotifyTransaction(txV2(sig, sampleSet()), 2); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
}

// Duplicate notifications for one signature overwrite: the cache keeps the
// latest set and restarts its TTL.
func TestPluginDuplicateSignatureOverwrites(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{})

	sig := sigOf(5)
	_ = p.NotifyTransaction(txV2(sig, sampleSet()), 1)
	if err := p.NotifyTransaction(txV2(sig, geyser.InnerInstructionSet{}), 2); err != nil {
		t.Fatalf("NotifyTransaction: %v", err)
	}
	e, _ := d.mp.entry(sig.String())
	if string(e.v) != "[]" || d.mp.setCount() != 2 {
		t.Fatalf("payload=%s sets=%d", e.v, d.mp.setCount())
	}
}

func TestPluginKeyPrefixAndTTL(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{KeyPrefix: "ix", TTL: time.Hour})

	sig := sigOf(9)
	if err := p.NotifyTransaction(txV2(sig, sampleSet()), 1); err != nil {
		t.Fatalf("NotifyTransaction: %v", err)
	}
	e, ok := d.mp.entry("ix:" + sig.String())
	if !ok || e.ttl != time.Hour {
		t.Fatalf("entry=%v ok=%v", e, ok)
	}
}

func TestPluginMaxPayload(t *testing.T) {
	d := &countingDialer{mp: newMemProvider()}
	p := loadedPlugin(t, d, Options{MaxPayload: 16})

	err := p.NotifyTransaction(txV2(sigOf(3), sampleSet()), 1)
	if !errors.Is(err, c.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if d.mp.setCount() != 0 {
		t.Fatalf("oversized payload written")
	}
}

func TestPluginNotLoaded(t *testing.T) {
	p := New(Options{})
	err := p.NotifyTransaction(txV2(sigOf(1), nil), 1)
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	// the sentinel is filtered before the load check
	if err := p.NotifyTransaction(txV2(geyser.Signature{}, nil), 1); err != nil {
		t.Fatalf("sentinel before load: %v", err)
	}
}

func TestPluginOnLoadValidatesConfig(t *testing.T) {
	for name, opts := range map[string]Options{
		"bad url":    {RedisURL: "http://127.0.0.1:6379"},
		"short ttl":  {TTL: 10 * time.Millisecond},
		"frac ttl":   {TTL: 1500 * time.Millisecond},
		"negative":   {ReadTimeout: -time.Second},
		"unnamed cd": {Codec: unnamedSetCodec{}, Envelope: true},
	} {
		p := New(opts)
		err := p.OnLoad("", false)
		var pe *geyser.PluginError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected *geyser.PluginError, got %v", name, err)
		}
	}
}

type unnamedSetCodec struct {
	c.JSON[geyser.InnerInstructionSet]
}

func (unnamedSetCodec) Name() string { return "" }

// OnLoad with the default Redis URL must not connect; nothing listens in tests.
func TestPluginOnLoadDoesNotDial(t *testing.T) {
	p := New(Options{})
	if err := p.OnLoad("/etc/ixcache.json", false); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}
	p.OnUnload()
}

func TestPluginUnloadClosesAndReloadReplaces(t *testing.T) {
	first := &countingDialer{mp: newMemProvider()}
	p := New(Options{Dialer: first.Dial})
	if err := p.OnLoad("", false); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}
	_ = p.NotifyTransaction(txV2(sigOf(1), nil), 1)

	// reload swaps the store and closes the old connection
	second := &countingDialer{mp: newMemProvider()}
	p.opts.Dialer = second.Dial
	if err := p.OnLoad("", true); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !first.mp.closed {
		t.Fatalf("old provider not closed on reload")
	}
	_ = p.NotifyTransaction(txV2(sigOf(2), nil), 1)
	if second.mp.setCount() != 1 {
		t.Fatalf("reloaded plugin did not use the new dialer")
	}

	p.OnUnload()
	if !second.mp.closed {
		t.Fatalf("provider not closed on unload")
	}
	if err := p.NotifyTransaction(txV2(sigOf(3), nil), 1); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded after unload, got %v", err)
	}
	p.OnUnload()
}

func TestPluginCapabilitiesAndIgnoredCallbacks(t *testing.T) {
	p := New(Options{})
	if p.Name() != PluginName {
		t.Fatalf("name = %q", p.Name())
	}
	if !p.AccountDataNotificationsEnabled() || !p.TransactionNotificationsEnabled() || !p.EntryNotificationsEnabled() {
		t.Fatalf("all notification categories should be enabled")
	}
	if err := p.UpdateAccount(&geyser.ReplicaAccountInfoV3{}, 1, true); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if err := p.NotifyEndOfStartup(); err != nil {
		t.Fatalf("NotifyEndOfStartup: %v", err)
	}
	if err := p.NotifyEntry(&geyser.ReplicaEntryInfoV2{}); err != nil {
		t.Fatalf("NotifyEntry: %v", err)
	}
	if err := p.NotifyBlockMetadata(&geyser.ReplicaBlockInfoV3{}); err != nil {
		t.Fatalf("NotifyBlockMetadata: %v", err)
	}
}

// TestPluginWithRistretto runs the full path against the in-process provider,
// enveloped with CBOR.
func TestPluginWithRistretto(t *testing.T) {
	rp, err := ristprov.New(ristprov.DefaultConfig())
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	p := New(Options{
		Dialer:   func(context.Context) (pr.Provider, error) { return rp, nil },
		Codec:    c.MustCBOR[geyser.InnerInstructionSet](false),
		Envelope: true,
	})
	if err := p.OnLoad("", false); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}
	defer p.OnUnload()

	sig := sigOf(0xAA)
	if err := p.NotifyTransaction(txV2(sig, sampleSet()), 1); err != nil {
		t.Fatalf("NotifyTransaction: %v", err)
	}

	raw, ok, err := rp.Get(context.Background(), sig.String())
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	got, err := Decode[geyser.InnerInstructionSet](raw, c.JSON[geyser.InnerInstructionSet]{}, c.MustCBOR[geyser.InnerInstructionSet](false))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || !bytes.Equal(got[0].Instructions[0].Instruction.Accounts, []byte{2, 3}) {
		t.Fatalf("decoded %+v", got)
	}
	if ttl, ok := rp.TTL(sig.String()); !ok || ttl > DefaultTTL || ttl < DefaultTTL-time.Minute {
		t.Fatalf("ttl = %v ok=%v", ttl, ok)
	}
}

func TestPluginReportsWriteDroppedByRistretto(t *testing.T) {
	rp, err := ristprov.New(ristprov.Config{NumCounters: 100, MaxCost: 16, BufferItems: 64})
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	h := &countingHooks{}
	p := New(Options{
		Dialer: func(context.Context) (pr.Provider, error) { return rp, nil },
		Hooks:  h,
	})
	if err := p.OnLoad("", false); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}
	defer p.OnUnload()

	sig := sigOf(0xAA)
	err = p.NotifyTransaction(txV2(sig, sampleSet()), 1)
	var se *StoreError
	if !errors.As(err, &se) || se.Op != OpWrite || !errors.Is(err, pr.ErrRejected) {
		t.Fatalf("expected rejected write, got %v", err)
	}
	if h.stored.Load() != 0 || h.writeFail.Load() != 1 {
		t.Fatalf("hooks: stored=%d writeFail=%d", h.stored.Load(), h.writeFail.Load())
	}
	if _, ok, _ := rp.Get(context.Background(), sig.String()); ok {
		t.Fatalf("dropped entry is readable")
	}
}
