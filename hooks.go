package ixcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// Store calls them while holding its connection lock.
type Hooks interface {
	// A transaction notification carried the all-zero signature and was dropped.
	SentinelSkipped(slot uint64)

	// A payload of size bytes was written under key.
	Stored(key string, size int)

	// The lazy connection was established.
	Connected()

	// Failures, by stage. The triggering write is dropped in every case.
	DialFailed(err error)
	EncodeFailed(key string, err error)
	WriteFailed(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SentinelSkipped(uint64)     {}
func (NopHooks) Stored(string, int)         {}
func (NopHooks) Connected()                 {}
func (NopHooks) DialFailed(error)           {}
func (NopHooks) EncodeFailed(string, error) {}
func (NopHooks) WriteFailed(string, error)  {}
