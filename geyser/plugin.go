// Package geyser describes the callback contract a validator host drives when
// it loads a replication plugin: lifecycle calls, one notification per
// replicated event, and boolean capability queries.
//
// The host decides when, and on which goroutine, each callback runs. Plugins
// must be safe for concurrent notification calls.
package geyser

import "errors"

// ErrUnsupportedVersion is returned when the host delivers an event variant
// this package does not know how to read.
var ErrUnsupportedVersion = errors.New("geyser: unsupported event version")

// Plugin is the set of callbacks a host invokes.
type Plugin interface {
	Name() string

	// OnLoad runs once before any notification. A non-nil error is fatal to the host.
	OnLoad(configFile string, isReload bool) error
	OnUnload()

	UpdateAccount(account ReplicaAccountInfoVersions, slot uint64, isStartup bool) error
	NotifyEndOfStartup() error
	NotifyTransaction(tx ReplicaTransactionInfoVersions, slot uint64) error
	NotifyEntry(entry ReplicaEntryInfoVersions) error
	NotifyBlockMetadata(block ReplicaBlockInfoVersions) error

	// Capability queries. The host skips categories reported as false.
	AccountDataNotificationsEnabled() bool
	TransactionNotificationsEnabled() bool
	EntryNotificationsEnabled() bool
}

// PluginError is the host's generic error channel. Anything a plugin fails
// with is carried in Err.
type PluginError struct {
	Err error
}

func (e *PluginError) Error() string {
	if e.Err == nil {
		return "geyser plugin error"
	}
	return "geyser plugin error: " + e.Err.Error()
}

func (e *PluginError) Unwrap() error { return e.Err }

// Custom wraps err into a *PluginError. A nil err stays nil.
func Custom(err error) error {
	if err == nil {
		return nil
	}
	return &PluginError{Err: err}
}
