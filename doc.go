// Package ixcache is a geyser plugin that copies the inner instructions of
// every replicated transaction into Redis, keyed by the transaction's base58
// signature, for a fixed window (24h by default).
//
// Components:
//   - Plugin: implements geyser.Plugin. Normalizes each transaction event,
//     drops the all-zero sentinel signature and forwards the rest.
//   - Store[V]: the cache client. Owns exactly one provider connection, dialed
//     lazily on the first write and guarded by a mutex for the whole
//     encode + write + expire sequence.
//   - Codec[V]: (de)serializes V <-> []byte. JSON by default.
//   - Provider: byte store with TTL (Redis, or Ristretto for local runs).
//
// Keys:
//
//	<signature>            - default
//	<prefix>:<signature>   - when Options.KeyPrefix is set
//
// Writes are last-writer-wins: a second notification for the same signature
// overwrites the value and restarts the TTL.
package ixcache
