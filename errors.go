package ixcache

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyKey   = errors.New("ixcache: empty key")
	ErrInvalidTTL = errors.New("ixcache: ttl must be a whole number of seconds, at least one")
	ErrClosed     = errors.New("ixcache: store is closed")
	ErrNotLoaded  = errors.New("ixcache: plugin is not loaded")
)

// Op names the stage of a Store call that failed.
type Op string

const (
	OpDial   Op = "dial"
	OpEncode Op = "encode"
	OpWrite  Op = "write"
)

// StoreError is the single failure a Store reports. Callers that need the
// cause can reach it through errors.Is / errors.As.
type StoreError struct {
	Key string
	Op  Op
	Err error
}

func (e *StoreError) Error() string {
	switch e.Op {
	case OpDial:
		return fmt.Sprintf("store %q: connect: %v", e.Key, e.Err)
	case OpEncode:
		return fmt.Sprintf("store %q: encode payload: %v", e.Key, e.Err)
	case OpWrite:
		return fmt.Sprintf("store %q: write: %v", e.Key, e.Err)
	default:
		return fmt.Sprintf("store %q: %v", e.Key, e.Err)
	}
}

func (e *StoreError) Unwrap() error { return e.Err }
