package ixcache

import (
	"time"

	redisprov "github.com/unkn0wn-root/ixcache/provider/redis"
)

const (
	// DefaultTTL is how long an entry lives after its last write.
	DefaultTTL = 24 * time.Hour

	DefaultRedisURL = redisprov.DefaultURL

	PluginName = "ixcache"
)

// validTTL reports whether ttl maps exactly onto a Redis EXPIRE, which takes
// whole seconds.
func validTTL(ttl time.Duration) bool {
	return ttl >= time.Second && ttl%time.Second == 0
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
