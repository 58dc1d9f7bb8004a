// Package zap adapts a *zap.Logger to ixcache.Logger.
package zap

import (
	"sort"
	"time"

	"github.com/unkn0wn-root/ixcache"
	"go.uber.org/zap"
)

var _ ixcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New wraps l. A nil l logs nothing.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.Named(ixcache.PluginName)}
}

func (z ZapLogger) Debug(msg string, f ixcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f ixcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f ixcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f ixcache.Fields) { z.L.Error(msg, zf(f)...) }

// zf converts fields in key order so encoded lines are stable.
func zf(f ixcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case time.Duration:
			out = append(out, zap.Duration(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
