// Package logrus adapts a *logrus.Entry to ixcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/ixcache"
)

var _ ixcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New wraps l, tagging every record with the plugin name. A nil l uses the
// logrus standard logger.
func New(l *logrus.Logger) LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return LogrusLogger{E: l.WithField("plugin", ixcache.PluginName)}
}

func (l LogrusLogger) Debug(msg string, f ixcache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f ixcache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f ixcache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f ixcache.Fields) { l.with(f).Error(msg) }

// with maps an "err" field onto logrus' error key.
func (l LogrusLogger) with(f ixcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			out[logrus.ErrorKey] = err
			continue
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
