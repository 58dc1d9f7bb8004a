package ixcache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around your logging
// stack (see log/zap, log/logrus, log/slog). If Logger is nil in Options,
// logging is disabled.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// componentLogger stamps every record with the emitting component.
type componentLogger struct {
	next      Logger
	component string
}

func withComponent(l Logger, component string) Logger {
	if _, ok := l.(NopLogger); ok {
		return l
	}
	return componentLogger{next: l, component: component}
}

func (l componentLogger) fields(f Fields) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out["component"] = l.component
	return out
}

func (l componentLogger) Debug(msg string, f Fields) { l.next.Debug(msg, l.fields(f)) }
func (l componentLogger) Info(msg string, f Fields)  { l.next.Info(msg, l.fields(f)) }
func (l componentLogger) Warn(msg string, f Fields)  { l.next.Warn(msg, l.fields(f)) }
func (l componentLogger) Error(msg string, f Fields) { l.next.Error(msg, l.fields(f)) }
