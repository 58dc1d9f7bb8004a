package main

import (
	"fmt"
	"io"
	stdslog "log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/ixcache"
	asynchook "github.com/unkn0wn-root/ixcache/hooks/async"
	logruslog "github.com/unkn0wn-root/ixcache/log/logrus"
	slogadapter "github.com/unkn0wn-root/ixcache/log/slog"
	zaplog "github.com/unkn0wn-root/ixcache/log/zap"
	"github.com/unkn0wn-root/ixcache/sloghooks"
)

type logConfig struct {
	Backend string // zap | logrus | slog
	Level   string
	Format  string // console | json
}

// newLogger returns the plugin logger and a flush func. Logs go to stderr so
// inspect output on stdout stays clean.
func newLogger(cfg logConfig) (ixcache.Logger, func(), error) {
	switch cfg.Backend {
	case "", "zap":
		l, err := buildZapLogger(cfg)
		if err != nil {
			return nil, nil, err
		}
		return zaplog.New(l), func() { _ = l.Sync() }, nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(os.Stderr)
		lvl, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, err
		}
		l.SetLevel(lvl)
		if cfg.Format == "json" {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		return logruslog.New(l), func() {}, nil
	case "slog":
		opts := &stdslog.HandlerOptions{Level: slogLevel(cfg.Level)}
		var h stdslog.Handler = stdslog.NewTextHandler(os.Stderr, opts)
		if cfg.Format == "json" {
			h = stdslog.NewJSONHandler(os.Stderr, opts)
		}
		return slogadapter.New(stdslog.New(h)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

// newTraceHooks reports every store event to w at the configured log level.
// Stored and SentinelSkipped are Debug events, so they only show with
// --log-level=debug.
func newTraceHooks(cfg logConfig, w io.Writer) *asynchook.Hooks {
	opts := &stdslog.HandlerOptions{Level: slogLevel(cfg.Level)}
	var h stdslog.Handler = stdslog.NewTextHandler(w, opts)
	if cfg.Format == "json" {
		h = stdslog.NewJSONHandler(w, opts)
	}
	return asynchook.New(sloghooks.New(stdslog.New(h), sloghooks.Options{}), 1, 1024)
}

func buildZapLogger(cfg logConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(zapLevel(cfg.Level))
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func slogLevel(level string) stdslog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return stdslog.LevelDebug
	case "warn", "warning":
		return stdslog.LevelWarn
	case "error":
		return stdslog.LevelError
	default:
		return stdslog.LevelInfo
	}
}
