// Command ixreplay drives the ixcache plugin the way a validator host would,
// from a file of JSON-line transaction notifications, and reads entries back.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/unkn0wn-root/ixcache"
	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/geyser"
	promhooks "github.com/unkn0wn-root/ixcache/hooks/prometheus"
	"github.com/unkn0wn-root/ixcache/internal/util"
	pr "github.com/unkn0wn-root/ixcache/provider"
	redisprov "github.com/unkn0wn-root/ixcache/provider/redis"
	ristprov "github.com/unkn0wn-root/ixcache/provider/ristretto"
)

func main() {
	app := &cli.App{
		Name:  "ixreplay",
		Usage: "replay transaction notifications through the ixcache plugin",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-backend", Value: "zap", Usage: "zap | logrus | slog"},
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"IXCACHE_LOG_LEVEL"}},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "console | json"},
		},
		Commands: []*cli.Command{replayCommand(), inspectCommand()},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ixreplay:", err)
		os.Exit(1)
	}
}

var storeFlags = []cli.Flag{
	&cli.StringFlag{Name: "redis-url", Value: ixcache.DefaultRedisURL, EnvVars: []string{"IXCACHE_REDIS_URL"}},
	&cli.StringFlag{Name: "prefix", Usage: "key prefix; keys become <prefix>:<signature>"},
	&cli.StringFlag{Name: "codec", Value: "json", Usage: "json | msgpack | cbor"},
	&cli.DurationFlag{Name: "dial-timeout", Value: 5 * time.Second},
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "send every notification in FILE (or stdin) to the plugin",
		ArgsUsage: "[FILE|-]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "store", Value: "redis", Usage: "redis | memory"},
			&cli.BoolFlag{Name: "envelope", Usage: "wrap payloads in a header naming the codec"},
			&cli.DurationFlag{Name: "ttl", Value: ixcache.DefaultTTL},
			&cli.IntFlag{Name: "max-payload", Usage: "reject encoded payloads larger than this many bytes"},
			&cli.IntFlag{Name: "workers", Value: 1},
			&cli.BoolFlag{Name: "keep-going", Usage: "log failed lines and continue"},
			&cli.BoolFlag{Name: "trace-hooks", Usage: "log every store event through slog"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address while replaying"},
		}, storeFlags...),
		Action: runReplay,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the cached inner instructions of each SIGNATURE",
		ArgsUsage: "SIGNATURE...",
		Flags:     storeFlags,
		Action:    runInspect,
	}
}

func runReplay(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, flush, err := newLogger(logFlags(cctx))
	if err != nil {
		return err
	}
	defer flush()

	codec, err := codecByName(cctx.String("codec"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := promhooks.New(reg, "")
	if err != nil {
		return err
	}
	hooks := fanout{metrics}
	if cctx.Bool("trace-hooks") {
		trace := newTraceHooks(logFlags(cctx), os.Stderr)
		defer trace.Close()
		hooks = append(hooks, trace)
	}

	opts := ixcache.Options{
		RedisURL:    cctx.String("redis-url"),
		DialTimeout: cctx.Duration("dial-timeout"),
		Codec:       codec,
		MaxPayload:  cctx.Int("max-payload"),
		Envelope:    cctx.Bool("envelope"),
		KeyPrefix:   cctx.String("prefix"),
		TTL:         cctx.Duration("ttl"),
		Logger:      log,
		Hooks:       hooks,
	}
	switch cctx.String("store") {
	case "redis":
	case "memory":
		mem, err := ristprov.New(ristprov.DefaultConfig())
		if err != nil {
			return err
		}
		opts.Dialer = func(context.Context) (pr.Provider, error) { return mem, nil }
	default:
		return fmt.Errorf("unknown store %q", cctx.String("store"))
	}

	if addr := cctx.String("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", ixcache.Fields{"addr": addr, "err": err})
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	in, closeIn, err := openInput(cctx.Args().First())
	if err != nil {
		return err
	}
	defer closeIn()

	p := ixcache.New(opts)
	if err := p.OnLoad("", false); err != nil {
		return err
	}
	defer p.OnUnload()
	if err := p.NotifyEndOfStartup(); err != nil {
		return err
	}

	start := time.Now()
	st, err := replay(ctx, in, p, replayConfig{Workers: cctx.Int("workers"), KeepGoing: cctx.Bool("keep-going")}, log)
	summary := ixcache.Fields{
		"lines":    st.Lines.Load(),
		"notified": st.Notified.Load(),
		"failed":   st.Failed.Load(),
		"elapsed":  time.Since(start),
	}
	if mf, gerr := metricFields(reg); gerr == nil {
		for k, v := range mf {
			summary[k] = v
		}
	}
	log.Info("replay finished", summary)
	return err
}

func runInspect(cctx *cli.Context) error {
	if cctx.NArg() == 0 {
		return cli.Exit("inspect: at least one signature is required", 2)
	}
	log, flush, err := newLogger(logFlags(cctx))
	if err != nil {
		return err
	}
	defer flush()

	primary, err := codecByName(cctx.String("codec"))
	if err != nil {
		return err
	}
	dial, err := redisprov.NewDialer(redisprov.DialConfig{
		URL:         cctx.String("redis-url"),
		DialTimeout: cctx.Duration("dial-timeout"),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cctx.Context, cctx.Duration("dial-timeout")+10*time.Second)
	defer cancel()
	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	for _, arg := range cctx.Args().Slice() {
		sig, err := geyser.ParseSignature(arg)
		if err != nil {
			return fmt.Errorf("%q: %w", arg, err)
		}
		key := util.Key(cctx.String("prefix"), sig.String())
		raw, ok, err := conn.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("not cached", ixcache.Fields{"key": key})
			continue
		}
		set, err := ixcache.Decode[geyser.InnerInstructionSet](raw, decodeOrder(primary)...)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := enc.Encode(struct {
			Signature         geyser.Signature           `json:"signature"`
			InnerInstructions geyser.InnerInstructionSet `json:"inner_instructions"`
		}{sig, set}); err != nil {
			return err
		}
	}
	return nil
}

func logFlags(cctx *cli.Context) logConfig {
	return logConfig{
		Backend: cctx.String("log-backend"),
		Level:   cctx.String("log-level"),
		Format:  cctx.String("log-format"),
	}
}

func openInput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func codecByName(name string) (c.Codec[geyser.InnerInstructionSet], error) {
	switch name {
	case "", "json":
		return c.JSON[geyser.InnerInstructionSet]{}, nil
	case "msgpack":
		return c.Msgpack[geyser.InnerInstructionSet]{}, nil
	case "cbor":
		return c.NewCBOR[geyser.InnerInstructionSet](false)
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// decodeOrder puts primary first, for bare payloads, followed by every other
// codec so enveloped entries decode whatever wrote them.
func decodeOrder(primary c.Codec[geyser.InnerInstructionSet]) []c.Codec[geyser.InnerInstructionSet] {
	out := []c.Codec[geyser.InnerInstructionSet]{primary}
	for _, name := range []string{"json", "msgpack", "cbor"} {
		if name == c.NameOf(primary) {
			continue
		}
		cd, err := codecByName(name)
		if err == nil {
			out = append(out, cd)
		}
	}
	return out
}
