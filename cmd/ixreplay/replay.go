package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/ixcache"
	"github.com/unkn0wn-root/ixcache/geyser"
)

const maxLine = 16 << 20

type replayConfig struct {
	// Workers > 1 overlaps decoding only; writes still go one at a time
	// through the plugin, and duplicate signatures may land out of order.
	Workers   int
	KeepGoing bool
}

type replayStats struct {
	Lines    atomic.Int64
	Notified atomic.Int64
	Failed   atomic.Int64
}

type lineEvent struct {
	line int
	ev   event
}

// replay feeds every JSON line of in to p.NotifyTransaction. Blank lines and
// lines starting with '#' are ignored.
func replay(ctx context.Context, in io.Reader, p geyser.Plugin, cfg replayConfig, log ixcache.Logger) (*replayStats, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	st := &replayStats{}
	g, gctx := errgroup.WithContext(ctx)
	events := make(chan lineEvent, cfg.Workers*4)

	g.Go(func() error {
		defer close(events)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64<<10), maxLine)
		n := 0
		for sc.Scan() {
			n++
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 || line[0] == '#' {
				continue
			}
			st.Lines.Add(1)
			ev, err := parseEvent(line)
			if err != nil {
				st.Failed.Add(1)
				if !cfg.KeepGoing {
					return fmt.Errorf("line %d: %w", n, err)
				}
				log.Warn("skipping malformed line", ixcache.Fields{"line": n, "err": err})
				continue
			}
			select {
			case events <- lineEvent{line: n, ev: ev}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return sc.Err()
	})

	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			for le := range events {
				tx, err := le.ev.replica()
				if err == nil {
					err = p.NotifyTransaction(tx, le.ev.Slot)
				}
				st.Notified.Add(1)
				if err == nil {
					continue
				}
				st.Failed.Add(1)
				if !cfg.KeepGoing {
					return fmt.Errorf("line %d: %w", le.line, err)
				}
				log.Warn("notification failed", ixcache.Fields{"line": le.line, "slot": le.ev.Slot, "err": err})
			}
			return nil
		})
	}

	err := g.Wait()
	return st, err
}
