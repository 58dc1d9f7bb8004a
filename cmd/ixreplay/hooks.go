package main

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/unkn0wn-root/ixcache"
)

// fanout forwards every event to each of its hooks in order.
type fanout []ixcache.Hooks

var _ ixcache.Hooks = fanout(nil)

func (f fanout) SentinelSkipped(slot uint64) {
	for _, h := range f {
		h.SentinelSkipped(slot)
	}
}

func (f fanout) Stored(key string, size int) {
	for _, h := range f {
		h.Stored(key, size)
	}
}

func (f fanout) Connected() {
	for _, h := range f {
		h.Connected()
	}
}

func (f fanout) DialFailed(err error) {
	for _, h := range f {
		h.DialFailed(err)
	}
}

func (f fanout) EncodeFailed(key string, err error) {
	for _, h := range f {
		h.EncodeFailed(key, err)
	}
}

func (f fanout) WriteFailed(key string, err error) {
	for _, h := range f {
		h.WriteFailed(key, err)
	}
}

// metricFields flattens counters and histogram counts from g into log fields.
func metricFields(g prometheus.Gatherer) (ixcache.Fields, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := ixcache.Fields{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += "." + lp.GetValue()
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[name] = m.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[name+"_count"] = m.GetHistogram().GetSampleCount()
				out[name+"_sum"] = m.GetHistogram().GetSampleSum()
			}
		}
	}
	return out, nil
}
