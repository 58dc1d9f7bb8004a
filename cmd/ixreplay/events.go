package main

import (
	"encoding/json"
	"fmt"

	"github.com/unkn0wn-root/ixcache/geyser"
)

// event is one JSON line of a replay file:
//
//	{"version":"0.0.2","slot":7,"signature":"<base58>","index":0,
//	 "meta":{"fee":5000,"inner_instructions":[...]}}
//
// version defaults to "0.0.2".
type event struct {
	Version   string                       `json:"version"`
	Slot      uint64                       `json:"slot"`
	Signature *geyser.Signature            `json:"signature"`
	IsVote    bool                         `json:"is_vote"`
	Index     int                          `json:"index"`
	Meta      geyser.TransactionStatusMeta `json:"meta"`
}

func parseEvent(line []byte) (event, error) {
	var ev event
	if err := json.Unmarshal(line, &ev); err != nil {
		return event{}, err
	}
	if ev.Signature == nil {
		return event{}, fmt.Errorf("missing signature")
	}
	return ev, nil
}

func (ev event) replica() (geyser.ReplicaTransactionInfoVersions, error) {
	switch ev.Version {
	case "0.0.1":
		return &geyser.ReplicaTransactionInfoV1{
			Signature: *ev.Signature,
			IsVote:    ev.IsVote,
			Meta:      ev.Meta,
		}, nil
	case "", "0.0.2":
		return &geyser.ReplicaTransactionInfoV2{
			Signature: *ev.Signature,
			IsVote:    ev.IsVote,
			Meta:      ev.Meta,
			Index:     ev.Index,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", geyser.ErrUnsupportedVersion, ev.Version)
	}
}
