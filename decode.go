package ixcache

import (
	"fmt"

	c "github.com/unkn0wn-root/ixcache/codec"
	"github.com/unkn0wn-root/ixcache/internal/wire"
)

// Decode reads a value written by a Store. An enveloped entry is decoded by the
// codec whose name it carries; a bare payload is decoded by the first codec.
func Decode[V any](raw []byte, codecs ...c.Codec[V]) (V, error) {
	var zero V
	if len(codecs) == 0 {
		return zero, fmt.Errorf("ixcache: no codec to decode with")
	}
	if !wire.HasMagic(raw) {
		return codecs[0].Decode(raw)
	}

	name, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		return zero, err
	}
	for _, cd := range codecs {
		if c.NameOf(cd) == name {
			return cd.Decode(payload)
		}
	}
	return zero, fmt.Errorf("ixcache: entry encoded with unknown codec %q", name)
}
