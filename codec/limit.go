package codec

import (
	"errors"
	"fmt"
)

var ErrPayloadTooLarge = errors.New("codec: payload too large")

// LimitCodec wraps another codec and enforces a maximum payload size in both
// directions: Encode refuses to produce, and Decode refuses to read, more than
// Max bytes. If Max <= 0, size limiting is disabled.
//
// Typical use: keep one pathological transaction from pushing a multi-megabyte
// value into a shared cache.
type LimitCodec[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	Max   int
}

func (c LimitCodec[V]) Name() string { return NameOf(c.Inner) }

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.Max > 0 && len(b) > c.Max {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), c.Max)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
