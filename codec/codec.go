package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Named is implemented by codecs that can identify themselves inside a
// self-describing envelope.
type Named interface {
	Name() string
}

// NameOf returns the codec's name, or "" when it does not implement Named.
func NameOf(c any) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return ""
}
