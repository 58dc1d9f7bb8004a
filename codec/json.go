package codec

import "encoding/json"

// JSON is the default codec. Its output is what existing readers of the
// inner-instruction cache parse.
type JSON[V any] struct{}

func (JSON[V]) Name() string { return "json" }

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
