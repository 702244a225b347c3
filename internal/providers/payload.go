// Package providers turns raw provider payloads into canonical measurement
// records. Each provider has a fetcher (resilient HTTP) and a pure
// normalizer; normalizers must survive any payload shape, defaulting or
// skipping instead of failing.
package providers

import (
	"encoding/json"
	"time"
)

// Node is a cursor into an untyped payload tree. Every accessor is total: a
// missing key, a nil subtree or a value of unexpected shape yields the
// caller's default instead of an error.
type Node struct {
	v any
}

// ParsePayload decodes a raw JSON document into a payload tree.
func ParsePayload(data []byte) (Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Node{}, err
	}
	return Node{v: v}, nil
}

// NodeOf wraps an already-decoded value.
func NodeOf(v any) Node {
	return Node{v: v}
}

// IsNil reports whether the cursor points at nothing.
func (n Node) IsNil() bool {
	return n.v == nil
}

// Child descends into a map field.
func (n Node) Child(key string) Node {
	m, ok := n.v.(map[string]any)
	if !ok {
		return Node{}
	}
	return Node{v: m[key]}
}

// List returns the elements of an array field.
func (n Node) List(key string) []Node {
	arr, ok := n.Child(key).v.([]any)
	if !ok {
		return nil
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{v: v}
	}
	return out
}

// Index returns the i-th element of an array field.
func (n Node) Index(key string, i int) (Node, bool) {
	arr, ok := n.Child(key).v.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Node{}, false
	}
	return Node{v: arr[i]}, true
}

// Float reads a numeric field. JSON numbers decode as float64; integers fed
// through NodeOf are accepted too.
func (n Node) Float(key string) (float64, bool) {
	switch v := n.Child(key).v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// FloatOr reads a numeric field with a default.
func (n Node) FloatOr(key string, def float64) float64 {
	if v, ok := n.Float(key); ok {
		return v
	}
	return def
}

// Str reads a string field.
func (n Node) Str(key string) (string, bool) {
	s, ok := n.Child(key).v.(string)
	return s, ok
}

// StrOr reads a string field with a default.
func (n Node) StrOr(key, def string) string {
	if s, ok := n.Str(key); ok {
		return s
	}
	return def
}

// Time reads a unix-seconds field.
func (n Node) Time(key string) (time.Time, bool) {
	v, ok := n.Float(key)
	if !ok || v <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(v), 0).UTC(), true
}

// TimeOr reads a unix-seconds field with a default.
func (n Node) TimeOr(key string, def time.Time) time.Time {
	if t, ok := n.Time(key); ok {
		return t
	}
	return def
}
