package fuel

import (
	"iter"

	"github.com/janekbaraniewski/co2meter/internal/payload"
)

// Leaves yields every scalar or null value reachable from v together with its
// dotted path. Object members extend the path; array elements keep the path of
// the array. Iteration stops as soon as the consumer stops.
func Leaves(v payload.Value) iter.Seq2[string, payload.Value] {
	return func(yield func(string, payload.Value) bool) {
		walkLeaves(v, "", yield)
	}
}

func walkLeaves(v payload.Value, prefix string, yield func(string, payload.Value) bool) bool {
	switch v.Kind() {
	case payload.KindObject:
		for _, m := range v.Members() {
			path := m.Key
			if prefix != "" {
				path = prefix + "." + m.Key
			}
			if !walkLeaves(m.Value, path, yield) {
				return false
			}
		}
		return true
	case payload.KindArray:
		for _, el := range v.Elements() {
			if !walkLeaves(el, prefix, yield) {
				return false
			}
		}
		return true
	default:
		if prefix == "" {
			return true
		}
		return yield(prefix, v)
	}
}
