package fuel

import (
	"github.com/samber/lo"

	"github.com/janekbaraniewski/co2meter/internal/payload"
)

// wrapperKeys are checked in order when a page payload is an object.
var wrapperKeys = []string{"result", "data"}

// NormalizeRows flattens one page payload into its object rows. A bare array
// keeps its object elements; an object wrapping an array or a single object
// under "result" or "data" is unwrapped; any other object is one row.
// Scalars and null yield no rows.
func NormalizeRows(p payload.Value) []payload.Value {
	switch p.Kind() {
	case payload.KindArray:
		return objectElements(p)
	case payload.KindObject:
		for _, key := range wrapperKeys {
			v, ok := p.Get(key)
			if !ok {
				continue
			}
			switch v.Kind() {
			case payload.KindArray:
				return objectElements(v)
			case payload.KindObject:
				return []payload.Value{v}
			}
		}
		return []payload.Value{p}
	default:
		return nil
	}
}

func objectElements(arr payload.Value) []payload.Value {
	return lo.Filter(arr.Elements(), func(v payload.Value, _ int) bool {
		return v.IsObject()
	})
}
