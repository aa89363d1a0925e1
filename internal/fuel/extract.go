package fuel

import (
	"strings"

	"github.com/janekbaraniewski/co2meter/internal/parsers"
	"github.com/janekbaraniewski/co2meter/internal/payload"
)

// ExtractValue resolves key in row and returns it as a number. The dotted path
// is first followed by exact key match; if that breaks off, the first leaf
// whose path equals key ignoring case is used instead. Numeric strings such as
// "1,234.50" are accepted. Anything else reports absent.
func ExtractValue(row payload.Value, key string) (float64, bool) {
	leaf, ok := lookupDotted(row, key)
	if !ok {
		leaf, ok = lookupLeaf(row, key)
	}
	if !ok {
		return 0, false
	}
	return numeric(leaf)
}

func lookupDotted(row payload.Value, key string) (payload.Value, bool) {
	cur := row
	for _, part := range strings.Split(key, ".") {
		next, ok := cur.Get(part)
		if !ok {
			return payload.Value{}, false
		}
		cur = next
	}
	return cur, true
}

func lookupLeaf(row payload.Value, key string) (payload.Value, bool) {
	for path, leaf := range Leaves(row) {
		if strings.EqualFold(path, key) {
			return leaf, true
		}
	}
	return payload.Value{}, false
}

func numeric(v payload.Value) (float64, bool) {
	if f, ok := v.AsNumber(); ok {
		return f, true
	}
	if s, ok := v.AsString(); ok {
		if f := parsers.ParseFloat(s); f != nil {
			return *f, true
		}
	}
	return 0, false
}
