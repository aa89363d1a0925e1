package payload

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("invalid JSON payload")

// Parse decodes a JSON document. A blank document decodes to null.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Null(), nil
	}
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("%w (%d bytes)", ErrInvalidJSON, len(data))
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.IsObject():
		members := make([]Member, 0, 8)
		r.ForEach(func(key, val gjson.Result) bool {
			members = append(members, Member{Key: key.String(), Value: fromResult(val)})
			return true
		})
		return Object(members...)
	case r.IsArray():
		elems := make([]Value, 0, 8)
		r.ForEach(func(_, val gjson.Result) bool {
			elems = append(elems, fromResult(val))
			return true
		})
		return Array(elems...)
	}

	switch r.Type {
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	default:
		return Null()
	}
}
