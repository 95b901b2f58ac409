package source

import goform "github.com/reoring/goform"

// object is a decoded mapping that remembers its key order. The decoders
// produce it internally; DecodeDocument lowers it to map[string]any, while
// schema loading reads the order for option maps.
type object struct {
	keys []string
	vals map[string]any
}

func newObject(n int) *object {
	return &object{keys: make([]string, 0, n), vals: make(map[string]any, n)}
}

func (o *object) has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

func (o *object) set(key string, v any) {
	if !o.has(key) {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// lower replaces every object in v with a plain map[string]any.
func lower(v any) any {
	switch t := v.(type) {
	case *object:
		out := make(map[string]any, len(t.vals))
		for k, vv := range t.vals {
			out[k] = lower(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = lower(t[i])
		}
		return out
	default:
		return v
	}
}

// lookup follows an RFC 6901 pointer through decoded objects and arrays.
func lookup(v any, pointer string) (any, bool) {
	for _, seg := range goform.ParsePointer(pointer).Segments() {
		o, ok := v.(*object)
		if !ok {
			return nil, false
		}
		if v, ok = o.vals[seg]; !ok {
			return nil, false
		}
	}
	return v, true
}
