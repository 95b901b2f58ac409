package widget

import (
	"fmt"
	"sort"

	goform "github.com/reoring/goform"
)

// Selectors is the goform.SelectorLoader for the basic selector renderer.
func Selectors() (goform.SelectorRenderer, error) {
	return basicSelectors{}, nil
}

// basicSelectors renders each selector as a typed input described by its
// configuration. It coerces the scalar kinds and passes the rest through.
type basicSelectors struct{}

// SelectorKind returns the selector's kind: the first key of the selector
// object in sorted order, or "".
func SelectorKind(sel map[string]any) string {
	if len(sel) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func (basicSelectors) RenderSelector(p goform.SelectorProps) *goform.Element {
	kind := SelectorKind(p.Schema.Selector)
	el := goform.NewElement(goform.TagSelector + "-" + kind)
	cfg, _ := p.Schema.Selector[kind].(map[string]any)
	el.Attrs = map[string]any{"selector": kind}
	for k, v := range cfg {
		el.Attrs[k] = v
	}
	return el
}

func (basicSelectors) Coerce(s goform.Schema, raw any) (any, error) {
	n, ok := s.(*goform.SelectorSchema)
	if !ok {
		return raw, nil
	}
	kind := SelectorKind(n.Selector)
	cfg, _ := n.Selector[kind].(map[string]any)
	switch kind {
	case "boolean":
		return Boolean{}.Coerce(s, raw)
	case "number":
		if blank(raw) && !n.Required {
			return goform.Unset, nil
		}
		f, ok := goform.ToFloat(raw)
		if !ok {
			return nil, invalid("expected a number, got %v", raw)
		}
		if lo, ok := goform.ToFloat(cfg["min"]); ok && f < lo {
			f = lo
		}
		if hi, ok := goform.ToFloat(cfg["max"]); ok && f > hi {
			f = hi
		}
		if i, ok := goform.ToInt(f); ok {
			return i, nil
		}
		return f, nil
	case "text", "icon", "time":
		if blank(raw) && !n.Required {
			return goform.Unset, nil
		}
		if str, ok := raw.(string); ok {
			return str, nil
		}
		return nil, invalid("expected text, got %T", raw)
	case "duration":
		return Duration{}.Coerce(&goform.DurationSchema{Base: n.Base}, raw)
	case "select":
		opts, _ := cfg["options"].([]any)
		for _, o := range opts {
			v := o
			if m, ok := o.(map[string]any); ok {
				v = m["value"]
			}
			if fmt.Sprint(v) == fmt.Sprint(raw) {
				return v, nil
			}
		}
		if len(opts) == 0 {
			return raw, nil
		}
		return nil, invalid("%v is not one of the options", raw)
	default:
		return raw, nil
	}
}
