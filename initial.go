package goform

// ComputeInitialData synthesizes a data object for schema when none exists
// yet. For every top-level node, in order: the suggested value, else the
// default, else nothing unless the node is required, in which case the
// type's zero value is used.
//
// Composite nodes are not defaulted recursively. Callers run it again scoped
// to a sub-schema when a new repetition or dictionary is created.
func ComputeInitialData(schema []Schema) Data {
	data := Data{}
	for _, s := range schema {
		if s == nil {
			continue
		}
		m := s.Meta()
		if m.Name == "" {
			continue
		}
		if m.Description != nil && m.Description.SuggestedValue != nil {
			data[m.Name] = m.Description.SuggestedValue
			continue
		}
		if m.Default != nil {
			data[m.Name] = m.Default
			continue
		}
		if !m.Required {
			continue
		}
		if v, ok := zeroValue(s); ok {
			data[m.Name] = v
		}
	}
	return data
}

func zeroValue(s Schema) (any, bool) {
	switch n := s.(type) {
	case *BooleanSchema:
		return false, true
	case *StringSchema:
		return "", true
	case *IntegerSchema:
		if n.ValueMin != nil {
			return *n.ValueMin, true
		}
		return 0, true
	case *FloatSchema:
		return 0.0, true
	case *ConstantSchema:
		return n.Value, n.Value != nil
	case *SelectSchema:
		if len(n.Options) == 0 {
			return nil, false
		}
		return n.Options[0].Value, true
	case *DurationSchema:
		return Duration{}, true
	case *SelectorSchema:
		return selectorZero(n.Selector)
	default:
		return nil, false
	}
}

// selectorZero mirrors the selector subsystem's own defaults for the
// selector kinds whose empty value is unambiguous.
func selectorZero(sel map[string]any) (any, bool) {
	multiple := func(cfg any) bool {
		m, _ := cfg.(map[string]any)
		b, _ := m["multiple"].(bool)
		return b
	}
	for _, kind := range []string{"device", "entity", "area", "floor", "label"} {
		if cfg, ok := sel[kind]; ok {
			if multiple(cfg) {
				return []string{}, true
			}
			return "", true
		}
	}
	if _, ok := sel["boolean"]; ok {
		return false, true
	}
	if _, ok := sel["text"]; ok {
		return "", true
	}
	if _, ok := sel["icon"]; ok {
		return "", true
	}
	if cfg, ok := sel["number"]; ok {
		m, _ := cfg.(map[string]any)
		if v, ok := ToFloat(m["min"]); ok {
			if i, ok := ToInt(v); ok {
				return i, true
			}
			return v, true
		}
		return 0, true
	}
	if cfg, ok := sel["select"]; ok {
		m, _ := cfg.(map[string]any)
		opts, _ := m["options"].([]any)
		if len(opts) == 0 {
			return nil, false
		}
		if om, ok := opts[0].(map[string]any); ok {
			return om["value"], true
		}
		return opts[0], true
	}
	if _, ok := sel["duration"]; ok {
		return Duration{}, true
	}
	if _, ok := sel["time"]; ok {
		return "00:00:00", true
	}
	if _, ok := sel["color_rgb"]; ok {
		return []int{0, 0, 0}, true
	}
	if cfg, ok := sel["color_temp"]; ok {
		m, _ := cfg.(map[string]any)
		if v, ok := ToInt(m["min_mireds"]); ok {
			return v, true
		}
		return 153, true
	}
	for _, kind := range []string{"action", "trigger", "condition"} {
		if _, ok := sel[kind]; ok {
			return []any{}, true
		}
	}
	return nil, false
}
