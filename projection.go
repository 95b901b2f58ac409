package goform

// BaseKey addresses the form-level entry of an error or warning map.
const BaseKey = "base"

// Messages carries validation text keyed by schema name. A value is either a
// string or, for named composites, nested Messages (or map[string]any).
type Messages map[string]any

// Text returns the string stored under key, or "".
func (m Messages) Text(key string) string {
	s, _ := m[key].(string)
	return s
}

// Sub returns the nested messages stored under key, or nil.
func (m Messages) Sub(key string) Messages {
	switch t := m[key].(type) {
	case Messages:
		return t
	case map[string]any:
		return Messages(t)
	case Data:
		return Messages(t)
	default:
		return nil
	}
}

// LabelOptions is passed to projection callbacks. Path lists the names of the
// enclosing named composites, nearest first: each boundary appends its own
// name after the path reported from below it. Items of a multiple expandable
// contribute only the list's name; the item index is in the element ID.
type LabelOptions struct {
	Path []string
}

// LabelFunc computes the label of a node.
type LabelFunc func(s Schema, data Data, opts LabelOptions) string

// HelperFunc computes the helper text of a node.
type HelperFunc func(s Schema, opts LabelOptions) string

// MessageFunc turns a raw error or warning message into display text. s is
// nil for the form-level banner.
type MessageFunc func(msg string, s Schema) string

// projection threads the caller's callbacks through composite boundaries.
type projection struct {
	label    LabelFunc
	helper   HelperFunc
	errorf   MessageFunc
	warning  MessageFunc
	localize func(string) string
	path     []string
}

// nested wraps the label and helper callbacks so every call made below the
// boundary sees name appended to its path.
func (p projection) nested(name string) projection {
	if name == "" {
		return p
	}
	out := p
	out.path = append(append([]string{}, p.path...), name)
	if p.label != nil {
		inner := p.label
		out.label = func(s Schema, data Data, opts LabelOptions) string {
			return inner(s, data, LabelOptions{Path: append(append([]string{}, opts.Path...), name)})
		}
	}
	if p.helper != nil {
		inner := p.helper
		out.helper = func(s Schema, opts LabelOptions) string {
			return inner(s, LabelOptions{Path: append(append([]string{}, opts.Path...), name)})
		}
	}
	return out
}

func (p projection) labelFor(s Schema, data Data) string {
	if p.label == nil {
		return s.Meta().Name
	}
	return p.label(s, data, LabelOptions{})
}

func (p projection) helperFor(s Schema) string {
	if p.helper == nil {
		return ""
	}
	return p.helper(s, LabelOptions{})
}

func (p projection) errorFor(msg string, s Schema) string {
	if msg == "" {
		return ""
	}
	if p.errorf == nil {
		return msg
	}
	return p.errorf(msg, s)
}

func (p projection) warningFor(msg string, s Schema) string {
	if msg == "" {
		return ""
	}
	if p.warning == nil {
		return msg
	}
	return p.warning(msg, s)
}
