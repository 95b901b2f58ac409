// Package widget provides the built-in leaf widgets and a basic selector
// renderer. Importing it registers them into goform.DefaultRegistry.
package widget

import (
	"fmt"
	"strings"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
)

// radioLimit is the option count below which select renders as radio buttons.
const radioLimit = 6

func init() {
	Register(goform.DefaultRegistry)
}

// Register installs the built-in widgets and the selector loader into r.
func Register(r *goform.Registry) {
	r.Register(string(goform.KindConstant), Constant{})
	r.Register(string(goform.KindString), String{})
	r.Register(string(goform.KindInteger), Integer{})
	r.Register(string(goform.KindFloat), Float{})
	r.Register(string(goform.KindBoolean), Boolean{})
	r.Register(string(goform.KindSelect), Select{})
	r.Register(string(goform.KindMultiSelect), MultiSelect{})
	r.Register(string(goform.KindPositiveTimePeriodDict), Duration{})
	r.SetSelectorLoader(Selectors)
}

func invalid(format string, args ...any) error {
	return goform.AppendIssues(nil, goform.Issue{
		Code:    goform.CodeInvalidValue,
		Message: i18n.T(goform.CodeInvalidValue, nil),
		Hint:    fmt.Sprintf(format, args...),
	})
}

// blank reports whether raw is empty text; optional fields treat it as a
// request to remove the key.
func blank(raw any) bool {
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func element(typ goform.Kind) *goform.Element {
	return goform.NewElement(goform.ElementTag(string(typ)))
}

// Constant displays a fixed value and accepts no edits.
type Constant struct{}

func (Constant) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindConstant)
	el.ReadOnly = true
	if c, ok := p.Schema.(*goform.ConstantSchema); ok {
		el.Value = c.Value
	}
	return el
}

// String is a text box. The schema's Format becomes the input type.
type String struct{}

func (String) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindString)
	typ := "text"
	if s, ok := p.Schema.(*goform.StringSchema); ok && s.Format != "" {
		typ = s.Format
	}
	el.Attrs = map[string]any{"type": typ}
	if d := p.Schema.Meta().Description; d != nil && d.Suffix != "" {
		el.Attrs["suffix"] = d.Suffix
	}
	return el
}

func (String) Coerce(s goform.Schema, raw any) (any, error) {
	if blank(raw) && !s.Meta().Required {
		return goform.Unset, nil
	}
	switch t := raw.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case bool, int, int64, float64:
		return fmt.Sprint(t), nil
	default:
		return nil, invalid("expected text, got %T", raw)
	}
}

// Integer renders a slider when both bounds are set and a number box
// otherwise.
type Integer struct{}

func (Integer) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindInteger)
	el.Attrs = map[string]any{"mode": "box"}
	if n, ok := p.Schema.(*goform.IntegerSchema); ok {
		if n.ValueMin != nil {
			el.Attrs["min"] = *n.ValueMin
		}
		if n.ValueMax != nil {
			el.Attrs["max"] = *n.ValueMax
		}
		if n.ValueMin != nil && n.ValueMax != nil {
			el.Attrs["mode"] = "slider"
		}
	}
	if d := p.Schema.Meta().Description; d != nil && d.Suffix != "" {
		el.Attrs["suffix"] = d.Suffix
	}
	return el
}

func (Integer) Coerce(s goform.Schema, raw any) (any, error) {
	if blank(raw) && !s.Meta().Required {
		return goform.Unset, nil
	}
	v, ok := goform.ToInt(raw)
	if !ok {
		return nil, invalid("expected a whole number, got %v", raw)
	}
	n, _ := s.(*goform.IntegerSchema)
	if n == nil {
		return v, nil
	}
	slider := n.ValueMin != nil && n.ValueMax != nil
	if n.ValueMin != nil && v < *n.ValueMin {
		if !slider {
			return nil, invalid("must be at least %d", *n.ValueMin)
		}
		v = *n.ValueMin
	}
	if n.ValueMax != nil && v > *n.ValueMax {
		if !slider {
			return nil, invalid("must be at most %d", *n.ValueMax)
		}
		v = *n.ValueMax
	}
	return v, nil
}

// Float is a decimal number box.
type Float struct{}

func (Float) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindFloat)
	el.Attrs = map[string]any{"step": "any"}
	if d := p.Schema.Meta().Description; d != nil && d.Suffix != "" {
		el.Attrs["suffix"] = d.Suffix
	}
	return el
}

func (Float) Coerce(s goform.Schema, raw any) (any, error) {
	if blank(raw) && !s.Meta().Required {
		return goform.Unset, nil
	}
	v, ok := goform.ToFloat(raw)
	if !ok {
		return nil, invalid("expected a number, got %v", raw)
	}
	return v, nil
}

// Boolean is a switch.
type Boolean struct{}

func (Boolean) Render(goform.WidgetProps) *goform.Element {
	return element(goform.KindBoolean)
}

func (Boolean) Coerce(_ goform.Schema, raw any) (any, error) {
	b, ok := goform.AsBool(raw)
	if !ok {
		return nil, invalid("expected true or false, got %v", raw)
	}
	return b, nil
}

type option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

func options(opts []goform.Option, localize func(string) string) []option {
	out := make([]option, len(opts))
	for i, o := range opts {
		label := o.Label
		if label == "" {
			label = fmt.Sprint(o.Value)
		}
		if localize != nil {
			if l := localize(label); l != "" {
				label = l
			}
		}
		out[i] = option{Value: o.Value, Label: label}
	}
	return out
}

// matchOption finds the option whose value (or, failing that, label)
// matches raw.
func matchOption(opts []goform.Option, raw any) (any, bool) {
	key := fmt.Sprint(raw)
	for _, o := range opts {
		if fmt.Sprint(o.Value) == key {
			return o.Value, true
		}
	}
	for _, o := range opts {
		if o.Label != "" && strings.EqualFold(o.Label, key) {
			return o.Value, true
		}
	}
	return nil, false
}

// Select picks one option: radio buttons for short lists, a dropdown
// otherwise.
type Select struct{}

func (Select) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindSelect)
	n, _ := p.Schema.(*goform.SelectSchema)
	var opts []goform.Option
	if n != nil {
		opts = n.Options
	}
	mode := "dropdown"
	if len(opts) < radioLimit {
		mode = "radio"
	}
	el.Attrs = map[string]any{"mode": mode, "options": options(opts, p.LocalizeValue)}
	return el
}

func (Select) Coerce(s goform.Schema, raw any) (any, error) {
	if blank(raw) && !s.Meta().Required {
		return goform.Unset, nil
	}
	n, _ := s.(*goform.SelectSchema)
	if n == nil {
		return raw, nil
	}
	v, ok := matchOption(n.Options, raw)
	if !ok {
		return nil, invalid("%v is not one of the options", raw)
	}
	return v, nil
}

// MultiSelect picks any number of options. Values are stored as a string
// list in option order.
type MultiSelect struct{}

func (MultiSelect) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindMultiSelect)
	n, _ := p.Schema.(*goform.MultiSelectSchema)
	var opts []goform.Option
	if n != nil {
		opts = n.Options
	}
	el.Attrs = map[string]any{"options": options(opts, p.LocalizeValue)}
	return el
}

func (MultiSelect) Coerce(s goform.Schema, raw any) (any, error) {
	var picked []any
	switch t := raw.(type) {
	case []string:
		for _, v := range t {
			picked = append(picked, v)
		}
	case []any:
		picked = t
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				picked = append(picked, part)
			}
		}
	default:
		return nil, invalid("expected a list, got %T", raw)
	}
	n, _ := s.(*goform.MultiSelectSchema)
	if n == nil {
		out := make([]string, len(picked))
		for i, v := range picked {
			out[i] = fmt.Sprint(v)
		}
		return out, nil
	}
	chosen := map[string]bool{}
	for _, v := range picked {
		ov, ok := matchOption(n.Options, v)
		if !ok {
			return nil, invalid("%v is not one of the options", v)
		}
		chosen[fmt.Sprint(ov)] = true
	}
	out := []string{}
	for _, o := range n.Options {
		if k := fmt.Sprint(o.Value); chosen[k] {
			out = append(out, k)
		}
	}
	if len(out) == 0 && !s.Meta().Required {
		return goform.Unset, nil
	}
	return out, nil
}

// Duration edits a positive_time_period_dict.
type Duration struct{}

func (Duration) Render(p goform.WidgetProps) *goform.Element {
	el := element(goform.KindPositiveTimePeriodDict)
	ms := false
	if n, ok := p.Schema.(*goform.DurationSchema); ok {
		ms = n.EnableMillisecond
	}
	el.Attrs = map[string]any{"enable_millisecond": ms}
	if d, ok := goform.AsDuration(p.Value); ok {
		el.Attrs["text"] = d.String()
	}
	return el
}

func (Duration) Coerce(s goform.Schema, raw any) (any, error) {
	if blank(raw) && !s.Meta().Required {
		return goform.Unset, nil
	}
	d, ok := goform.AsDuration(raw)
	if !ok {
		return nil, invalid("expected H:MM:SS or {hours, minutes, seconds}, got %v", raw)
	}
	if d.Hours < 0 || d.Minutes < 0 || d.Seconds < 0 || d.Milliseconds < 0 {
		return nil, invalid("duration must not be negative")
	}
	if n, ok := s.(*goform.DurationSchema); ok && !n.EnableMillisecond {
		d.Milliseconds = 0
	}
	return d, nil
}
