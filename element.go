package goform

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Element tags emitted by the engine itself. Leaf widgets use
// ElementTag(type).
const (
	TagForm             = "form"
	TagErrorBanner      = "form-error-banner"
	TagWarningBanner    = "form-warning-banner"
	TagUnsupported      = "form-unsupported"
	TagGrid             = "form-grid"
	TagExpandable       = "form-expandable"
	TagExpandableItem   = "form-expandable-item"
	TagConditional      = "form-conditional"
	TagDictionary       = "form-dictionary"
	TagDictionaryToggle = "form-dictionary-toggle"
	TagColumn           = "form-column"
	TagSelector         = "form-selector"
)

// Action names understood by Element.Do.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionToggle = "toggle"
)

// Element is one node of a rendered form. ID is the JSON Pointer of the data
// the element reads; transparent wrappers share their parent's ID.
type Element struct {
	ID       string         `json:"id"`
	Tag      string         `json:"tag"`
	Kind     Kind           `json:"kind,omitempty"`
	Schema   Schema         `json:"-"`
	Name     string         `json:"name,omitempty"`
	Path     []string       `json:"path,omitempty"`
	Label    string         `json:"label,omitempty"`
	Helper   string         `json:"helper,omitempty"`
	Error    string         `json:"error,omitempty"`
	Warning  string         `json:"warning,omitempty"`
	Required bool           `json:"required,omitempty"`
	Disabled bool           `json:"disabled,omitempty"`
	ReadOnly bool           `json:"readonly,omitempty"`
	Focused  bool           `json:"focused,omitempty"`
	Expanded bool           `json:"expanded,omitempty"`
	Key      string         `json:"key,omitempty"`
	Value    any            `json:"value,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []*Element     `json:"children,omitempty"`
	Issues   Issues         `json:"-"`

	emit    func(any)
	coerce  func(any) (any, error)
	actions map[string]func() error
}

// NewElement returns an element with the given tag. Widgets use it to build
// their output; the engine fills in ID, label and change wiring afterwards.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// SetAction installs a named action.
func (e *Element) SetAction(name string, fn func() error) {
	if e.actions == nil {
		e.actions = map[string]func() error{}
	}
	e.actions[name] = fn
}

// Editable reports whether Change is wired for this element.
func (e *Element) Editable() bool {
	return e != nil && e.emit != nil && !e.Disabled && !e.ReadOnly
}

// Change submits a new value for the element. The value passes through the
// widget's Coercer, then the change is aggregated up to the form's OnChange.
// Passing Unset removes the key.
func (e *Element) Change(v any) error {
	if e == nil {
		return singleIssue("", CodeNotFound, "element not found")
	}
	if e.emit == nil || e.ReadOnly {
		return singleIssue(e.ID, CodeNotEditable, "element does not accept values")
	}
	if e.Disabled {
		return singleIssue(e.ID, CodeDisabled, "element is disabled")
	}
	if !IsUnset(v) && e.coerce != nil {
		nv, err := e.coerce(v)
		if err != nil {
			if iss, ok := AsIssues(err); ok {
				out := append(Issues(nil), iss...)
				for i := range out {
					if out[i].Path == "" {
						out[i].Path = e.ID
					}
				}
				return out
			}
			return AppendIssues(nil, Issue{Path: e.ID, Code: CodeInvalidValue, Message: err.Error(), Cause: err})
		}
		v = nv
	}
	e.emit(v)
	return nil
}

// Do runs a named action such as ActionAdd on a repeatable group.
func (e *Element) Do(action string) error {
	if e == nil {
		return singleIssue("", CodeNotFound, "element not found")
	}
	fn, ok := e.actions[action]
	if !ok {
		return AppendIssues(nil, Issue{Path: e.ID, Code: CodeUnknownAction, Message: "unknown action " + action, Params: map[string]any{"action": action}})
	}
	return fn()
}

// Actions lists the actions available on the element.
func (e *Element) Actions() []string {
	if e == nil || len(e.actions) == 0 {
		return nil
	}
	out := make([]string, 0, len(e.actions))
	for k := range e.actions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Walk visits e and its descendants depth-first. Returning false from fn
// skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Find returns the element with the given ID. Wrappers may share an ID with
// their content; an element that accepts values or actions wins.
func (e *Element) Find(id string) *Element {
	var first, live *Element
	e.Walk(func(c *Element) bool {
		if c.ID != id {
			return true
		}
		if first == nil {
			first = c
		}
		if live == nil && (c.emit != nil || len(c.actions) > 0) {
			live = c
		}
		return true
	})
	if live != nil {
		return live
	}
	return first
}

// Focus marks the first focusable descendant that is not a banner and
// returns it, or nil.
func (e *Element) Focus() *Element {
	var target *Element
	e.Walk(func(c *Element) bool {
		c.Focused = false
		return true
	})
	e.Walk(func(c *Element) bool {
		if target != nil {
			return false
		}
		if c.Tag == TagErrorBanner || c.Tag == TagWarningBanner {
			return false
		}
		if c.focusable() {
			target = c
			return false
		}
		return true
	})
	if target != nil {
		target.Focused = true
	}
	return target
}

func (e *Element) focusable() bool {
	if e.Disabled {
		return false
	}
	return (e.emit != nil && !e.ReadOnly) || len(e.actions) > 0
}

// MarshalJSON includes the action list so remote clients can offer them.
func (e *Element) MarshalJSON() ([]byte, error) {
	type plain Element
	return json.Marshal(struct {
		*plain
		Actions []string `json:"actions,omitempty"`
	}{plain: (*plain)(e), Actions: e.Actions()})
}
