package goform

import (
	"errors"
	"sort"
	"sync"
)

// WidgetProps is what the dispatcher hands a leaf widget.
type WidgetProps struct {
	Schema        Schema
	Value         any // the current value under the node's name, nil when absent
	Label         string
	Helper        string
	Disabled      bool
	Path          []string
	LocalizeValue func(string) string
}

// Widget renders one leaf node.
type Widget interface {
	Render(p WidgetProps) *Element
}

// WidgetFunc adapts a function to Widget.
type WidgetFunc func(p WidgetProps) *Element

func (f WidgetFunc) Render(p WidgetProps) *Element { return f(p) }

// Coercer is implemented by widgets that normalize raw edit input (for
// example "42" from a text box) into the node's value type. Returning Unset
// removes the key.
type Coercer interface {
	Coerce(s Schema, raw any) (any, error)
}

// SelectorProps is what the dispatcher hands the selector renderer. Unlike
// WidgetProps it carries Required, since selector widgets decide their own
// empty state.
type SelectorProps struct {
	Schema        *SelectorSchema
	Value         any
	Label         string
	Helper        string
	Required      bool
	Disabled      bool
	Path          []string
	LocalizeValue func(string) string
}

// SelectorRenderer renders selector nodes.
type SelectorRenderer interface {
	RenderSelector(p SelectorProps) *Element
}

// SelectorLoader produces the selector renderer. It runs at most once per
// Registry unless the loader is replaced or reset.
type SelectorLoader func() (SelectorRenderer, error)

// ErrNoSelectorLoader is returned by Selectors when nothing was configured.
var ErrNoSelectorLoader = errors.New("goform: no selector loader configured")

// Registry maps type tags to widgets and owns the one-time selector latch.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget

	sel selectorLatch
}

type selectorLatch struct {
	mu       sync.Mutex
	loader   SelectorLoader
	loaded   bool
	renderer SelectorRenderer
	err      error
	loads    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{widgets: map[string]Widget{}}
}

// DefaultRegistry is used by forms created without an explicit Registry.
// Importing github.com/reoring/goform/widget fills it with the built-ins.
var DefaultRegistry = NewRegistry()

// Register binds w to a type tag, replacing any previous binding.
func (r *Registry) Register(typ string, w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.widgets == nil {
		r.widgets = map[string]Widget{}
	}
	r.widgets[typ] = w
}

// Lookup returns the widget bound to typ.
func (r *Registry) Lookup(typ string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[typ]
	return w, ok
}

// Types lists the registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.widgets))
	for k := range r.widgets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetSelectorLoader installs the selector loader and clears any previous
// result so the next Selectors call loads again.
func (r *Registry) SetSelectorLoader(l SelectorLoader) {
	r.sel.mu.Lock()
	defer r.sel.mu.Unlock()
	r.sel.loader = l
	r.sel.loaded = false
	r.sel.renderer = nil
	r.sel.err = nil
}

// ResetSelectors forgets the latched result, keeping the loader.
func (r *Registry) ResetSelectors() {
	r.sel.mu.Lock()
	defer r.sel.mu.Unlock()
	r.sel.loaded = false
	r.sel.renderer = nil
	r.sel.err = nil
}

// Selectors returns the selector renderer, running the loader on first use.
// The outcome, failure included, is latched: later calls return the same
// result without invoking the loader again.
func (r *Registry) Selectors() (SelectorRenderer, error) {
	r.sel.mu.Lock()
	defer r.sel.mu.Unlock()
	if r.sel.loaded {
		return r.sel.renderer, r.sel.err
	}
	if r.sel.loader == nil {
		return nil, ErrNoSelectorLoader
	}
	r.sel.loads++
	r.sel.renderer, r.sel.err = r.sel.loader()
	r.sel.loaded = true
	return r.sel.renderer, r.sel.err
}

// SelectorsLoaded reports whether the latch has fired.
func (r *Registry) SelectorsLoaded() bool {
	r.sel.mu.Lock()
	defer r.sel.mu.Unlock()
	return r.sel.loaded
}

// SelectorLoads returns how many times the loader has run.
func (r *Registry) SelectorLoads() int {
	r.sel.mu.Lock()
	defer r.sel.mu.Unlock()
	return r.sel.loads
}

// Register binds w in DefaultRegistry.
func Register(typ string, w Widget) { DefaultRegistry.Register(typ, w) }

// ElementTag returns the element tag used for a widget type.
func ElementTag(typ string) string { return "form-" + typ }
