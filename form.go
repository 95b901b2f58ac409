package goform

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reoring/goform/i18n"
)

// Options configures a Form. When several are passed to New the last one
// wins.
type Options struct {
	// Registry resolves leaf widgets and selector support. Defaults to
	// DefaultRegistry.
	Registry *Registry
	// Logger receives debug records about unsupported nodes and selector
	// loading. Defaults to slog.Default().
	Logger *slog.Logger
}

// Props is the input of one render pass.
type Props struct {
	Schema   []Schema
	Data     Data
	Error    Messages
	Warning  Messages
	Disabled bool

	ComputeLabel   LabelFunc
	ComputeHelper  HelperFunc
	ComputeError   MessageFunc
	ComputeWarning MessageFunc
	LocalizeValue  func(string) string

	// OnChange receives the complete next data object, once per edit.
	OnChange func(Data)
}

// Form renders schemas into Element trees. Besides its options it keeps the
// presentational state that must survive re-renders: which panels are
// expanded and the identity key of every repeated item. A Form is not safe for
// concurrent use.
type Form struct {
	reg *Registry
	log *slog.Logger
	ui  uiState
}

// New returns a Form.
func New(opts ...Options) *Form {
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Registry == nil {
		o.Registry = DefaultRegistry
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Form{
		reg: o.Registry,
		log: o.Logger,
		ui:  uiState{keys: map[string][]string{}, expanded: map[string]bool{}},
	}
}

// Registry returns the registry the form dispatches through.
func (f *Form) Registry() *Registry { return f.reg }

// Render builds the element tree for p. It never calls p.OnChange; changes
// flow only from Element.Change and Element.Do.
func (f *Form) Render(p Props) *Element {
	if ContainsSelector(p.Schema) {
		if _, err := f.reg.Selectors(); err != nil {
			f.log.Debug("selector support unavailable", slog.Any("err", err))
		} else {
			f.log.Debug("selector support ready", slog.Int("loads", f.reg.SelectorLoads()))
		}
	}
	data := p.Data
	if data == nil {
		data = Data{}
	}
	root := &Element{ID: RootPath().Pointer(), Tag: TagForm, Disabled: p.Disabled}
	in := &instance{
		form:     f,
		ptr:      RootPath(),
		data:     data,
		errors:   p.Error,
		warnings: p.Warning,
		disabled: p.Disabled,
		proj: projection{
			label:    p.ComputeLabel,
			helper:   p.ComputeHelper,
			errorf:   p.ComputeError,
			warning:  p.ComputeWarning,
			localize: p.LocalizeValue,
		},
		scope:  map[string]bool{},
		banner: true,
		emit: func(next Data) {
			if p.OnChange != nil {
				p.OnChange(next)
			}
		},
	}
	root.Children = in.render(p.Schema)
	return root
}

// Focus marks the first focusable element below root.
func (f *Form) Focus(root *Element) *Element { return root.Focus() }

// ResetState forgets expand/collapse state and item keys.
func (f *Form) ResetState() {
	f.ui = uiState{keys: map[string][]string{}, expanded: map[string]bool{}}
}

type uiState struct {
	keys     map[string][]string // list pointer -> one key per item
	expanded map[string]bool     // state key -> expanded
}

// itemKeys returns one stable key per list item, growing or shrinking the
// stored keys to n.
func (u *uiState) itemKeys(list string, n int) []string {
	keys := u.keys[list]
	for len(keys) < n {
		keys = append(keys, uuid.NewString())
	}
	for _, k := range keys[n:] {
		delete(u.expanded, k)
	}
	keys = keys[:n]
	u.keys[list] = keys
	return append([]string(nil), keys...)
}

func (u *uiState) appendKey(list string) {
	u.keys[list] = append(u.keys[list], uuid.NewString())
}

func (u *uiState) removeKey(list string, i int) {
	keys := u.keys[list]
	if i < 0 || i >= len(keys) {
		return
	}
	delete(u.expanded, keys[i])
	u.keys[list] = append(keys[:i:i], keys[i+1:]...)
}

func (u *uiState) isExpanded(key string, def bool) bool {
	if v, ok := u.expanded[key]; ok {
		return v
	}
	return def
}

// instance is one level of the recursive engine: a schema list rendered
// against one data object.
type instance struct {
	form     *Form
	ptr      PathRef
	data     Data
	errors   Messages
	warnings Messages
	disabled bool
	proj     projection
	scope    map[string]bool // names claimed in this data object
	banner   bool
	emit     func(Data)
}

func (in *instance) render(schema []Schema) []*Element {
	var out []*Element
	if in.banner {
		out = append(out, in.banners()...)
	}
	for _, s := range schema {
		if s == nil {
			continue
		}
		if el := in.node(s); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (in *instance) banners() []*Element {
	var out []*Element
	if msg := in.proj.errorFor(in.errors.Text(BaseKey), nil); msg != "" {
		out = append(out, &Element{ID: in.ptr.Pointer(), Tag: TagErrorBanner, Error: msg})
	}
	if msg := in.proj.warningFor(in.warnings.Text(BaseKey), nil); msg != "" {
		out = append(out, &Element{ID: in.ptr.Pointer(), Tag: TagWarningBanner, Warning: msg})
	}
	return out
}

func (in *instance) node(s Schema) *Element {
	if c, ok := s.(*ConditionalSchema); ok && !in.visible(c) {
		return nil
	}
	if !Transparent(s) {
		name := s.Meta().Name
		if in.scope[name] {
			return in.marker(s, CodeDuplicateName, map[string]string{"name": name})
		}
		in.scope[name] = true
	}
	switch n := s.(type) {
	case *GridSchema:
		return in.grid(n)
	case *ExpandableSchema:
		if n.Multiple {
			return in.expandableList(n)
		}
		return in.expandable(n)
	case *ConditionalSchema:
		return in.conditional(n)
	case *DictionarySchema:
		return in.dictionary(n)
	case *ColumnSchema:
		return in.column(n)
	case *SelectorSchema:
		return in.selector(n)
	default:
		return in.leaf(s)
	}
}

// childChanged is the aggregation point: a child reports its new value and
// the instance emits its own complete data object exactly once.
func (in *instance) childChanged(s Schema, v any) {
	var next Data
	switch {
	case Transparent(s):
		d, ok := AsData(v)
		if !ok {
			in.form.log.Debug("dropping non-object change from transparent node", slog.String("kind", string(s.Kind())))
			return
		}
		next = d
	case IsUnset(v):
		next = in.data.Without(s.Meta().Name)
	default:
		next = in.data.With(s.Meta().Name, v)
	}
	in.emit(next)
}

func (in *instance) leaf(s Schema) *Element {
	m := s.Meta()
	typ := string(s.Kind())
	w, ok := in.form.reg.Lookup(typ)
	if !ok {
		return in.marker(s, CodeUnsupportedType, nil)
	}
	disabled := in.disabled || m.Disabled
	value := in.data[m.Name]
	el := w.Render(WidgetProps{
		Schema:        s,
		Value:         value,
		Label:         in.proj.labelFor(s, in.data),
		Helper:        in.proj.helperFor(s),
		Disabled:      disabled,
		Path:          in.path(),
		LocalizeValue: in.proj.localize,
	})
	if el == nil {
		el = NewElement(ElementTag(typ))
	}
	in.decorate(el, s, value, disabled)
	if m.Name != "" {
		el.emit = func(v any) { in.childChanged(s, v) }
		if c, ok := w.(Coercer); ok {
			el.coerce = func(v any) (any, error) { return c.Coerce(s, v) }
		}
	}
	return el
}

func (in *instance) selector(n *SelectorSchema) *Element {
	r, err := in.form.reg.Selectors()
	if err != nil || r == nil {
		return in.marker(n, CodeSelectorUnavailable, nil)
	}
	disabled := in.disabled || n.Disabled
	value := in.data[n.Name]
	el := r.RenderSelector(SelectorProps{
		Schema:        n,
		Value:         value,
		Label:         in.proj.labelFor(n, in.data),
		Helper:        in.proj.helperFor(n),
		Required:      n.Required,
		Disabled:      disabled,
		Path:          in.path(),
		LocalizeValue: in.proj.localize,
	})
	if el == nil {
		el = NewElement(TagSelector)
	}
	in.decorate(el, n, value, disabled)
	if n.Name != "" {
		el.emit = func(v any) { in.childChanged(n, v) }
		if c, ok := r.(Coercer); ok {
			el.coerce = func(v any) (any, error) { return c.Coerce(n, v) }
		}
	}
	return el
}

// decorate fills the engine-owned fields of a widget's element.
func (in *instance) decorate(el *Element, s Schema, value any, disabled bool) {
	m := s.Meta()
	el.ID = in.ptr.Field(m.Name).Pointer()
	if el.Tag == "" {
		el.Tag = ElementTag(string(s.Kind()))
	}
	el.Kind = s.Kind()
	el.Schema = s
	el.Name = m.Name
	el.Path = in.path()
	if el.Label == "" {
		el.Label = in.proj.labelFor(s, in.data)
	}
	if el.Helper == "" {
		el.Helper = in.proj.helperFor(s)
	}
	el.Error = in.proj.errorFor(in.errors.Text(m.Name), s)
	el.Warning = in.proj.warningFor(in.warnings.Text(m.Name), s)
	el.Required = m.Required
	el.Disabled = el.Disabled || disabled
	if el.Value == nil {
		el.Value = value
	}
}

// marker renders a caller error in place of the node.
func (in *instance) marker(s Schema, code string, params map[string]string) *Element {
	m := s.Meta()
	ptr := in.ptr.Field(m.Name)
	typ := string(s.Kind())
	data := map[string]string{"type": typ, "name": m.Name, "path": ptr.Pointer()}
	for k, v := range params {
		data[k] = v
	}
	msg := i18n.T(code, data)
	in.form.log.Debug("rendering unsupported marker",
		slog.String("code", code),
		slog.String("type", typ),
		slog.String("path", ptr.Pointer()))
	return &Element{
		ID:     ptr.Pointer(),
		Tag:    TagUnsupported,
		Kind:   s.Kind(),
		Schema: s,
		Name:   m.Name,
		Path:   in.path(),
		Label:  in.proj.labelFor(s, in.data),
		Error:  msg,
		Attrs:  map[string]any{"code": code, "type": typ},
		Issues: AppendIssues(nil, ptr.Issue(code, msg, "type", typ)),
	}
}

// container returns the wrapper element of a composite node.
func (in *instance) container(tag string, s Schema) *Element {
	m := s.Meta()
	return &Element{
		ID:       in.ptr.Field(m.Name).Pointer(),
		Tag:      tag,
		Kind:     s.Kind(),
		Schema:   s,
		Name:     m.Name,
		Path:     in.path(),
		Label:    in.proj.labelFor(s, in.data),
		Helper:   in.proj.helperFor(s),
		Error:    in.proj.errorFor(in.errors.Text(m.Name), s),
		Warning:  in.proj.warningFor(in.warnings.Text(m.Name), s),
		Required: m.Required,
		Disabled: in.disabled || m.Disabled,
	}
}

// descend returns the engine instance a composite renders its children
// with. Transparent composites share this instance's data object and name
// scope; named ones nest under their key.
func (in *instance) descend(s Schema) *instance {
	m := s.Meta()
	sub := &instance{
		form:     in.form,
		disabled: in.disabled || m.Disabled,
		proj:     in.proj.nested(m.Name),
		emit:     func(d Data) { in.childChanged(s, d) },
	}
	if Transparent(s) {
		sub.ptr = in.ptr
		sub.data = in.data
		sub.errors = in.errors
		sub.warnings = in.warnings
		sub.scope = in.scope
		return sub
	}
	sub.ptr = in.ptr.Field(m.Name)
	sub.data, _ = AsData(in.data[m.Name])
	sub.errors = in.errors.Sub(m.Name)
	sub.warnings = in.warnings.Sub(m.Name)
	sub.scope = map[string]bool{}
	sub.banner = true
	return sub
}

func (in *instance) path() []string {
	if len(in.proj.path) == 0 {
		return nil
	}
	return append([]string(nil), in.proj.path...)
}

// stateKey identifies a panel for expand/collapse state.
func stateKey(ptr PathRef, s Schema, title string) string {
	id := s.Meta().Name
	if id == "" {
		id = title
	}
	return ptr.Pointer() + "#" + strings.ToLower(id)
}
