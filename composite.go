package goform

import (
	"strconv"

	"github.com/reoring/goform/i18n"
)

// TagColumnCell wraps one column of a column node.
const TagColumnCell = "form-column-cell"

func (in *instance) grid(n *GridSchema) *Element {
	if len(n.Schema) == 0 {
		return nil
	}
	el := in.container(TagGrid, n)
	if n.ColumnMinWidth != "" {
		el.Attrs = map[string]any{"column_min_width": n.ColumnMinWidth}
	}
	sub := in.descend(n)
	el.Children = append(el.Children, sub.bannerOnce()...)
	// Each node gets its own engine instance over the grid's data object so
	// it reports disabled and validation state on its own.
	for _, item := range n.Schema {
		if item == nil {
			continue
		}
		cell := *sub
		if c := cell.node(item); c != nil {
			el.Children = append(el.Children, c)
		}
	}
	return el
}

// bannerOnce returns the instance's banners and switches them off so the
// caller can fan out sibling instances without repeating them.
func (in *instance) bannerOnce() []*Element {
	if !in.banner {
		return nil
	}
	in.banner = false
	return in.banners()
}

func (in *instance) expandable(n *ExpandableSchema) *Element {
	el := in.container(TagExpandable, n)
	if n.Title != "" {
		el.Label = n.Title
	}
	if n.Icon != "" {
		el.Attrs = map[string]any{"icon": n.Icon}
	}
	key := stateKey(in.ptr, n, n.Title)
	el.Expanded = in.form.ui.isExpanded(key, n.Expanded)
	ui := &in.form.ui
	expanded := el.Expanded
	el.SetAction(ActionToggle, func() error {
		ui.expanded[key] = !expanded
		return nil
	})
	el.Children = in.descend(n).render(n.Schema)
	return el
}

func (in *instance) expandableList(n *ExpandableSchema) *Element {
	if n.Name == "" {
		return in.marker(n, CodeMissingName, nil)
	}
	el := in.container(TagExpandable, n)
	if n.Title != "" {
		el.Label = n.Title
	}
	el.Attrs = map[string]any{"multiple": true}
	if n.Icon != "" {
		el.Attrs["icon"] = n.Icon
	}
	listPtr := in.ptr.Field(n.Name)
	list := listPtr.Pointer()
	entries := listEntries(in.data[n.Name])
	ui := &in.form.ui
	keys := ui.itemKeys(list, len(entries))
	disabled := el.Disabled
	errs := in.errors.Sub(n.Name)
	warns := in.warnings.Sub(n.Name)
	replace := func(next []any) { in.childChanged(n, dataList(next)) }

	for i, entry := range entries {
		i := i
		idx := strconv.Itoa(i)
		itemPtr := listPtr.Index(i)
		item, isObject := AsData(entry)
		if !isObject {
			item = Data{}
		}
		itemEl := &Element{
			ID:       itemPtr.Pointer(),
			Tag:      TagExpandableItem,
			Kind:     KindExpandable,
			Schema:   n,
			Name:     n.Name,
			Path:     in.path(),
			Key:      keys[i],
			Label:    i18n.T("ui.item", map[string]string{"index": strconv.Itoa(i + 1)}),
			Error:    in.proj.errorFor(errs.Text(idx), n),
			Disabled: disabled,
			Expanded: ui.isExpanded(keys[i], n.Expanded),
			Attrs:    map[string]any{"index": i},
		}
		if !isObject {
			msg := i18n.T(CodeInvalidValue, nil)
			if itemEl.Error == "" {
				itemEl.Error = msg
			}
			itemEl.Issues = AppendIssues(nil, itemPtr.Issue(CodeInvalidValue, msg))
		}
		sub := &instance{
			form:     in.form,
			ptr:      itemPtr,
			data:     item,
			errors:   errs.Sub(idx),
			warnings: warns.Sub(idx),
			disabled: disabled,
			proj:     in.proj.nested(n.Name),
			scope:    map[string]bool{},
			banner:   true,
			emit: func(d Data) {
				next := append([]any(nil), entries...)
				next[i] = d
				replace(next)
			},
		}
		itemEl.Children = sub.render(n.Schema)
		itemKey := keys[i]
		itemExpanded := itemEl.Expanded
		itemEl.SetAction(ActionToggle, func() error {
			ui.expanded[itemKey] = !itemExpanded
			return nil
		})
		if !disabled {
			itemEl.SetAction(ActionRemove, func() error {
				next := make([]any, 0, len(entries)-1)
				next = append(next, entries[:i]...)
				next = append(next, entries[i+1:]...)
				ui.removeKey(list, i)
				replace(next)
				return nil
			})
		}
		el.Children = append(el.Children, itemEl)
	}
	if !disabled {
		el.SetAction(ActionAdd, func() error {
			next := make([]any, len(entries), len(entries)+1)
			copy(next, entries)
			next = append(next, ComputeInitialData(n.Schema))
			ui.appendKey(list)
			replace(next)
			return nil
		})
	}
	return el
}

// visible evaluates the predicate against the whole ambient object. A
// panicking predicate propagates to the caller.
func (in *instance) visible(n *ConditionalSchema) bool {
	if n.Condition == nil {
		return true
	}
	data := in.data
	if data == nil {
		data = Data{}
	}
	return n.Condition(data)
}

func (in *instance) conditional(n *ConditionalSchema) *Element {
	el := in.container(TagConditional, n)
	el.Children = in.descend(n).render(n.Schema)
	return el
}

func (in *instance) dictionary(n *DictionarySchema) *Element {
	if n.Name == "" {
		return in.marker(n, CodeMissingName, nil)
	}
	el := in.container(TagDictionary, n)
	present := in.data.Has(n.Name)
	if n.Optional {
		toggle := &Element{
			ID:       in.ptr.Field(n.Name).Pointer() + "#toggle",
			Tag:      TagDictionaryToggle,
			Kind:     KindBoolean,
			Schema:   n,
			Name:     n.Name,
			Path:     in.path(),
			Label:    el.Label,
			Helper:   i18n.T("ui.enabled", nil),
			Disabled: el.Disabled,
			Value:    present,
		}
		toggle.coerce = func(v any) (any, error) {
			b, ok := AsBool(v)
			if !ok {
				return nil, AppendIssues(nil, Issue{Path: toggle.ID, Code: CodeInvalidValue, Message: i18n.T(CodeInvalidValue, nil)})
			}
			return b, nil
		}
		toggle.emit = func(v any) {
			on, _ := v.(bool)
			if on == present {
				return
			}
			if on {
				in.childChanged(n, ComputeInitialData(n.Schema))
				return
			}
			in.childChanged(n, Unset)
		}
		el.Children = append(el.Children, toggle)
		if !present {
			return el
		}
	}
	el.Children = append(el.Children, in.descend(n).render(n.Schema)...)
	return el
}

func (in *instance) column(n *ColumnSchema) *Element {
	el := in.container(TagColumn, n)
	sub := in.descend(n)
	el.Children = append(el.Children, sub.bannerOnce()...)
	for ci, col := range n.Columns {
		cell := &Element{ID: sub.ptr.Pointer(), Tag: TagColumnCell, Attrs: map[string]any{"column": ci}}
		cell.Children = sub.render(col)
		el.Children = append(el.Children, cell)
	}
	return el
}
