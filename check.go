package goform

import (
	"github.com/reoring/goform/i18n"
)

// Check reports schema problems the renderer would otherwise only surface
// as markers: types with no registered widget, names used twice in one data
// object, and repeatable groups or dictionaries without a name. Branches of
// conditionals are checked as if visible.
func (f *Form) Check(schema []Schema) Issues {
	var out Issues
	f.check(schema, RootPath(), map[string]bool{}, &out)
	return out
}

func (f *Form) check(schema []Schema, at PathRef, scope map[string]bool, out *Issues) {
	for _, s := range schema {
		if s == nil {
			continue
		}
		m := s.Meta()
		ptr := at.Field(m.Name)
		typ := string(s.Kind())
		if !Transparent(s) {
			if scope[m.Name] {
				*out = AppendIssues(*out, ptr.Issue(CodeDuplicateName, i18n.T(CodeDuplicateName, map[string]string{"name": m.Name}), "name", m.Name))
				continue
			}
			scope[m.Name] = true
		}
		switch n := s.(type) {
		case *ExpandableSchema:
			if n.Multiple {
				if m.Name == "" {
					*out = AppendIssues(*out, ptr.Issue(CodeMissingName, i18n.T(CodeMissingName, map[string]string{"type": typ}), "type", typ))
					continue
				}
				f.check(n.Schema, ptr.Index(0), map[string]bool{}, out)
				continue
			}
			f.check(n.Schema, ptr, childScope(s, scope), out)
		case *DictionarySchema:
			if m.Name == "" {
				*out = AppendIssues(*out, ptr.Issue(CodeMissingName, i18n.T(CodeMissingName, map[string]string{"type": typ}), "type", typ))
				continue
			}
			f.check(n.Schema, ptr, map[string]bool{}, out)
		case *ConditionalSchema:
			// Conditional branches are usually mutually exclusive, so names
			// they claim do not leak back into the shared scope.
			branch := map[string]bool{}
			for k := range scope {
				branch[k] = true
			}
			if !Transparent(s) {
				branch = map[string]bool{}
			}
			f.check(n.Schema, ptr, branch, out)
		case *GridSchema:
			f.check(n.Schema, ptr, childScope(s, scope), out)
		case *ColumnSchema:
			cs := childScope(s, scope)
			for _, col := range n.Columns {
				f.check(col, ptr, cs, out)
			}
		case *SelectorSchema:
			if _, err := f.reg.Selectors(); err != nil {
				*out = AppendIssues(*out, ptr.Issue(CodeSelectorUnavailable, i18n.T(CodeSelectorUnavailable, nil)))
			}
		default:
			if _, ok := f.reg.Lookup(typ); !ok {
				*out = AppendIssues(*out, ptr.Issue(CodeUnsupportedType, i18n.T(CodeUnsupportedType, map[string]string{"type": typ}), "type", typ))
			}
		}
	}
}

func childScope(s Schema, scope map[string]bool) map[string]bool {
	if Transparent(s) {
		return scope
	}
	return map[string]bool{}
}
