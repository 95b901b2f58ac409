package goform

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnsupportedType     = "unsupported_type"
	CodeDuplicateName       = "duplicate_name"
	CodeMissingName         = "missing_name"
	CodeInvalidValue        = "invalid_value"
	CodeDisabled            = "disabled"
	CodeNotEditable         = "not_editable"
	CodeUnknownAction       = "unknown_action"
	CodeNotFound            = "not_found"
	CodeSelectorUnavailable = "selector_unavailable"
	CodeParseError          = "parse_error"
)

// Issue represents a single schema, edit or decoding problem.
type Issue struct {
	Path    string // JSON Pointer of the data location (for example: /outer/2/inner).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending type names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"type":"color"}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is a collection of problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unsupported_type at /color
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the underlying causes to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

func singleIssue(path, code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: path, Code: code, Message: msg})
}
