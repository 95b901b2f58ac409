package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	goform "github.com/reoring/goform"
)

// decodeJSON reads exactly one JSON value from b with go-json's token
// stream, rejecting duplicate object keys with the pointer of the offending
// key.
func decodeJSON(b []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := readValue(dec, goform.RootPath())
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, parseIssue(goform.RootPath(), "unexpected data after the document", err)
	}
	return v, nil
}

func readValue(dec *j.Decoder, at goform.PathRef) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseIssue(at, "unexpected end of input", err)
		}
		return nil, parseIssue(at, err.Error(), err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return readObject(dec, at)
		case '[':
			return readArray(dec, at)
		default:
			return nil, parseIssue(at, fmt.Sprintf("unexpected %q", rune(v)), nil)
		}
	case j.Number:
		return normalizeNumber(v), nil
	case float64:
		if i, ok := goform.ToInt(v); ok {
			return i, nil
		}
		return v, nil
	default:
		// string, bool or nil
		return v, nil
	}
}

func readObject(dec *j.Decoder, at goform.PathRef) (any, error) {
	out := newObject(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseIssue(at, err.Error(), err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, parseIssue(at, "object key must be a string", nil)
		}
		if out.has(key) {
			iss := at.Field(key).Issue(goform.CodeParseError, "duplicate key", "key", key)
			iss.Hint = "duplicate_key"
			return nil, goform.AppendIssues(nil, iss)
		}
		v, err := readValue(dec, at.Field(key))
		if err != nil {
			return nil, err
		}
		out.set(key, v)
	}
	if _, err := dec.Token(); err != nil { // '}'
		return nil, parseIssue(at, err.Error(), err)
	}
	return out, nil
}

func readArray(dec *j.Decoder, at goform.PathRef) (any, error) {
	out := []any{}
	for i := 0; dec.More(); i++ {
		v, err := readValue(dec, at.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := dec.Token(); err != nil { // ']'
		return nil, parseIssue(at, err.Error(), err)
	}
	return out, nil
}

// normalizeNumber turns integral numbers into int and everything else into
// float64.
func normalizeNumber(n j.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func parseIssue(at goform.PathRef, msg string, cause error) error {
	iss := at.Issue(goform.CodeParseError, msg)
	iss.Cause = cause
	return goform.AppendIssues(nil, iss)
}
