package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	goform "github.com/reoring/goform"
)

// ctxKeySession is a typed context key for storing the resolved *Session.
type ctxKeySession struct{}

// ContextWithSession attaches a session to the context.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, s)
}

// SessionFromContext retrieves the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKeySession{}).(*Session)
	return s, ok && s != nil
}

// WithSession resolves the {id} URL parameter into a session, or answers 404.
func WithSession(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			s := m.Get(id)
			if s == nil {
				writeError(w, http.StatusNotFound, goform.AppendIssues(nil, goform.Issue{
					Path:    "/id",
					Code:    goform.CodeNotFound,
					Message: "no session " + id,
				}))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), s)))
		})
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []goform.Issue) map[string]any {
	return map[string]any{"issues": issuesJSON(issues)}
}

type issueJSON struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

func issuesJSON(issues []goform.Issue) []issueJSON {
	out := make([]issueJSON, 0, len(issues))
	for _, it := range issues {
		out = append(out, issueJSON{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint, Params: it.Params})
	}
	return out
}
