// Package server exposes form sessions over HTTP.
//
// A client creates a session from a schema (and optionally data), reads the
// rendered element tree, and submits edits by element ID. Every edit answers
// with the complete data object; websocket subscribers additionally receive
// a "value-changed" message per edit.
//
//	POST /api/forms                   create a session
//	GET  /api/forms/{id}              current data and view
//	POST /api/forms/{id}/change       {"element": "/host", "value": "h"}
//	POST /api/forms/{id}/action       {"element": "/peers", "action": "add"}
//	GET  /api/forms/{id}/ws           websocket stream
//	POST /api/check                   lint a schema without a session
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/source"
)

// maxBody bounds request documents.
const maxBody = 1 << 20

// Options configures a Server. When several are passed to New the last one
// wins.
type Options struct {
	Logger *slog.Logger
	// IdleTimeout drops sessions not touched for this long. Zero keeps them.
	IdleTimeout time.Duration
	// NewForm builds the Form behind each session. Defaults to goform.New().
	NewForm func() *goform.Form
}

// Server serves form sessions.
type Server struct {
	log      *slog.Logger
	sessions *Manager
	check    *goform.Form
}

// New returns a Server.
func New(opts ...Options) *Server {
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.NewForm == nil {
		o.NewForm = func() *goform.Form { return goform.New(goform.Options{Logger: o.Logger}) }
	}
	return &Server{
		log:      o.Logger,
		sessions: NewManager(o.IdleTimeout, o.NewForm),
		check:    o.NewForm(),
	}
}

// Sessions returns the session manager.
func (s *Server) Sessions() *Manager { return s.sessions }

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Post("/forms", s.handleCreate)
		r.Route("/forms/{id}", func(r chi.Router) {
			r.Use(WithSession(s.sessions))
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/change", s.handleChange)
			r.Post("/action", s.handleAction)
			r.Get("/ws", s.handleWS)
		})
	})
	return r
}

// Run serves on addr until ctx is done, sweeping idle sessions once a minute.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdown)
				return
			case <-t.C:
				s.sessions.Cleanup()
			}
		}
	}()
	s.log.Info("serving forms", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// FormState is the body of session responses.
type FormState struct {
	ID   string          `json:"id"`
	Data goform.Data     `json:"data"`
	View *goform.Element `json:"view"`
}

func state(sess *Session) FormState {
	d, v := sess.Snapshot()
	return FormState{ID: sess.ID, Data: d, View: v}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	_, raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	schema, err := source.LoadSchemaAt(raw, source.JSON, "/schema")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	iss := s.check.Check(schema)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     len(iss) == 0,
		"issues": issuesJSON(iss),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	schema, err := source.LoadSchemaAt(raw, source.JSON, "/schema")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sp := Spec{Schema: schema, Error: messages(body["error"]), Warning: messages(body["warning"])}
	if v, ok := body["data"]; ok && v != nil {
		d, ok := source.ToData(v).(goform.Data)
		if !ok {
			writeError(w, http.StatusBadRequest, fieldIssue("/data", "data must be an object"))
			return
		}
		sp.Data = d
	}
	if b, ok := body["disabled"].(bool); ok {
		sp.Disabled = b
	}
	sess := s.sessions.Create(sp)
	s.log.Debug("session created", slog.String("session", sess.ID), slog.Int("nodes", len(schema)))
	writeJSON(w, http.StatusCreated, state(sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, state(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	s.sessions.Remove(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	body, _, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, _ := body["element"].(string)
	value, ok := body["value"]
	if !ok {
		value = goform.Unset
	}
	if _, err := sess.Change(id, source.ToData(value)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, state(sess))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	body, _, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, _ := body["element"].(string)
	action, _ := body["action"].(string)
	if _, err := sess.Do(id, action); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, state(sess))
}

// readBody decodes a JSON object body and also returns the raw bytes.
// Duplicate keys are rejected.
func readBody(r *http.Request) (map[string]any, []byte, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, nil, err
	}
	if len(b) == 0 {
		return map[string]any{}, []byte("{}"), nil
	}
	v, err := source.DecodeDocument(b, source.JSON)
	if err != nil {
		return nil, nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fieldIssue("/", "body must be an object")
	}
	return m, b, nil
}

func messages(v any) goform.Messages {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return goform.Messages(m)
}

func fieldIssue(path, msg string) goform.Issues {
	return goform.AppendIssues(nil, goform.Issue{Path: path, Code: goform.CodeParseError, Message: msg})
}

func statusFor(err error) int {
	switch {
	case goform.HasCode(err, goform.CodeNotFound):
		return http.StatusNotFound
	case goform.HasCode(err, goform.CodeDisabled), goform.HasCode(err, goform.CodeNotEditable):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("writeJSON encode error", slog.Any("err", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// writeError writes Issues as ErrorPayload, anything else as {"error": ...}.
func writeError(w http.ResponseWriter, status int, err error) {
	if iss, ok := goform.AsIssues(err); ok {
		writeJSON(w, status, ErrorPayload(iss))
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
