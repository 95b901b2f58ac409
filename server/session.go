package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	goform "github.com/reoring/goform"
)

// Session holds one live form: its schema, the current data object and the
// element tree rendered from it.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	mu       sync.Mutex
	form     *goform.Form
	schema   []goform.Schema
	data     goform.Data
	errors   goform.Messages
	warnings goform.Messages
	disabled bool
	view     *goform.Element
	version  int
	subs     map[chan goform.Data]struct{}
}

// Spec is the content a session is created from.
type Spec struct {
	Schema   []goform.Schema
	Data     goform.Data
	Error    goform.Messages
	Warning  goform.Messages
	Disabled bool
}

func newSession(f *goform.Form, sp Spec) *Session {
	now := time.Now()
	data := sp.Data
	if data == nil {
		data = goform.ComputeInitialData(sp.Schema)
	}
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
		form:         f,
		schema:       sp.Schema,
		data:         data,
		errors:       sp.Error,
		warnings:     sp.Warning,
		disabled:     sp.Disabled,
		subs:         map[chan goform.Data]struct{}{},
	}
	s.render()
	return s
}

// render rebuilds the view from the current data. Callers hold mu.
func (s *Session) render() {
	s.view = s.form.Render(goform.Props{
		Schema:   s.schema,
		Data:     s.data,
		Error:    s.errors,
		Warning:  s.warnings,
		Disabled: s.disabled,
		OnChange: func(next goform.Data) {
			s.data = next
			s.version++
		},
	})
	s.form.Focus(s.view)
}

// Snapshot returns the current data and view.
func (s *Session) Snapshot() (goform.Data, *goform.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.view
}

// Change submits raw to the element with the given ID and returns the data
// afterwards.
func (s *Session) Change(id string, raw any) (goform.Data, error) {
	return s.apply(func(v *goform.Element) error { return v.Find(id).Change(raw) })
}

// Do runs an element action.
func (s *Session) Do(id, action string) (goform.Data, error) {
	return s.apply(func(v *goform.Element) error { return v.Find(id).Do(action) })
}

func (s *Session) apply(fn func(*goform.Element) error) (goform.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
	before := s.version
	if err := fn(s.view); err != nil {
		return s.data, err
	}
	s.render()
	if s.version != before {
		for ch := range s.subs {
			select {
			case ch <- s.data:
			default:
			}
		}
	}
	return s.data, nil
}

// Subscribe registers for value-changed notifications. The returned function
// unsubscribes. Slow subscribers miss intermediate values.
func (s *Session) Subscribe() (<-chan goform.Data, func()) {
	ch := make(chan goform.Data, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// IsIdle returns true if the session has been idle longer than the timeout.
// A zero timeout never expires.
func (s *Session) IsIdle(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActiveAt) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	newForm     func() *goform.Form
}

// NewManager creates a session manager. newForm supplies a Form per session
// so expand state and item keys stay private to it.
func NewManager(idleTimeout time.Duration, newForm func() *goform.Form) *Manager {
	if newForm == nil {
		newForm = func() *goform.Form { return goform.New() }
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		newForm:     newForm,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create(sp Spec) *Session {
	s := newSession(m.newForm(), sp)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or idle.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.IsIdle(m.idleTimeout) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes idle sessions. Called periodically.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsIdle(m.idleTimeout) {
			delete(m.sessions, id)
		}
	}
}
