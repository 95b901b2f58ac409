package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	json "github.com/goccy/go-json"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/source"
)

// ClientMessage is the envelope for all client-to-server websocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "render", "change", "action", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for all server-to-client websocket messages.
type ServerMessage struct {
	Type      string `json:"type"` // "state", "value-changed", "error", "pong"
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ValueChanged is pushed once per edit, carrying the complete data object.
type ValueChanged struct {
	Value goform.Data `json:"value"`
}

// ErrorData carries a failed request.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Issues  []issueJSON `json:"issues,omitempty"`
}

// edit is the payload of "change" and "action" messages:
// {"element": "/host", "value": "h"} or {"element": "/peers", "action": "add"}.
type edit struct {
	element  string
	action   string
	value    any
	hasValue bool
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept", slog.Any("err", err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-updates:
				s.send(ctx, conn, ServerMessage{Type: "value-changed", Data: ValueChanged{Value: d}})
			}
		}
	}()

	s.send(ctx, conn, ServerMessage{Type: "state", Data: state(sess)})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				s.log.Debug("websocket closed", slog.String("session", sess.ID), slog.Any("status", websocket.CloseStatus(err)))
			}
			return
		}

		switch msg.Type {
		case "render":
			s.send(ctx, conn, ServerMessage{Type: "state", RequestID: msg.ID, Data: state(sess)})
		case "change", "action":
			ed, err := editData(msg.Data)
			if err != nil {
				s.sendError(ctx, conn, msg.ID, err)
				continue
			}
			if msg.Type == "change" {
				v := goform.Unset
				if ed.hasValue {
					v = ed.value
				}
				_, err = sess.Change(ed.element, v)
			} else {
				_, err = sess.Do(ed.element, ed.action)
			}
			if err != nil {
				s.sendError(ctx, conn, msg.ID, err)
				continue
			}
			s.send(ctx, conn, ServerMessage{Type: "state", RequestID: msg.ID, Data: state(sess)})
		case "ping":
			s.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			s.sendError(ctx, conn, msg.ID, fmt.Errorf("unknown message type: %s", msg.Type))
		}
	}
}

// editData decodes a change/action payload through source so numbers and
// nested objects match documents loaded from files.
func editData(raw json.RawMessage) (edit, error) {
	var ed edit
	if len(raw) == 0 {
		return ed, fieldIssue("/data", "data is required")
	}
	v, err := source.DecodeDocument(raw, source.JSON)
	if err != nil {
		return ed, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ed, fieldIssue("/data", "data must be an object")
	}
	ed.element, _ = m["element"].(string)
	ed.action, _ = m["action"].(string)
	if val, ok := m["value"]; ok {
		ed.value, ed.hasValue = source.ToData(val), true
	}
	return ed, nil
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		s.log.Debug("websocket write", slog.Any("err", err))
	}
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, requestID string, err error) {
	data := ErrorData{Code: "error", Message: err.Error()}
	if iss, ok := goform.AsIssues(err); ok && len(iss) > 0 {
		data.Code = iss[0].Code
		data.Issues = issuesJSON(iss)
	}
	s.send(ctx, conn, ServerMessage{Type: "error", RequestID: requestID, Data: data})
}
