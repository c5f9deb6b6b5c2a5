// Package botapitest provides an in-process fake of the bot control API.
package botapitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Op     string
	Body   map[string]any
}

// Server records every call and answers with a canned JSON body per op.
// Ops without a canned body answer {"success": true, "message": "<op> ok"}.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	responses map[string]response
}

type response struct {
	status int
	body   string
}

func NewServer() *Server {
	s := &Server{responses: map[string]response{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Respond sets the raw JSON body and status returned for op.
func (s *Server) Respond(op string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[op] = response{status: status, body: body}
}

// RespondJSON marshals v as the response body for op.
func (s *Server) RespondJSON(op string, v any) {
	b, _ := json.Marshal(v)
	s.Respond(op, http.StatusOK, string(b))
}

// Calls returns a copy of all recorded calls.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls for one op.
func (s *Server) CallsTo(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Said returns every message sent through the say op.
func (s *Server) Said() []string {
	var out []string
	for _, c := range s.CallsTo("say") {
		if m, ok := c.Body["message"].(string); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.responses = map[string]response{}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	op := strings.TrimPrefix(r.URL.Path, "/")

	var body map[string]any
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: r.Method, Op: op, Body: body})
	resp, ok := s.responses[op]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": op + " ok"})
		return
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}
