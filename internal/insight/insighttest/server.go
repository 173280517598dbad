// Package insighttest runs a scripted stand-in for the generation endpoint.
// Each request consumes the next scripted Response; when the script runs
// out the server answers 503.
package insighttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Response is one scripted reply.
type Response struct {
	Status int           // defaults to 200
	Text   string        // placed in the "response" field
	Raw    string        // sent verbatim instead of an envelope when set
	Delay  time.Duration // wait before answering; aborted when the client goes away
}

// Reply answers 200 with text as the generated response.
func Reply(text string) Response {
	return Response{Status: http.StatusOK, Text: text}
}

// JSON answers 200 with v encoded as the generated response.
func JSON(v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Reply(string(data))
}

// Fail answers with the given status.
func Fail(status int) Response {
	return Response{Status: status}
}

// Hang waits d before failing, for timeout and cancellation tests.
func Hang(d time.Duration) Response {
	return Response{Status: http.StatusGatewayTimeout, Delay: d}
}

// GenerateRequest is a request the server received.
type GenerateRequest struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
	Stream        bool   `json:"stream"`
	Authorization string `json:"-"`
}

type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	script   []Response
	requests []GenerateRequest
}

// New starts a server that is closed when the test ends.
func New(t testing.TB, script ...Response) *Server {
	t.Helper()
	s := &Server{script: script}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
	})

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL is the value for insight.Config.BaseURL.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api"
}

// Enqueue appends responses to the script.
func (s *Server) Enqueue(rs ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, rs...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GenerateRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) next() Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return Fail(http.StatusServiceUnavailable)
	}
	r := s.script[0]
	s.script = s.script[1:]
	return r
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Authorization = r.Header.Get("Authorization")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	resp := s.next()
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	if resp.Raw != "" {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp.Raw))
		return
	}
	if status < 200 || status > 299 {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
		return
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":    req.Model,
		"response": resp.Text,
		"done":     true,
	})
}
