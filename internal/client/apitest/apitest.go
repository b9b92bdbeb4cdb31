// Package apitest provides a scripted REST server and wiring helpers for
// testing code built on the api gateway.
package apitest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/api"
	"storefront/internal/client/session"
)

const basePath = "/api"

// Call is one request the server received. Path excludes the /api prefix.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// New starts a server that answers 404 for every route until one is
// registered. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, basePath)
	key := r.Method + " " + path

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: path, Auth: r.Header.Get("Authorization"), Body: string(body)})
	fn := s.routes[key]
	s.mu.Unlock()

	if fn == nil {
		Reply(w, http.StatusNotFound, `{"message":"Not found"}`)
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	fn(w, r)
}

// HandleFunc registers fn for method and path, replacing any earlier one.
func (s *Server) HandleFunc(method, path string, fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = fn
}

// Handle answers method and path with a fixed status and JSON body.
func (s *Server) Handle(method, path string, status int, body string) {
	s.HandleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		Reply(w, status, body)
	})
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many requests hit method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent call, or the zero Call.
func (s *Server) Last() Call {
	calls := s.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

func (s *Server) BaseURL() string { return s.URL + basePath }

func Reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Session opens a memory-backed session, signed in when token is set.
func Session(t testing.TB, token, role string) *session.Store {
	t.Helper()
	s, err := session.Open(context.Background(), session.NewMemoryStorage(), zerolog.Nop())
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, s.SetSession(context.Background(), token, role))
	}
	return s
}

// Client builds a gateway against srv using sess.
func Client(t testing.TB, srv *Server, sess api.Session) *api.Client {
	t.Helper()
	c, err := api.New(api.Config{BaseURL: srv.BaseURL()}, sess, zerolog.Nop())
	require.NoError(t, err)
	return c
}
