package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request captured by [Backend].
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// Backend is a fake Floody API built on [httptest.Server].
//
// Routes are keyed by method and URL path, without the query string. Unknown routes answer 404.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle registers h for method and path.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// JSON registers a route answering with status and v encoded as JSON.
func (b *Backend) JSON(method, path string, status int, v any) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	})
}

// Text registers a route answering with a plain text body.
func (b *Backend) Text(method, path string, status int, body string) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request to method and path.
func (b *Backend) Last(method, path string) (RecordedRequest, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}
