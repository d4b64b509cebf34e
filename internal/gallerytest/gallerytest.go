// Package gallerytest serves a numbered image gallery over httptest for
// tests that exercise the full fetch pipeline.
package gallerytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Server is a gallery at <URL>/gallery/ holding 1.<ext> .. N.<ext>.
// Individual pages can be made to fail in several ways.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]page
	requests []string
	delay    time.Duration

	release  chan struct{}
	inflight atomic.Int64
	peak     atomic.Int64
}

type mode int

const (
	serve mode = iota
	status
	hang
	drop
)

type page struct {
	mode mode
	code int
	body []byte
}

// New starts a gallery with pages 1..n, each served as Body(i). The
// server is closed when the test ends.
func New(t testing.TB, n int, ext string) *Server {
	t.Helper()

	s := &Server{
		pages:   make(map[string]page, n),
		release: make(chan struct{}),
	}
	for i := 1; i <= n; i++ {
		s.pages[strconv.Itoa(i)+"."+ext] = page{mode: serve, body: Body(i)}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gallery/{file}", s.handle)

	s.Server = httptest.NewServer(mux)

	// Cleanups run last-in first-out: hanging handlers are released
	// before Close waits on them.
	t.Cleanup(s.Server.Close)
	t.Cleanup(func() { close(s.release) })

	return s
}

// Base returns the gallery directory URL without a trailing slash.
func (s *Server) Base() string {
	return s.URL + "/gallery"
}

// Body returns the deterministic payload for page i.
func Body(i int) []byte {
	b := fmt.Appendf(nil, "RIFF page %d ", i)
	for j := range 64 {
		b = append(b, byte(i*31+j))
	}
	return b
}

// SetPage serves body under name.
func (s *Server) SetPage(name string, body []byte) {
	s.set(name, page{mode: serve, body: body})
}

// Fail answers name with code and a short text body.
func (s *Server) Fail(name string, code int) {
	s.set(name, page{mode: status, code: code})
}

// Hang blocks requests for name until the client gives up.
func (s *Server) Hang(name string) {
	s.set(name, page{mode: hang})
}

// Drop closes the connection for name without writing a response.
func (s *Server) Drop(name string) {
	s.set(name, page{mode: drop})
}

// SetDelay holds every successful response for d, which makes
// concurrency observable through Peak.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns the requested paths, sorted.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := slices.Clone(s.requests)
	slices.Sort(reqs)
	return reqs
}

// Peak returns the highest number of requests handled at the same time.
func (s *Server) Peak() int {
	return int(s.peak.Load())
}

func (s *Server) set(name string, p page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[name] = p
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		cur := s.peak.Load()
		if n <= cur || s.peak.CompareAndSwap(cur, n) {
			break
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	p, ok := s.pages[r.PathValue("file")]
	delay := s.delay
	s.mu.Unlock()

	if !ok {
		http.Error(w, "no such page", http.StatusNotFound)
		return
	}

	switch p.mode {
	case status:
		http.Error(w, http.StatusText(p.code), p.code)
	case hang:
		select {
		case <-r.Context().Done():
		case <-s.release:
		}
	case drop:
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking unsupported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	default:
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write(p.body)
	}
}
