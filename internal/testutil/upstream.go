package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one call received by an Upstream.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// Upstream is a fake calculation service that records every request and
// answers with respond.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

func NewUpstream(t testing.TB, respond http.HandlerFunc) *Upstream {
	t.Helper()

	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		u.mu.Lock()
		u.requests = append(u.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		u.mu.Unlock()

		respond(w, r)
	}))
	t.Cleanup(u.Close)

	return u
}

func (u *Upstream) Requests() []RecordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]RecordedRequest(nil), u.requests...)
}

func (u *Upstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

// RespondJSON answers every request with status and the literal body.
func RespondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Arithmetic answers like a well-behaved calculation service, reporting
// division by zero as a business error.
func Arithmetic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			A  float64 `json:"a"`
			B  float64 `json:"b"`
			Op int     `json:"op"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var resp map[string]any
		switch req.Op {
		case 0:
			resp = map[string]any{"result": req.A + req.B}
		case 1:
			resp = map[string]any{"result": req.A - req.B}
		case 2:
			resp = map[string]any{"result": req.A * req.B}
		case 3:
			if req.B == 0 {
				resp = map[string]any{"error": "divisor cannot be zero"}
			} else {
				resp = map[string]any{"result": req.A / req.B}
			}
		default:
			resp = map[string]any{"code": 3, "message": "unknown operation"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
