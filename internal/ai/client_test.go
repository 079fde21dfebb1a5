package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/KaramelBytes/riskcsv-cli/internal/analysis"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func testServerSequence(t *testing.T, statuses []int, headers []http.Header, bodyOK any) (*ipv4Server, *int32) {
	t.Helper()
	var idx int32
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/model-risk" {
			http.NotFound(w, r)
			return
		}
		i := int(atomic.AddInt32(&idx, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		st := statuses[i]
		if headers != nil && i < len(headers) && headers[i] != nil {
			for k, vals := range headers[i] {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
		}
		w.WriteHeader(st)
		if st >= 200 && st < 300 {
			_ = json.NewEncoder(w).Encode(bodyOK)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "try later"}})
	})), &idx
}

func sampleRequest() *ScoringRequest {
	env := analysis.Transform([]string{"Age", "LoanAmount", "Risk"}, nil)
	env.Values = append(env.Values, []analysis.Value{analysis.IntValue(30), analysis.IntValue(1000)})
	return NewScoringRequest(env)
}

const wrappedBody = `{"engine":"watson","ok":true,"result":{"predictions":[{"fields":["prediction","probability"],"values":[["No Risk",[0.2,0.8]]]}]}}`

func TestScoreSendsWireShapeAndHeaders(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model-risk" || r.URL.Query().Get("engine") != "watson" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		b, _ := json.Marshal(body)
		want := `{"input_data":[{"fields":["Age","LoanAmount"],"values":[[30,1000]]}]}`
		if string(b) != want {
			t.Errorf("body = %s, want %s", b, want)
		}
		fmt.Fprint(w, wrappedBody)
	}))
	defer srv.Close()

	c := NewWatsonClient("secret", srv.URL+"/", 0, 0, 0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Score(ctx, sampleRequest())
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	res := NewResults(resp)
	if res.Label(0) != "No Risk" || res.ProbabilityText(0, 1) != "80.0%" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestScoreRetriesOn503(t *testing.T) {
	var ok ScoringResponse
	if err := json.Unmarshal([]byte(wrappedBody), &ok); err != nil {
		t.Fatal(err)
	}
	srv, hits := testServerSequence(t, []int{503, 200}, nil, ok)
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, 3, 10*time.Millisecond, 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Score(ctx, sampleRequest())
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Fatalf("expected 2 attempts, got %d", *hits)
	}
	if NewResults(resp).Len() != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRetryAfterHonored(t *testing.T) {
	var ok ScoringResponse
	_ = json.Unmarshal([]byte(wrappedBody), &ok)
	srv, _ := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"1"}}, {}}, ok)
	defer srv.Close()

	c := NewClient("test", srv.URL, 5*time.Second, 3, 0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := c.Score(ctx, sampleRequest()); err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("expected at least ~1s delay due to Retry-After, got %v", elapsed)
	}
}

func TestScoreGivesUpAfterMaxAttempts(t *testing.T) {
	srv, hits := testServerSequence(t, []int{500}, nil, nil)
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, 2, 5*time.Millisecond, 10*time.Millisecond)
	_, err := c.Score(context.Background(), sampleRequest())
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Fatalf("expected 2 attempts, got %d", *hits)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusBadRequest, func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
		{http.StatusNotFound, func(err error) bool { var e *EngineNotFoundError; return errors.As(err, &e) }},
	}
	for _, tc := range cases {
		srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Request-Id", "req_test_123")
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "nope", "code": "x"})
		}))
		c := NewClient("test", srv.URL, 2*time.Second, 1, time.Millisecond, time.Millisecond)
		_, err := c.Score(context.Background(), sampleRequest())
		srv.Close()
		if err == nil || !tc.check(err) {
			t.Fatalf("status %d: unexpected error %T: %v", tc.status, err, err)
		}
		if !strings.Contains(err.Error(), "req_test_123") {
			t.Fatalf("expected request id in error, got: %v", err)
		}
	}
}

func TestScoreRequiresConfiguration(t *testing.T) {
	if _, err := NewClient("key", "", 0, 0, 0, 0).Score(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewClient("", "http://127.0.0.1:1", 0, 0, 0, 0).Score(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestUnreachableHost(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot open listener: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := NewClient("test", "http://"+addr, time.Second, 1, time.Millisecond, time.Millisecond)
	_, err = c.Score(context.Background(), sampleRequest())
	var ue *UnreachableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnreachableError, got %T: %v", err, err)
	}
}

func TestListModels(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"models":["credit-risk-v1"]}`)
	}))
	defer srv.Close()

	raw, err := NewClient("k", srv.URL, time.Second, 1, 0, 0).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if !strings.Contains(string(raw), "credit-risk-v1") {
		t.Fatalf("unexpected listing: %s", raw)
	}
}
