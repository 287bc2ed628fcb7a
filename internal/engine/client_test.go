// internal/engine/client_test.go
package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func noRetry() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 1, MaxDelay: time.Millisecond}
}

func TestStatus_Decode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/ABC123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":42,"status":"FOCUSING","reason":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	snap, err := c.Status(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if snap.SessionID != 42 || snap.Status != "FOCUSING" {
		t.Errorf("snapshot mismatch: %+v", snap)
	}
}

func TestStatus_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	_, err := c.Status(context.Background(), "ABC123")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestStatus_Non2xxIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	_, err := c.Status(context.Background(), "ABC123")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestStatus_BadJSONIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	_, err := c.Status(context.Background(), "ABC123")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestFetchProof_CacheBustChanges(t *testing.T) {
	var busts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/proofs/proof_ABC123.jpg") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		bust := r.URL.Query().Get("t")
		if bust == "" {
			t.Error("missing cache-bust parameter")
		}
		busts = append(busts, bust)
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	data, err := c.FetchProof(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpegbytes" {
		t.Errorf("proof bytes mismatch: %q", data)
	}

	time.Sleep(2 * time.Millisecond)
	if _, err := c.FetchProof(context.Background(), "ABC123"); err != nil {
		t.Fatal(err)
	}
	if len(busts) != 2 || busts[0] == busts[1] {
		t.Errorf("expected distinct cache-bust values, got %v", busts)
	}
}

func TestFetchProof_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	policy := &RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 1, MaxDelay: time.Millisecond}
	c := NewClient(srv.URL, WithRetryPolicy(policy))
	data, err := c.FetchProof(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Errorf("proof bytes mismatch: %q", data)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestVerifyLicense(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verify_license" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":true,"tier":"pro"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	result, err := c.VerifyLicense(context.Background(), "FG-KEY-1")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid || result.Tier != "pro" {
		t.Errorf("result mismatch: %+v", result)
	}
}

func TestVerifyLicense_Invalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryPolicy(noRetry()))
	result, err := c.VerifyLicense(context.Background(), "bad-key")
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Error("expected invalid result")
	}
}
