package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPAnalyzer_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "localhost:5000", "/relative"} {
		if _, err := NewHTTPAnalyzer(u, time.Second); err == nil {
			t.Errorf("NewHTTPAnalyzer(%q) should fail", u)
		}
	}
}

func TestHTTPAnalyzer_Reset(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantTyped  string
		wantStatus int
	}{
		{name: "acknowledged", status: http.StatusOK, body: `{"status":"reset"}`},
		{name: "wrong status", status: http.StatusOK, body: `{"status":"busy"}`, wantErr: true, wantTyped: "protocol"},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: true, wantTyped: "protocol"},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantErr: true, wantTyped: "transport", wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/reset" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			a, err := NewHTTPAnalyzer(server.URL, time.Second)
			if err != nil {
				t.Fatalf("NewHTTPAnalyzer() error = %v", err)
			}

			err = a.Reset(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reset() error = %v, wantErr %v", err, tt.wantErr)
			}

			switch tt.wantTyped {
			case "protocol":
				var pe *ProtocolError
				if !errors.As(err, &pe) {
					t.Errorf("Reset() error = %T, want *ProtocolError", err)
				}
			case "transport":
				var te *TransportError
				if !errors.As(err, &te) {
					t.Fatalf("Reset() error = %T, want *TransportError", err)
				}
				if te.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.wantStatus)
				}
				if te.Body != tt.body {
					t.Errorf("Body = %q, want %q", te.Body, tt.body)
				}
			}
		})
	}
}

func TestHTTPAnalyzer_Analyze(t *testing.T) {
	var gotChunk string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("path = %s, want /analyze", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotChunk = req.Chunk
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chunk":3,"cumulative_keywords":120,"kdr":0.01,"random_value":55,"entity_relation_discovery":17,"convergence_chunk":3}`))
	}))
	defer server.Close()

	a, err := NewHTTPAnalyzer(server.URL+"/", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Analyze(context.Background(), "some words here")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if gotChunk != "some words here" {
		t.Errorf("server received chunk %q", gotChunk)
	}
	if result.ChunkNumber != 3 || result.CumulativeKeywords != 120 || result.KDR != 0.01 {
		t.Errorf("Analyze() = %+v", result)
	}
	if result.RandomValue != 55 || result.EntityRelationCount != 17 {
		t.Errorf("Analyze() = %+v", result)
	}
	if result.ConvergenceChunk == nil || *result.ConvergenceChunk != 3 {
		t.Errorf("ConvergenceChunk = %v, want 3", result.ConvergenceChunk)
	}
}

func TestHTTPAnalyzer_AnalyzeMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chunk":1,"kdr":0.5}`))
	}))
	defer server.Close()

	a, _ := NewHTTPAnalyzer(server.URL, time.Second)
	_, err := a.Analyze(context.Background(), "text")
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Errorf("Analyze() error = %v, want ProtocolError", err)
	}
}

func TestHTTPAnalyzer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	a, _ := NewHTTPAnalyzer(url, time.Second)
	_, err := a.Analyze(context.Background(), "text")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Analyze() error = %v, want TransportError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a failed connection", te.StatusCode)
	}
}

func TestHTTPAnalyzer_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	a, _ := NewHTTPAnalyzer(server.URL, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, "text")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Analyze() error = %v, want deadline exceeded", err)
	}
}

func TestHTTPAnalyzer_Ping(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	a, _ := NewHTTPAnalyzer(server.URL, time.Second)
	if err := a.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, a 404 still means reachable", err)
	}

	server.Close()
	var te *TransportError
	if err := a.Ping(context.Background()); !errors.As(err, &te) {
		t.Errorf("Ping() error = %v, want TransportError", err)
	}
}
