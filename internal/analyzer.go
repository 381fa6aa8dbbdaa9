package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Analyzer is the remote analysis service
type Analyzer interface {
	// Reset clears the service's per-run state. It must be acknowledged
	// before a new run is accepted.
	Reset(ctx context.Context) error

	// Analyze submits one chunk's text and returns its metrics
	Analyze(ctx context.Context, chunk string) (*AnalysisResult, error)
}

// HTTPAnalyzer talks to the analysis service over HTTP
type HTTPAnalyzer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAnalyzer creates a client for the service at baseURL
func NewHTTPAnalyzer(baseURL string, timeout time.Duration) (*HTTPAnalyzer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}

	return &HTTPAnalyzer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Ping checks that the service answers HTTP at all. Any status counts as
// reachable; only connection failures are reported.
func (a *HTTPAnalyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return &TransportError{Op: "ping", URL: a.baseURL, Err: err}
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "ping", URL: a.baseURL, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return nil
}

// Reset issues POST /reset and requires {"status": "reset"}
func (a *HTTPAnalyzer) Reset(ctx context.Context) error {
	var resp ResetResponse
	if err := a.post(ctx, "reset", nil, &resp); err != nil {
		return err
	}
	return NormalizeReset(&resp)
}

// Analyze issues POST /analyze with {"chunk": text}
func (a *HTTPAnalyzer) Analyze(ctx context.Context, chunk string) (*AnalysisResult, error) {
	var resp AnalyzeResponse
	if err := a.post(ctx, "analyze", AnalyzeRequest{Chunk: chunk}, &resp); err != nil {
		return nil, err
	}

	result, err := NormalizeAnalysis(&resp)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *HTTPAnalyzer) post(ctx context.Context, op string, body any, out any) error {
	endpoint, err := url.JoinPath(a.baseURL, op)
	if err != nil {
		return &TransportError{Op: op, URL: a.baseURL, Err: err}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	LogDebug("POST %s", endpoint)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Op: op, Detail: "failed to decode response", Err: err}
	}

	return nil
}
