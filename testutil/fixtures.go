package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Words returns n distinct space-separated words
func Words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

// AnalyzeReply is the body the fake service sends for one /analyze call.
// Fields mirror the service's wire names.
type AnalyzeReply struct {
	Chunk                   int     `json:"chunk"`
	CumulativeKeywords      float64 `json:"cumulative_keywords"`
	KDR                     float64 `json:"kdr"`
	RandomValue             float64 `json:"random_value"`
	EntityRelationDiscovery float64 `json:"entity_relation_discovery"`
	ConvergenceChunk        *int    `json:"convergence_chunk"`
}

// DefaultReply is the reply for the n-th (1-based) analyze call when no
// script is set
func DefaultReply(n int) AnalyzeReply {
	return AnalyzeReply{
		Chunk:                   n,
		CumulativeKeywords:      float64(25 * n),
		KDR:                     1 / float64(n+1),
		RandomValue:             float64(10 * n),
		EntityRelationDiscovery: float64(4 * n),
	}
}

// FakeAnalysisService is an httptest server speaking the analysis service's
// /reset and /analyze protocol
type FakeAnalysisService struct {
	Server *httptest.Server

	mu          sync.Mutex
	chunks      []string
	resets      int
	resetStatus string
	failAnalyze map[int]int // call number -> HTTP status
	replies     func(n int, chunk string) AnalyzeReply
	hold        chan struct{}
}

// NewFakeAnalysisService starts a fake service that is closed with the test
func NewFakeAnalysisService(t *testing.T) *FakeAnalysisService {
	t.Helper()
	f := &FakeAnalysisService{
		resetStatus: "reset",
		failAnalyze: make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /reset", f.handleReset)
	mux.HandleFunc("POST /analyze", f.handleAnalyze)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// URL returns the service's base URL
func (f *FakeAnalysisService) URL() string {
	return f.Server.URL
}

// Close releases held requests and stops the server
func (f *FakeAnalysisService) Close() {
	f.Release()
	f.Server.Close()
}

// SetResetStatus changes the status string returned by /reset
func (f *FakeAnalysisService) SetResetStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetStatus = status
}

// FailAnalyze makes the n-th (1-based) analyze call answer with status
func (f *FakeAnalysisService) FailAnalyze(n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAnalyze[n] = status
}

// SetReplies scripts the analyze replies
func (f *FakeAnalysisService) SetReplies(fn func(n int, chunk string) AnalyzeReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = fn
}

// Hold makes analyze calls block until Release is called
func (f *FakeAnalysisService) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
}

// Release unblocks held analyze calls
func (f *FakeAnalysisService) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold != nil {
		close(f.hold)
		f.hold = nil
	}
}

// Chunks returns the chunk texts received, in arrival order
func (f *FakeAnalysisService) Chunks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.chunks...)
}

// Resets returns how many /reset calls were received
func (f *FakeAnalysisService) Resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func (f *FakeAnalysisService) handleReset(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.resets++
	status := f.resetStatus
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (f *FakeAnalysisService) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Chunk string `json:"chunk"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.chunks = append(f.chunks, req.Chunk)
	n := len(f.chunks)
	failStatus := f.failAnalyze[n]
	replies := f.replies
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	if failStatus != 0 {
		http.Error(w, "analysis failed", failStatus)
		return
	}

	reply := DefaultReply(n)
	if replies != nil {
		reply = replies(n, req.Chunk)
	}
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
