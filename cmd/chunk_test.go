package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/testutil"
)

func TestChunkCommand_Text(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "chunk", "--text", testutil.Words(25), "--preview", "2")
	if err != nil {
		t.Fatalf("chunk error = %v", err)
	}

	for _, want := range []string{
		"25 word(s) in 3 chunk(s) of up to 10 words",
		"Chunk 1: 10 words",
		"word0 word1 …",
		"Chunk 3: 5 words",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if len(env.svc.Chunks()) != 0 || env.svc.Resets() != 0 {
		t.Error("chunk must not contact the analysis service")
	}
}

func TestChunkCommand_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "chunk", "--text", testutil.Words(7), "--chunk-size", "3", "--format", "json")
	if err != nil {
		t.Fatalf("chunk error = %v", err)
	}

	var result struct {
		Words     int         `json:"words"`
		ChunkSize int         `json:"chunk_size"`
		Chunks    []chunkInfo `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Words != 7 || result.ChunkSize != 3 || len(result.Chunks) != 3 {
		t.Fatalf("result = %+v", result)
	}
	wantWords := []int{3, 3, 1}
	for i, c := range result.Chunks {
		if c.Chunk != i+1 || c.Words != wantWords[i] {
			t.Errorf("chunk %d = %+v", i, c)
		}
	}
}

func TestChunkCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "", "chunk", "--text", "x", "--format", "xml"); err == nil {
		t.Error("unsupported format should error")
	}

	out, err := env.run(t, "   \n\t ", "chunk")
	if err != nil {
		t.Fatalf("chunk of blank input error = %v", err)
	}
	if !strings.Contains(out, "0 word(s) in 0 chunk(s)") {
		t.Errorf("blank input output:\n%s", out)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"a b c d", 2, "a b …"},
		{"a b", 2, "a b"},
		{"a   b\nc", 5, "a b c"},
		{"a b", 0, ""},
	}
	for _, tt := range tests {
		if got := preview(tt.text, tt.n); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
