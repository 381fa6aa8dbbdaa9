package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/testutil"
)

func TestAnalyzeCommand_StreamsChunks(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "analyze", "--text", testutil.Words(25))
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	for _, want := range []string{
		"3 chunk(s)",
		"Chunk 1: 10",
		"Chunk 2: 20",
		"Chunk 3: 30",
		"Convergence occurs at chunk: Not yet",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	if got := len(env.svc.Chunks()); got != 3 {
		t.Errorf("service received %d chunks, want 3", got)
	}

	for _, name := range []string{"keywords.svg", "kdr.svg", "entities.svg"} {
		if _, err := os.Stat(filepath.Join(env.chartDir, name)); err != nil {
			t.Errorf("chart %s not written: %v", name, err)
		}
	}

	runs, err := env.history(t).List(t.Context(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].State != internal.StateCompleted || runs[0].Cursor != 3 {
		t.Errorf("history = %+v", runs)
	}
}

func TestAnalyzeCommand_FileAndStdin(t *testing.T) {
	env := newTestEnv(t)
	path := testutil.WriteTextFile(t, env.dir, "doc.txt", testutil.Words(12))

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"file argument", "", []string{"analyze", path}},
		{"stdin dash", testutil.Words(12), []string{"analyze", "-"}},
		{"stdin implicit", testutil.Words(12), []string{"analyze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(env.svc.Chunks())
			args := append(tt.args, "--no-charts", "--no-history")
			if _, err := env.run(t, tt.stdin, args...); err != nil {
				t.Fatalf("analyze error = %v", err)
			}
			if got := len(env.svc.Chunks()) - before; got != 2 {
				t.Errorf("sent %d chunks, want 2", got)
			}
		})
	}

	if _, err := os.Stat(env.chartDir); !os.IsNotExist(err) {
		t.Error("--no-charts should not create the chart directory")
	}
}

func TestAnalyzeCommand_ReportExport(t *testing.T) {
	env := newTestEnv(t)
	report := filepath.Join(env.dir, "reports", "run.md")

	if _, err := env.run(t, "", "analyze", "--text", "a short document", "--format", "md", "--report", report, "--no-charts"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "**State:** completed") {
		t.Errorf("report content:\n%s", data)
	}
}

func TestAnalyzeCommand_FailedChunkStopsRun(t *testing.T) {
	env := newTestEnv(t)
	env.svc.FailAnalyze(2, http.StatusInternalServerError)

	out, err := env.run(t, "", "analyze", "--text", testutil.Words(30), "--no-charts")
	if err == nil {
		t.Fatal("analyze should fail when a chunk fails")
	}
	if !strings.Contains(err.Error(), "run stopped at chunk 2 of 3") {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(out, "error: chunk 2:") {
		t.Errorf("output should report the failed chunk\n%s", out)
	}
	if got := len(env.svc.Chunks()); got != 2 {
		t.Errorf("service received %d chunks, want 2 (nothing after the failure)", got)
	}

	runs, err := env.history(t).List(t.Context(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Cursor != 1 || runs[0].State != internal.StateStreaming {
		t.Errorf("history = %+v", runs)
	}
}

func TestAnalyzeCommand_ResetRejected(t *testing.T) {
	env := newTestEnv(t)
	env.svc.SetResetStatus("busy")

	_, err := env.run(t, "", "analyze", "--text", "some words", "--no-charts", "--no-history")
	if err == nil || !strings.Contains(err.Error(), "failed to start run") {
		t.Fatalf("analyze error = %v, want failed to start run", err)
	}
	if len(env.svc.Chunks()) != 0 {
		t.Error("no chunk should be sent after a rejected reset")
	}
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteTextFile(t, dir, "in.txt", "from file")

	tests := []struct {
		name    string
		args    []string
		text    string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "text flag", text: "inline", want: "inline"},
		{name: "file", args: []string{path}, want: "from file"},
		{name: "stdin", stdin: "piped", want: "piped"},
		{name: "dash", args: []string{"-"}, stdin: "piped", want: "piped"},
		{name: "both", args: []string{path}, text: "inline", wantErr: true},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.txt")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readText(tt.args, tt.text, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readText() = %q, want %q", got, tt.want)
			}
		})
	}
}
