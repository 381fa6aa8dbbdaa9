package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/internal"
)

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		internal.CreateTestReport("11112222-aaaa", 2),
		internal.CreateTestReportWithConvergence("33334444-bbbb", 3, 2),
	)

	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:    "invalid format",
			args:    []string{"export", "--format", "invalid"},
			wantErr: true,
		},
		{
			name:    "unknown run",
			args:    []string{"export", "--run", "nope"},
			wantErr: true,
		},
		{
			name:      "single run",
			args:      []string{"export", "--run", "3333", "--format", "md"},
			wantFiles: []string{"run_33334444.md"},
		},
		{
			name:      "all runs",
			args:      []string{"export", "--format", "yaml"},
			wantFiles: []string{"run_11112222.yaml", "run_33334444.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "exports")
			_, err := env.run(t, "", append(tt.args, "--out", outDir)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("export error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, name := range tt.wantFiles {
				if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
					t.Errorf("%s not written: %v", name, err)
				}
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	report := internal.CreateTestReportWithConvergence("55556666-cccc", 3, 1)

	path, err := writeReport(report, "md", filepath.Join(dir, "nested", "out.md"))
	if err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Convergence occurs at chunk: 1") {
		t.Errorf("report content:\n%s", data)
	}

	if _, err := writeReport(report, "csv", filepath.Join(dir, "x.csv")); err == nil {
		t.Error("writeReport() should reject an unknown format")
	}

	var ee *internal.ExportError
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := writeReport(report, "json", filepath.Join(file, "out.json")); !errors.As(err, &ee) {
		t.Errorf("writeReport() into a file path error = %v, want ExportError", err)
	}
}
