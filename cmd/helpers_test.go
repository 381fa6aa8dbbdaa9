package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testEnv is an isolated config, history and chart directory pointing at a
// fake analysis service
type testEnv struct {
	svc         *testutil.FakeAnalysisService
	dir         string
	configPath  string
	historyPath string
	chartDir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	svc := testutil.NewFakeAnalysisService(t)
	dir := t.TempDir()
	env := &testEnv{
		svc:         svc,
		dir:         dir,
		historyPath: filepath.Join(dir, "history.db"),
		chartDir:    filepath.Join(dir, "charts"),
	}
	env.configPath = testutil.WriteTextFile(t, dir, "config.yaml", fmt.Sprintf(
		"backend_url: %s\nchunk_size: 10\nrequest_timeout: 5s\nhistory_path: %s\nlog_level: error\nchart:\n  dir: %s\n  format: svg\n",
		svc.URL(), env.historyPath, env.chartDir))
	return env
}

// seed stores reports in the environment's history
func (e *testEnv) seed(t *testing.T, reports ...*internal.Report) {
	t.Helper()
	h, err := internal.OpenHistory(e.historyPath)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	for _, r := range reports {
		if err := h.Save(t.Context(), r); err != nil {
			t.Fatal(err)
		}
	}
}

func (e *testEnv) history(t *testing.T) *internal.History {
	t.Helper()
	h, err := internal.OpenHistory(e.historyPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// run executes the root command with --config pointing at the environment
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeCommand(t, stdin, append(args, "--config", e.configPath)...)
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetCommandState()

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return out.String(), err
}

// resetCommandState restores every flag to its default so tests do not
// leak into each other through the shared command tree
func resetCommandState() {
	cfg = nil
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}
