package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iksnae/completion-estimator/testutil"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := NewHistory(testutil.CreateInMemoryDB(t), ":memory:")
	if err != nil {
		t.Fatalf("NewHistory() error = %v", err)
	}
	return h
}

func sampleReport(id string, n int, conv *int) *Report {
	series := NewSeries()
	for i := 1; i <= n; i++ {
		series = Integrate(series, sampleResult(i, nil))
	}
	series.ConvergenceChunk = conv
	return &Report{
		RunID:        id,
		StartedAt:    time.UnixMilli(1700000000000),
		FinishedAt:   time.UnixMilli(1700000005000),
		ChunkSize:    600,
		ChunkCount:   n,
		Cursor:       n,
		State:        StateCompleted,
		KDRThreshold: 0.02,
		Series:       series,
	}
}

func TestHistory_SaveAndLoad(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	want := sampleReport("2f1e6c1a-0000-4000-8000-000000000001", 3, intPtr(2))
	if err := h.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := h.Load(ctx, want.RunID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Series.Len() != 3 {
		t.Fatalf("loaded series length = %d, want 3", got.Series.Len())
	}
	for i := 0; i < 3; i++ {
		if got.Series.Point(i) != want.Series.Point(i) {
			t.Errorf("point %d = %+v, want %+v", i, got.Series.Point(i), want.Series.Point(i))
		}
	}
	if got.Series.ConvergenceChunk == nil || *got.Series.ConvergenceChunk != 2 {
		t.Errorf("ConvergenceChunk = %v, want 2", got.Series.ConvergenceChunk)
	}
	if got.State != StateCompleted || got.ChunkSize != 600 || got.KDRThreshold != 0.02 {
		t.Errorf("loaded report = %+v", got)
	}
	if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
		t.Errorf("times = %v / %v, want %v / %v", got.StartedAt, got.FinishedAt, want.StartedAt, want.FinishedAt)
	}
}

func TestHistory_SaveReplacesPoints(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	partial := sampleReport("run-a", 1, nil)
	partial.State = StateStreaming
	partial.FinishedAt = time.Time{}
	if err := h.Save(ctx, partial); err != nil {
		t.Fatal(err)
	}
	if err := h.Save(ctx, sampleReport("run-a", 4, nil)); err != nil {
		t.Fatal(err)
	}

	got, err := h.Load(ctx, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Series.Len() != 4 || got.State != StateCompleted {
		t.Errorf("after second save len = %d state = %v", got.Series.Len(), got.State)
	}
}

func TestHistory_ListAndPrefix(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	older := sampleReport("aaaa1111", 2, nil)
	newer := sampleReport("bbbb2222", 1, intPtr(1))
	newer.StartedAt = older.StartedAt.Add(time.Hour)
	for _, r := range []*Report{older, newer} {
		if err := h.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "bbbb2222" {
		t.Fatalf("List() = %+v, want newest first", runs)
	}
	if runs[0].ConvergenceChunk == nil || runs[1].ConvergenceChunk != nil {
		t.Error("convergence not listed correctly")
	}

	limited, err := h.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %v, %v", limited, err)
	}

	r, err := h.Load(ctx, "aaaa")
	if err != nil {
		t.Fatalf("Load(prefix) error = %v", err)
	}
	if r.RunID != "aaaa1111" {
		t.Errorf("Load(prefix) RunID = %q", r.RunID)
	}
}

func TestHistory_NotFoundAndDelete(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	if _, err := h.Load(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() error = %v, want ErrRunNotFound", err)
	}

	if err := h.Save(ctx, sampleReport("gone", 2, nil)); err != nil {
		t.Fatal(err)
	}
	if err := h.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := h.Load(ctx, "gone"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrRunNotFound", err)
	}
}

func TestHistory_SaveRequiresID(t *testing.T) {
	h := newTestHistory(t)
	var he *HistoryError
	if err := h.Save(context.Background(), &Report{}); !errors.As(err, &he) {
		t.Errorf("Save() error = %v, want HistoryError", err)
	}
}

func TestOpenHistory_File(t *testing.T) {
	path := testutil.TempDBPath(t)
	h, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	if err := h.Save(context.Background(), sampleReport("file-run", 1, nil)); err != nil {
		t.Fatal(err)
	}
	h.Close()

	reopened, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Load(context.Background(), "file-run"); err != nil {
		t.Errorf("Load() after reopen error = %v", err)
	}
}

func TestHistory_RecorderFollowsRun(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	seq := NewSequencer(&fakeAnalyzer{}, WithChunkSize(2))
	seq.AddObserver(h.Recorder(ctx, seq.ChunkSize(), DefaultKDRThreshold))

	snap, err := seq.Analyze(ctx, words(5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := seq.Step(ctx); err != nil {
		t.Fatal(err)
	}

	mid, err := h.Load(ctx, snap.RunID)
	if err != nil {
		t.Fatalf("Load() mid-run error = %v", err)
	}
	if mid.Series.Len() != 1 || mid.State != StateStreaming {
		t.Errorf("mid-run report len = %d state = %v", mid.Series.Len(), mid.State)
	}

	if err := seq.Run(ctx); err != nil {
		t.Fatal(err)
	}
	final, err := h.Load(ctx, snap.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Series.Len() != 3 || !final.Completed() || final.FinishedAt.IsZero() {
		t.Errorf("final report = %+v", final)
	}
}
