package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	started_at        INTEGER NOT NULL,
	finished_at       INTEGER NOT NULL DEFAULT 0,
	chunk_size        INTEGER NOT NULL,
	chunk_count       INTEGER NOT NULL,
	cursor            INTEGER NOT NULL,
	state             TEXT NOT NULL,
	kdr_threshold     REAL NOT NULL,
	convergence_chunk INTEGER
);
CREATE TABLE IF NOT EXISTS points (
	run_id                TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position              INTEGER NOT NULL,
	chunk                 INTEGER NOT NULL,
	cumulative_keywords   REAL NOT NULL,
	kdr                   REAL NOT NULL,
	random_value          REAL NOT NULL,
	entity_relation_count REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// RunSummary is one row of the run listing
type RunSummary struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	ChunkCount       int
	Cursor           int
	State            State
	ConvergenceChunk *int
}

// History stores run reports in SQLite
type History struct {
	db   *sql.DB
	path string
}

// OpenHistory opens (creating if needed) the history database at path
func OpenHistory(path string) (*History, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &HistoryError{Path: path, Op: "open", Err: err}
	}

	h, err := NewHistory(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// NewHistory wraps an open database and creates the tables
func NewHistory(db *sql.DB, path string) (*History, error) {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, &HistoryError{Path: path, Op: "migrate", Err: err}
	}
	if _, err := db.Exec(historySchema); err != nil {
		return nil, &HistoryError{Path: path, Op: "migrate", Err: err}
	}
	return &History{db: db, path: path}, nil
}

// Path returns the database location
func (h *History) Path() string {
	return h.path
}

// Close closes the database
func (h *History) Close() error {
	return h.db.Close()
}

// Save writes a report, replacing any earlier version of the same run
func (h *History) Save(ctx context.Context, r *Report) error {
	if r.RunID == "" {
		return &HistoryError{Path: h.path, Op: "insert", Err: errors.New("report has no run id")}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return &HistoryError{Path: h.path, Op: "insert", Err: err}
	}
	defer tx.Rollback()

	var conv sql.NullInt64
	if r.Series.ConvergenceChunk != nil {
		conv = sql.NullInt64{Int64: int64(*r.Series.ConvergenceChunk), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, chunk_size, chunk_count, cursor, state, kdr_threshold, convergence_chunk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			chunk_count = excluded.chunk_count,
			cursor = excluded.cursor,
			state = excluded.state,
			convergence_chunk = excluded.convergence_chunk`,
		r.RunID, toMillis(r.StartedAt), toMillis(r.FinishedAt), r.ChunkSize, r.ChunkCount, r.Cursor,
		r.State.String(), r.KDRThreshold, conv)
	if err != nil {
		return &HistoryError{Path: h.path, Op: "insert", Err: err}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM points WHERE run_id = ?", r.RunID); err != nil {
		return &HistoryError{Path: h.path, Op: "insert", Err: err}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (run_id, position, chunk, cumulative_keywords, kdr, random_value, entity_relation_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &HistoryError{Path: h.path, Op: "insert", Err: err}
	}
	defer stmt.Close()

	for _, p := range r.Points() {
		if _, err := stmt.ExecContext(ctx, r.RunID, p.Position, p.Chunk, p.CumulativeKeywords, p.KDR, p.RandomValue, p.EntityRelationCount); err != nil {
			return &HistoryError{Path: h.path, Op: "insert", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &HistoryError{Path: h.path, Op: "insert", Err: err}
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 returns all runs.
func (h *History) List(ctx context.Context, limit int) ([]RunSummary, error) {
	query := "SELECT id, started_at, finished_at, chunk_count, cursor, state, convergence_chunk FROM runs ORDER BY started_at DESC, id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &HistoryError{Path: h.path, Op: "query", Err: err}
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			run            RunSummary
			started, ended int64
			state          string
			conv           sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &started, &ended, &run.ChunkCount, &run.Cursor, &state, &conv); err != nil {
			return nil, &HistoryError{Path: h.path, Op: "query", Err: fmt.Errorf("scan failed: %w", err)}
		}
		run.StartedAt = fromMillis(started)
		run.FinishedAt = fromMillis(ended)
		_ = run.State.UnmarshalText([]byte(state))
		run.ConvergenceChunk = nullIntPtr(conv)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, &HistoryError{Path: h.path, Op: "query", Err: fmt.Errorf("rows iteration error: %w", err)}
	}

	return runs, nil
}

// Load returns the stored report for id. A unique prefix of an ID is
// accepted as well.
func (h *History) Load(ctx context.Context, id string) (*Report, error) {
	fullID, err := h.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &Report{RunID: fullID}
	var (
		started, ended int64
		state          string
		conv           sql.NullInt64
	)
	err = h.db.QueryRowContext(ctx, `
		SELECT started_at, finished_at, chunk_size, chunk_count, cursor, state, kdr_threshold, convergence_chunk
		FROM runs WHERE id = ?`, fullID).
		Scan(&started, &ended, &r.ChunkSize, &r.ChunkCount, &r.Cursor, &state, &r.KDRThreshold, &conv)
	if err != nil {
		return nil, &HistoryError{Path: h.path, Op: "query", Err: err}
	}
	r.StartedAt = fromMillis(started)
	r.FinishedAt = fromMillis(ended)
	_ = r.State.UnmarshalText([]byte(state))

	rows, err := h.db.QueryContext(ctx, `
		SELECT chunk, cumulative_keywords, kdr, random_value, entity_relation_count
		FROM points WHERE run_id = ? ORDER BY position`, fullID)
	if err != nil {
		return nil, &HistoryError{Path: h.path, Op: "query", Err: err}
	}
	defer rows.Close()

	series := NewSeries()
	for rows.Next() {
		var res AnalysisResult
		if err := rows.Scan(&res.ChunkNumber, &res.CumulativeKeywords, &res.KDR, &res.RandomValue, &res.EntityRelationCount); err != nil {
			return nil, &HistoryError{Path: h.path, Op: "query", Err: fmt.Errorf("scan failed: %w", err)}
		}
		series = Integrate(series, res)
	}
	if err := rows.Err(); err != nil {
		return nil, &HistoryError{Path: h.path, Op: "query", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	series.ConvergenceChunk = nullIntPtr(conv)
	r.Series = series

	return r, nil
}

// Delete removes a run and its points
func (h *History) Delete(ctx context.Context, id string) error {
	fullID, err := h.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := h.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", fullID); err != nil {
		return &HistoryError{Path: h.path, Op: "delete", Err: err}
	}
	return nil
}

func (h *History) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrRunNotFound
	}
	rows, err := h.db.QueryContext(ctx, "SELECT id FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2", id, id+"%")
	if err != nil {
		return "", &HistoryError{Path: h.path, Op: "query", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var found string
		if err := rows.Scan(&found); err != nil {
			return "", &HistoryError{Path: h.path, Op: "query", Err: err}
		}
		if found == id {
			return found, nil
		}
		ids = append(ids, found)
	}
	if err := rows.Err(); err != nil {
		return "", &HistoryError{Path: h.path, Op: "query", Err: err}
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Recorder returns an observer that saves the run after every transition
// that changes its stored form
func (h *History) Recorder(ctx context.Context, chunkSize int, threshold float64) Observer {
	return ObserverFunc(func(e Event) {
		switch e.Kind {
		case EventStart, EventIntegrate, EventCompleted:
		default:
			return
		}
		if e.Snapshot.RunID == "" {
			return
		}
		report := NewReport(e.Snapshot, chunkSize, threshold, time.Now())
		if err := h.Save(ctx, report); err != nil {
			LogWarn("Failed to record run %s: %v", report.ShortID(), err)
		}
	})
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
