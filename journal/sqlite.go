// Package journal provides a SQLite-backed commit journal for stator
// stores. It observes the invocation life cycle and appends one row per
// commit and one per settlement, giving an audit trail of how the state
// evolved. The journal is a sink only: it is never read back into the
// state cell.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/statorhq/stator/pkg/api"
)

// Kind classifies a journal row.
type Kind string

const (
	KindCommit    Kind = "COMMIT"
	KindCompleted Kind = "COMPLETED"
	KindFailed    Kind = "FAILED"
)

// Entry is one journal row.
type Entry struct {
	ID     int64
	CallID string
	Action string
	Kind   Kind
	// Seq is the 1-based commit index within the call; 0 on settlement rows.
	Seq int
	// State is the JSON snapshot of the committed (or final) state; empty
	// when snapshots are disabled or on failure rows.
	State string
	// Detail carries the error text on FAILED rows.
	Detail string
	At     time.Time
}

// Option configures a SQLiteJournal.
type Option func(*settings)

type settings struct {
	recordState bool
}

// WithStateSnapshots records a JSON snapshot of the state on commit and
// completion rows. States must be JSON-encodable when this is on.
func WithStateSnapshots() Option {
	return func(s *settings) { s.recordState = true }
}

// SQLiteJournal records invocation commits and settlements in SQLite.
// It implements api.Observer; attach it with stator.WithObserver.
//
// Observer callbacks cannot return errors, so write failures are retained
// and exposed through Err.
type SQLiteJournal[S any] struct {
	db          *sql.DB
	recordState bool

	mu      sync.Mutex
	lastErr error
}

// Ensure SQLiteJournal implements the observer interface.
var _ api.Observer[any] = (*SQLiteJournal[any])(nil)

// NewSQLiteJournal initializes the journal schema on db and returns a
// ready journal.
func NewSQLiteJournal[S any](db *sql.DB, opts ...Option) (*SQLiteJournal[S], error) {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}
	j := &SQLiteJournal[S]{db: db, recordState: cfg.recordState}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJournal[S]) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS action_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			call_id TEXT NOT NULL,
			action TEXT NOT NULL,
			kind TEXT NOT NULL,
			seq INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_action_journal_call_id ON action_journal(call_id, id);
	`)
	return err
}

// Err returns the most recent write failure, if any.
func (j *SQLiteJournal[S]) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastErr
}

func (j *SQLiteJournal[S]) setErr(err error) {
	if err == nil {
		return
	}
	j.mu.Lock()
	j.lastErr = err
	j.mu.Unlock()
}

func (j *SQLiteJournal[S]) OnActionStart(ctx context.Context, call api.CallInfo) {}

func (j *SQLiteJournal[S]) OnCommit(ctx context.Context, call api.CallInfo, seq int, state S) {
	j.append(ctx, call, KindCommit, seq, j.snapshot(state), "")
}

func (j *SQLiteJournal[S]) OnActionCompleted(ctx context.Context, call api.CallInfo, state S, d time.Duration) {
	j.append(ctx, call, KindCompleted, 0, j.snapshot(state), "")
}

func (j *SQLiteJournal[S]) OnActionFailed(ctx context.Context, call api.CallInfo, err error, d time.Duration) {
	j.append(ctx, call, KindFailed, 0, "", err.Error())
}

func (j *SQLiteJournal[S]) snapshot(state S) string {
	if !j.recordState {
		return ""
	}
	data, err := json.Marshal(state)
	if err != nil {
		j.setErr(err)
		return ""
	}
	return string(data)
}

func (j *SQLiteJournal[S]) append(ctx context.Context, call api.CallInfo, kind Kind, seq int, state, detail string) {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO action_journal (call_id, action, kind, seq, state, detail, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		call.ID,
		call.Action,
		string(kind),
		seq,
		state,
		detail,
		time.Now().UnixNano(),
	)
	j.setErr(err)
}

// Entries returns every journal row in append order.
func (j *SQLiteJournal[S]) Entries(ctx context.Context) ([]Entry, error) {
	return j.list(ctx, `
		SELECT id, call_id, action, kind, seq, state, detail, at
		FROM action_journal
		ORDER BY id ASC`)
}

// CallEntries returns the rows of a single invocation in append order.
func (j *SQLiteJournal[S]) CallEntries(ctx context.Context, callID string) ([]Entry, error) {
	return j.list(ctx, `
		SELECT id, call_id, action, kind, seq, state, detail, at
		FROM action_journal
		WHERE call_id = ?
		ORDER BY id ASC`, callID)
}

func (j *SQLiteJournal[S]) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			k   string
			atN int64
		)
		if err := rows.Scan(&e.ID, &e.CallID, &e.Action, &k, &e.Seq, &e.State, &e.Detail, &atN); err != nil {
			return nil, err
		}
		e.Kind = Kind(k)
		e.At = time.Unix(0, atN)
		out = append(out, e)
	}
	return out, rows.Err()
}
