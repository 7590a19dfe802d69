// Package history persists finished run records. The primary store is a
// SQLite database; when the database cannot be opened the store degrades to
// an append-only jsonl file next to it.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// SQLiteStore persists run history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the ~/.e2eagent/history/runs.db database.
func NewSQLiteStore() *SQLiteStore {
	return NewSQLiteStoreAt(filepath.Join(userHome(), ".e2eagent", "history", "runs.db"))
}

// NewSQLiteStoreAt opens the database at an explicit path.
func NewSQLiteStoreAt(path string) *SQLiteStore {
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		// fallback to file store
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		session_id TEXT,
		instruction TEXT,
		cluster_ip TEXT,
		workflows TEXT,
		status TEXT,
		error_message TEXT,
		steps_total INTEGER,
		steps_passed INTEGER,
		duration_ms INTEGER
	);`)
	return err
}

// Save inserts a new run record.
func (s *SQLiteStore) Save(record domain.RunRecord) error {
	if s.db == nil {
		return (&FileStore{path: s.path + ".jsonl"}).Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO runs
		(timestamp, session_id, instruction, cluster_ip, workflows, status, error_message, steps_total, steps_passed, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.Format(time.RFC3339),
		record.SessionID,
		record.Instruction,
		record.ClusterIP,
		record.Workflows,
		string(record.Status),
		record.ErrorMsg,
		record.StepsTotal,
		record.StepsPassed,
		record.DurationMS,
	)
	return err
}

// Records returns run history entries, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.RunRecord, error) {
	if s.db == nil {
		return (&FileStore{path: s.path + ".jsonl"}).Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, session_id, instruction, cluster_ip, workflows, status, error_message, steps_total, steps_passed, duration_ms FROM runs")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE instruction LIKE ? OR workflows LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts, status string
		if err := rows.Scan(&ts, &rec.SessionID, &rec.Instruction, &rec.ClusterIP, &rec.Workflows, &status, &rec.ErrorMsg, &rec.StepsTotal, &rec.StepsPassed, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Status = domain.Status(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all run history entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return (&FileStore{path: s.path + ".jsonl"}).Clear()
	}
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var _ ports.RunRepository = (*SQLiteStore)(nil)
