// Package history provides the append-only prompt audit log.
//
// The log is a flat CSV file with a fixed 5-column schema (version 1):
// timestamp, app, task, context, prompt. Rows are never rewritten or
// deleted by the application; persistence is best-effort and never
// load-bearing for the user-facing flow.
package history

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
)

// SchemaVersion identifies the column layout in use.
const SchemaVersion = 1

var header = []string{"timestamp", "app", "task", "context", "prompt"}

// Log appends prompt rows to a CSV file and reads them back newest
// first.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog creates the log's directory if needed and returns a Log for
// the given file path. The file itself is created lazily on first
// append.
func NewLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes one complete row. The row is serialized first and
// written with a single Write call on an O_APPEND handle, so readers
// never observe a partial row. Errors are reported but callers treat
// them as warnings only.
func (l *Log) Append(entry domain.HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		writeHeader = true
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("serialize header: %w", err)
		}
	}
	row := []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.App,
		entry.Task,
		entry.Context,
		entry.Prompt,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("serialize row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("serialize row: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append history row: %w", err)
	}
	return nil
}

// ReadRecent returns up to limit entries, newest first. Read failures
// and malformed rows degrade to fewer (or zero) entries, never an
// error: history display is best-effort.
func (l *Log) ReadRecent(limit int) []domain.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to open history file", "path", l.path, "error", err)
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var entries []domain.HistoryEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("failed to read history row", "path", l.path, "error", err)
			break
		}
		// Skip the header and any short rows left by older schemas.
		if len(row) < len(header) || row[0] == header[0] {
			continue
		}

		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			continue
		}
		entries = append(entries, domain.HistoryEntry{
			Timestamp: ts,
			App:       row[1],
			Task:      row[2],
			Context:   row[3],
			Prompt:    row[4],
		})
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}
