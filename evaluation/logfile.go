package evaluation

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// Log is the append-only CSV evaluation log. Every Append adds exactly
// one data row; the header is written once, when the file is created.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog creates a Log writing to path. The file itself is created
// lazily on first Append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record to the log, creating the file with a header
// row if it does not exist yet.
func (l *Log) Append(record *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)
	if statErr != nil && !writeHeader {
		return fmt.Errorf("failed to stat evaluation log: %w", statErr)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open evaluation log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(logHeader); err != nil {
			return fmt.Errorf("failed to write evaluation log header: %w", err)
		}
	}
	if err := w.Write(record.Row()); err != nil {
		return fmt.Errorf("failed to write evaluation log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush evaluation log: %w", err)
	}
	return f.Close()
}

// Export rewrites the whole log to dest from scratch, overwriting any
// existing file. An empty log exports just the header.
func (l *Log) Export(dest string) error {
	rows, err := l.ReadAll()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		rows = [][]string{logHeader}
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return f.Close()
}

// ReadAll returns every row of the log including the header. A log that
// was never written reads as empty.
func (l *Log) ReadAll() ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open evaluation log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation log: %w", err)
	}
	return rows, nil
}
