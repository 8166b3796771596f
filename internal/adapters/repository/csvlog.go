package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/okian/drowsy/internal/domain/model"
)

const fieldSeparator = ", "

// CSVLog appends one line per record to a file, in the form
// "DD-MM-YYYY HH:MM:SS, <status>, <pose>".
type CSVLog struct {
	mu     sync.Mutex
	path   string
	mode   os.FileMode
	file   *os.File
	closed bool
}

// OpenCSVLog opens path for appending, creating it if needed.
func OpenCSVLog(path string, opts ...CSVOption) (*CSVLog, error) {
	l := &CSVLog{path: path, mode: 0o644}
	for _, opt := range opts {
		opt(l)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, l.mode)
	if err != nil {
		return nil, fmt.Errorf("open alert log %s: %w", path, err)
	}
	l.file = f
	return l, nil
}

// Path returns the log file path.
func (l *CSVLog) Path() string { return l.path }

// Append writes rec as one line.
func (l *CSVLog) Append(_ context.Context, rec model.LogRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if _, err := io.WriteString(l.file, rec.String()+"\n"); err != nil {
		return fmt.Errorf("append alert log %s: %w", l.path, err)
	}
	return nil
}

// Close closes the file. Further appends return ErrClosed.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// ReadCSVLog parses the records of an existing log, oldest first. A missing
// file yields no records. Timestamps are read in local time.
func ReadCSVLog(path string) ([]model.LogRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read alert log %s: %w", path, err)
	}
	defer f.Close()

	var out []model.LogRecord
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := ParseLogLine(text)
		if err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read alert log %s: %w", path, err)
	}
	return out, nil
}

// ParseLogLine is the inverse of model.LogRecord.String.
func ParseLogLine(line string) (model.LogRecord, error) {
	parts := strings.SplitN(line, fieldSeparator, 3)
	if len(parts) != 3 {
		return model.LogRecord{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	at, err := time.ParseInLocation(model.LogTimeLayout, parts[0], time.Local)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return model.LogRecord{
		At:     at,
		Status: model.Status(parts[1]),
		Pose:   model.Pose(parts[2]),
	}, nil
}
