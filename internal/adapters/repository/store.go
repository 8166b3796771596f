// Package repository keeps the alert log: a bounded in-memory list of recent
// records for the API and an append-only file on disk.
package repository

import (
	"context"

	"github.com/okian/drowsy/internal/domain/model"
)

// Appender accepts alert log records.
type Appender interface {
	Append(ctx context.Context, rec model.LogRecord) error
}

// Store provides read/write access to recent alert log records.
type Store interface {
	Appender

	// Recent returns up to limit records, newest first.
	// Returns ErrInvalidLimit if limit < 1.
	Recent(ctx context.Context, limit int) ([]model.LogRecord, error)

	// Count returns the number of records appended since start.
	Count(ctx context.Context) int64
}
