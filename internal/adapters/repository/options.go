package repository

import "os"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets how many records the store keeps.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// CSVOption applies a configuration option to the CSVLog.
type CSVOption func(*CSVLog)

// WithFileMode sets the permissions used when the log file is created.
func WithFileMode(mode os.FileMode) CSVOption {
	return func(l *CSVLog) {
		l.mode = mode
	}
}
