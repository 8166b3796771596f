package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	directoryPermission = 0o750
	maxFrameLine        = 1 << 20
)

// ReadFrames parses a JSON-lines stream of frames. Blank lines are skipped.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrBadFrameLine, line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return frames, nil
}

// ReadFramesFile reads a JSON-lines frames file.
func ReadFramesFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frames file: %w", err)
	}
	defer f.Close()
	return ReadFrames(f)
}

// WriteFrames writes frames as JSON lines.
func WriteFrames(w io.Writer, frames []Frame) error {
	enc := json.NewEncoder(w)
	for i := range frames {
		if err := enc.Encode(&frames[i]); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

// SaveFrames writes frames to path so a run can be replayed later.
func SaveFrames(path string, frames []Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteFrames(f, frames); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
