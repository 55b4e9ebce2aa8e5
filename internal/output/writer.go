// Package output persists corpus records as JSON lines across a numbered
// sequence of size-bounded files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corpora-hq/reddit-harvester/internal/domain"
)

const filePrefix = "reddit_data"

// Writer appends records to the active corpus file, rotating to the next
// numbered file once the active one reaches the size ceiling. It is shared
// by all workers; appends are serialized so lines never interleave.
type Writer struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	index   int
	file    *os.File
	size    int64
}

// NewWriter creates the output directory if needed and resumes at the
// first file in the sequence still below the ceiling.
func NewWriter(dir string, maxSize int64) (*Writer, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("rotate size must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	w := &Writer{dir: dir, maxSize: maxSize}
	for {
		info, err := os.Stat(w.path(w.index))
		if err != nil {
			break
		}
		if info.Size() < maxSize {
			break
		}
		w.index++
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Append serializes the record to one line and writes it to the active
// file, rotating first if the ceiling is reached. The returned count is
// the serialized record's byte length (excluding the line terminator),
// which is exactly what callers charge against the byte budget.
func (w *Writer) Append(rec *domain.Record) (int, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	if w.size >= w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	line := append(data, '\n')
	if _, err := w.file.Write(line); err != nil {
		return 0, fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	w.size += int64(len(line))

	return len(data), nil
}

// Close closes the active file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *Writer) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path(w.index), err)
	}
	w.file = nil
	w.index++
	return w.open()
}

func (w *Writer) open() error {
	path := w.path(w.index)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat %s: %w", path, err)
	}
	w.file = file
	w.size = info.Size()
	return nil
}

func (w *Writer) path(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%d.json", filePrefix, index))
}
