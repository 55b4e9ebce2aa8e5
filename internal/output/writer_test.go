package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corpora-hq/reddit-harvester/internal/domain"
)

func record(id string, comment string) *domain.Record {
	return &domain.Record{
		ID:         id,
		Subreddit:  "testsub",
		Author:     "someone",
		CreatedUTC: 1700000000,
		Title:      "title " + id,
		URL:        "https://reddit.com/r/testsub/" + id,
		Comments:   []string{comment},
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		n++
	}
	return n
}

func TestAppendReturnsSerializedLength(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 1024*1024)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	rec := record("abc", "hello")
	n, err := w.Append(rec)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, _ := json.Marshal(rec)
	if n != len(data) {
		t.Fatalf("Append returned %d bytes, serialized record is %d", n, len(data))
	}
}

func TestRotationCeiling(t *testing.T) {
	dir := t.TempDir()
	const ceiling = 512
	w, err := NewWriter(dir, ceiling)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	total := 0
	for i := 0; i < 20; i++ {
		rec := record(fmt.Sprintf("id%02d", i), strings.Repeat("x", 64))
		n, err := w.Append(rec)
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		total++
		// No file may exceed the ceiling by more than one record.
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			info, _ := e.Info()
			if info.Size() > int64(ceiling+n+1) {
				t.Fatalf("file %s grew to %d bytes, ceiling %d", e.Name(), info.Size(), ceiling)
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected rotation to produce multiple files, got %d", len(entries))
	}

	lines := 0
	for _, e := range entries {
		lines += countLines(t, filepath.Join(dir, e.Name()))
	}
	if lines != total {
		t.Fatalf("total line count %d, expected %d", lines, total)
	}
}

func TestResumeSkipsFullFiles(t *testing.T) {
	dir := t.TempDir()
	const ceiling = 100

	full := filepath.Join(dir, "reddit_data_0.json")
	if err := os.WriteFile(full, []byte(strings.Repeat("y", ceiling)), 0o644); err != nil {
		t.Fatalf("seed full file: %v", err)
	}

	w, err := NewWriter(dir, ceiling)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	if _, err := w.Append(record("z", "c")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != ceiling {
		t.Fatalf("full file was modified, size %d", info.Size())
	}
	if _, err := os.Stat(filepath.Join(dir, "reddit_data_1.json")); err != nil {
		t.Fatalf("expected writer to resume at next index: %v", err)
	}
}

func TestAppendAfterClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 1024)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Append(record("a", "b")); err == nil {
		t.Fatalf("expected error on append after close")
	}
}
