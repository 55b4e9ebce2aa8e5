package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/corpora-hq/reddit-harvester/internal/config"
	"github.com/corpora-hq/reddit-harvester/internal/logger"
)

func TestLoadSeedsTrimsAndSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := "  https://www.reddit.com/r/a/comments/1/x/  \n\nhttps://www.reddit.com/r/b/comments/2/y/\n\t\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seeds: %v", err)
	}

	seeds, err := loadSeeds(path)
	if err != nil {
		t.Fatalf("loadSeeds: %v", err)
	}
	want := []string{
		"https://www.reddit.com/r/a/comments/1/x/",
		"https://www.reddit.com/r/b/comments/2/y/",
	}
	if !reflect.DeepEqual(seeds, want) {
		t.Fatalf("loadSeeds returned %v, want %v", seeds, want)
	}
}

func TestLoadSeedsMissingFile(t *testing.T) {
	if _, err := loadSeeds(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatalf("expected error for missing seed file")
	}
}

func TestNewHarvesterFailsFastOnMissingSeedFile(t *testing.T) {
	cfg := &config.Config{
		SeedFile: filepath.Join(t.TempDir(), "absent.txt"),
	}
	_, err := NewHarvester(context.Background(), cfg, logger.NopLogger{})
	if err == nil || !strings.Contains(err.Error(), "seed file") {
		t.Fatalf("expected seed file error, got %v", err)
	}
}
