package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/corpora-hq/reddit-harvester/internal/config"
	"github.com/corpora-hq/reddit-harvester/internal/crawler"
	"github.com/corpora-hq/reddit-harvester/internal/logger"
	"github.com/corpora-hq/reddit-harvester/internal/output"
	"github.com/corpora-hq/reddit-harvester/internal/reddit"
	"github.com/corpora-hq/reddit-harvester/internal/storage"
)

// Harvester represents the crawl runtime. It wires the content source,
// visited store, output writer, and the crawl engine, runs the crawl to
// completion, and prints the end-of-run summary.
type Harvester struct {
	cfg    *config.Config
	log    logger.Logger
	engine *crawler.Engine
	budget *crawler.Budget
	store  storage.VisitedStore
	writer *output.Writer
	seeds  []string
}

// NewHarvester builds the runtime from config. Credential and seed-file
// problems surface here, before any worker starts.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	seeds, err := loadSeeds(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	log.InfoObj("seeds loaded", "seeds_meta", map[string]any{
		"count": len(seeds),
		"file":  cfg.SeedFile,
	})

	store, err := storage.NewStore(cfg.VisitedStoreType, cfg.BBoltPath, storage.Options{
		VisitedTTL:      cfg.VisitedTTL,
		CleanupInterval: cfg.VisitedCleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("init visited store: %w", err)
	}

	writer, err := output.NewWriter(cfg.OutputDir, cfg.RotateSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init output writer: %w", err)
	}

	client := reddit.New(cfg.Credentials, cfg.RequestTimeout)
	if err := client.Verify(ctx); err != nil {
		store.Close()
		writer.Close()
		return nil, err
	}
	log.InfoObj("content source authenticated", "source_meta", map[string]any{
		"user_agent": cfg.Credentials.UserAgent,
	})

	budget := crawler.NewBudget(cfg.MaxPages, cfg.MaxBytes)
	engine := crawler.NewEngine(cfg, client, store, writer, budget, log)

	return &Harvester{
		cfg:    cfg,
		log:    log,
		engine: engine,
		budget: budget,
		store:  store,
		writer: writer,
		seeds:  seeds,
	}, nil
}

// Run executes the crawl until budget exhaustion or global idleness and
// prints the summary.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.engine == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.closeAll()

	start := time.Now()
	h.log.InfoObj("crawl starting", "crawl_meta", map[string]any{
		"seeds":     len(h.seeds),
		"workers":   h.cfg.Workers,
		"hop_limit": h.cfg.HopLimit,
	})

	h.engine.Seed(h.seeds)
	h.engine.Run(ctx)

	elapsed := time.Since(start)
	h.log.InfoObj("crawl finished", "crawl_result", map[string]any{
		"reason":          h.engine.ExhaustionReason(),
		"pages_written":   h.engine.PagesWritten(),
		"bytes_processed": h.engine.BytesWritten(),
		"elapsed_ms":      elapsed.Milliseconds(),
	})
	fmt.Printf("%s\n", h.engine.ExhaustionReason())
	fmt.Printf("Processed %d bytes in %.2f seconds\n", h.engine.BytesWritten(), elapsed.Seconds())
	return nil
}

// closeAll releases the writer and visited store, logging any errors.
func (h *Harvester) closeAll() {
	if h.writer != nil {
		if err := h.writer.Close(); err != nil {
			h.log.ErrorObj("output writer close failed", "error", err.Error())
		}
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			h.log.ErrorObj("visited store close failed", "error", err.Error())
		}
	}
}

// loadSeeds reads one identifier per line, trimming surrounding
// whitespace and skipping blank lines. A missing file is fatal.
func loadSeeds(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	defer file.Close()

	var seeds []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return seeds, nil
}
