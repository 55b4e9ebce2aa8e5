// Package crawler is the distributed crawl orchestration engine: work
// partitioning across parallel spiders, shared budget accounting, dedup,
// retry on rate limiting, and coordinated shutdown.
package crawler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/corpora-hq/reddit-harvester/internal/config"
	"github.com/corpora-hq/reddit-harvester/internal/domain"
	"github.com/corpora-hq/reddit-harvester/internal/logger"
	"github.com/corpora-hq/reddit-harvester/internal/storage"
)

// Engine owns the per-worker queues and the shared crawl state. One queue
// per spider; any spider may enqueue into any queue (multi-producer,
// single-consumer), routing via Assign.
type Engine struct {
	cfg     *config.Config
	source  ContentSource
	visited storage.VisitedStore
	writer  RecordWriter
	budget  *Budget
	log     logger.Logger

	queues []chan domain.WorkItem
	// outstanding counts items from enqueue until fully processed, so an
	// item popped from a queue but still being worked on keeps the run
	// alive.
	outstanding atomic.Int64

	pagesWritten atomic.Int64
	bytesWritten atomic.Int64
	dropped      atomic.Int64
}

// NewEngine wires the engine. The caller retains ownership of the writer
// and visited store lifecycles.
func NewEngine(cfg *config.Config, source ContentSource, visited storage.VisitedStore,
	writer RecordWriter, budget *Budget, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	queues := make([]chan domain.WorkItem, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan domain.WorkItem, cfg.QueueCapacity)
	}
	return &Engine{
		cfg:     cfg,
		source:  source,
		visited: visited,
		writer:  writer,
		budget:  budget,
		log:     log,
		queues:  queues,
	}
}

// Seed distributes the initial work items across the queues. Call before Run.
func (e *Engine) Seed(urls []string) {
	for _, url := range urls {
		e.enqueue(domain.WorkItem{URL: url, Hops: e.cfg.HopLimit})
	}
}

// Run starts the spiders and the shutdown coordinator, blocking until
// every spider has stopped.
func (e *Engine) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := &sync.WaitGroup{}
	for i := range e.queues {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			e.spider(runCtx, id)
		}(i)
	}

	coordinatorDone := make(chan struct{})
	go func() {
		defer close(coordinatorDone)
		e.coordinate(runCtx, cancel)
	}()

	wg.Wait()
	cancel()
	<-coordinatorDone
}

// PagesWritten reports how many records were successfully persisted.
func (e *Engine) PagesWritten() int64 { return e.pagesWritten.Load() }

// BytesWritten reports the serialized bytes charged against the budget.
func (e *Engine) BytesWritten() int64 { return e.bytesWritten.Load() }

// ExhaustionReason names why the run ended, for the end-of-run summary.
func (e *Engine) ExhaustionReason() string {
	pages, bytes := e.budget.Snapshot()
	switch {
	case pages <= 0:
		return "all pages processed"
	case bytes <= 0:
		return "size limit reached"
	default:
		return "all workers idle"
	}
}

// enqueue routes the item to its owning queue. Items whose hop budget
// went negative are dropped, as are items that would overflow a full
// queue; blocking here could deadlock a spider enqueueing into its own
// queue.
func (e *Engine) enqueue(item domain.WorkItem) {
	if item.Hops < 0 {
		return
	}
	idx := Assign(item.URL, len(e.queues))
	// Counted before the send so the coordinator can never observe the
	// item in neither place and declare the system idle.
	e.outstanding.Add(1)
	select {
	case e.queues[idx] <- item:
	default:
		e.outstanding.Add(-1)
		e.dropped.Add(1)
		e.log.WarnObj("queue full, dropping discovered item", "drop", map[string]any{
			"queue": idx,
			"url":   item.URL,
		})
	}
}

// pending is the coordinator's view of remaining work: every item from
// enqueue until fully processed. A transiently empty queue therefore
// never terminates the run while another spider is still working.
func (e *Engine) pending() (total int64, depths []int) {
	depths = make([]int, len(e.queues))
	for i, q := range e.queues {
		depths[i] = len(q)
	}
	return e.outstanding.Load(), depths
}
