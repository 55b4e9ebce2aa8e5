package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/corpora-hq/reddit-harvester/internal/domain"
	"github.com/corpora-hq/reddit-harvester/internal/extract"
)

// spider is the per-worker control loop. It stops when the budget is
// exhausted, the run is cancelled, or its queue stays empty past the idle
// timeout. Cancellation is only observed between items, never mid-fetch.
func (e *Engine) spider(ctx context.Context, id int) {
	e.log.DebugObj("spider started", "spider", id)
	queue := e.queues[id]

	for {
		if e.budget.Exhausted() {
			e.log.DebugObj("spider stopping, budget exhausted", "spider", id)
			return
		}

		idle := time.NewTimer(e.cfg.IdleTimeout)
		select {
		case <-ctx.Done():
			idle.Stop()
			return
		case <-idle.C:
			e.log.DebugObj("spider stopping, idle timeout", "spider", id)
			return
		case item := <-queue:
			idle.Stop()
			e.process(ctx, id, item)
			e.outstanding.Add(-1)
		}
	}
}

// process runs one work item through dedup, fetch, expansion, and
// persistence.
func (e *Engine) process(ctx context.Context, id int, item domain.WorkItem) {
	first, err := e.visited.Visit(item.URL)
	if err != nil {
		e.log.ErrorObj("visited-set lookup failed, abandoning item", "visit_error", map[string]any{
			"spider": id,
			"url":    item.URL,
			"error":  err.Error(),
		})
		return
	}
	if !first {
		e.log.DebugObj("already visited", "url", item.URL)
		return
	}

	sub, ok := e.fetchWithRetry(ctx, id, item.URL)
	if !ok {
		return
	}

	record := e.expand(ctx, sub, item.Hops)

	n, err := e.writer.Append(record)
	if err != nil {
		// Record dropped; the page must not be counted as delivered.
		e.log.ErrorObj("record write failed", "write_error", map[string]any{
			"spider": id,
			"url":    item.URL,
			"error":  err.Error(),
		})
		return
	}
	// The snapshot gate is allowed to be stale by one decrement, so a
	// worker can land one record past true exhaustion; such a record is
	// not counted as delivered.
	if e.budget.TryChargePage() {
		e.pagesWritten.Add(1)
	}
	e.budget.ChargeBytes(int64(n))
	e.bytesWritten.Add(int64(n))
}

// fetchWithRetry fetches the submission, sleeping a fixed backoff and
// retrying on rate limiting up to the configured ceiling. Every other
// error abandons the item: logged, not requeued, not charged.
func (e *Engine) fetchWithRetry(ctx context.Context, id int, url string) (*domain.Submission, bool) {
	for attempt := 0; ; attempt++ {
		sub, err := e.source.Submission(ctx, url)
		if err == nil {
			return sub, true
		}
		if errors.Is(err, domain.ErrRateLimited) && attempt < e.cfg.RateLimitRetries {
			e.log.WarnObj("rate limited, backing off", "rate_limit", map[string]any{
				"spider":  id,
				"url":     url,
				"attempt": attempt + 1,
			})
			backoff := time.NewTimer(e.cfg.RateLimitBackoff)
			select {
			case <-ctx.Done():
				backoff.Stop()
				return nil, false
			case <-backoff.C:
			}
			continue
		}
		e.log.ErrorObj("fetch failed, abandoning item", "fetch_error", map[string]any{
			"spider": id,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, false
	}
}

// expand runs the content extractor over the self-text and comment bodies,
// follows subreddit mentions and raw links, and assembles the record.
// Discovered items re-enter the queues with one hop fewer; at zero hops
// nothing new is enqueued.
func (e *Engine) expand(ctx context.Context, sub *domain.Submission, hops int) *domain.Record {
	texts := make([]string, 0, len(sub.Comments)+1)
	texts = append(texts, sub.SelfText)
	texts = append(texts, sub.Comments...)

	nextHops := hops - 1

	if nextHops >= 0 {
		seen := make(map[string]struct{})
		for _, text := range texts {
			for _, name := range extract.Mentions(text) {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				links, err := e.source.SubredditNew(ctx, name, e.cfg.SubredditFetchLimit)
				if err != nil {
					e.log.WarnObj("subreddit listing failed", "listing_error", map[string]any{
						"subreddit": name,
						"error":     err.Error(),
					})
					continue
				}
				for _, link := range links {
					e.enqueue(domain.WorkItem{URL: link.URL, Hops: nextHops})
				}
			}
		}
	}

	externalLinks := []string{}
	for _, text := range texts {
		for _, raw := range extract.Links(text) {
			resolved, err := e.source.Submission(ctx, raw)
			if err != nil {
				externalLinks = append(externalLinks, raw)
				continue
			}
			if nextHops >= 0 {
				e.enqueue(domain.WorkItem{URL: resolved.URL, Hops: nextHops})
			}
		}
	}

	comments := sub.Comments
	if comments == nil {
		// Keep corpus lines self-describing: empty arrays, never null.
		comments = []string{}
	}

	return &domain.Record{
		ID:            sub.ID,
		Subreddit:     sub.Subreddit,
		Author:        sub.Author,
		CreatedUTC:    sub.CreatedUTC,
		Title:         sub.Title,
		SelfText:      sub.SelfText,
		URL:           sub.URL,
		Comments:      comments,
		ExternalLinks: externalLinks,
	}
}
