package crawler

import (
	"context"

	"github.com/corpora-hq/reddit-harvester/internal/domain"
)

// ContentSource is the upstream the spiders fetch from. Implementations
// must return comment trees fully expanded and signal throttling with
// domain.ErrRateLimited, distinct from all other errors.
type ContentSource interface {
	Submission(ctx context.Context, url string) (*domain.Submission, error)
	SubredditNew(ctx context.Context, name string, limit int) ([]domain.Link, error)
}

// RecordWriter persists one corpus record and reports its serialized byte
// length for budget accounting.
type RecordWriter interface {
	Append(rec *domain.Record) (int, error)
}
