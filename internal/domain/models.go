package domain

import "errors"

// Domain contains core models shared across the harvester.

// ErrRateLimited signals that the content source throttled the request.
// Callers may retry after a backoff; every other fetch error is terminal
// for the item.
var ErrRateLimited = errors.New("content source rate limited")

// WorkItem is a pending submission URL together with its remaining hop
// budget. An item with zero hops is still fetched but yields no further
// work.
type WorkItem struct {
	URL  string
	Hops int
}

// Submission is what the content source hands back for one post. Comments
// arrive as a flat, fully expanded list of bodies; truncated trees are not
// acceptable input.
type Submission struct {
	ID         string
	Subreddit  string
	Author     string
	CreatedUTC int64
	Title      string
	SelfText   string
	URL        string
	Comments   []string
}

// Link is one entry of a subreddit listing.
type Link struct {
	URL string
}

// Record is the persisted corpus line for one successfully fetched
// submission. Immutable after creation, written exactly once.
type Record struct {
	ID            string   `json:"id"`
	Subreddit     string   `json:"subreddit"`
	Author        string   `json:"author,omitempty"`
	CreatedUTC    int64    `json:"created_utc"`
	Title         string   `json:"title"`
	SelfText      string   `json:"selftext"`
	URL           string   `json:"url"`
	Comments      []string `json:"comments"`
	ExternalLinks []string `json:"external_links"`
}
