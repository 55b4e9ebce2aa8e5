package reddit

import (
	"encoding/json"
	"strings"
)

// Wire shapes for the subset of the Reddit API the harvester consumes.

type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
}

type commentData struct {
	Body string `json:"body"`
	// Replies is either a nested listing or the empty string.
	Replies json.RawMessage `json:"replies"`
	// Children holds comment ids when the node kind is "more".
	Children []string `json:"children"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type moreChildrenResponse struct {
	JSON struct {
		Data struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// flattenComments walks a comment forest depth-first, collecting comment
// bodies in order and the ids of truncated "more" nodes for later
// expansion.
func flattenComments(children []thing) (bodies []string, moreIDs []string) {
	for _, child := range children {
		switch child.Kind {
		case "t1":
			var c commentData
			if err := json.Unmarshal(child.Data, &c); err != nil {
				continue
			}
			bodies = append(bodies, c.Body)
			if nested := decodeReplies(c.Replies); len(nested) > 0 {
				nestedBodies, nestedMore := flattenComments(nested)
				bodies = append(bodies, nestedBodies...)
				moreIDs = append(moreIDs, nestedMore...)
			}
		case "more":
			var c commentData
			if err := json.Unmarshal(child.Data, &c); err != nil {
				continue
			}
			moreIDs = append(moreIDs, c.Children...)
		}
	}
	return bodies, moreIDs
}

// decodeReplies handles the API quirk of replies being "" when absent.
func decodeReplies(raw json.RawMessage) []thing {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == `""` || trimmed == "null" {
		return nil
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil
	}
	return l.Data.Children
}

// permalinkURL prefers the canonical permalink over the outbound URL so
// link posts still route to their comment page.
func permalinkURL(p postData) string {
	if p.Permalink != "" {
		return "https://www.reddit.com" + p.Permalink
	}
	return p.URL
}
