// Package reddit implements the content-source client for the public
// Reddit API: OAuth2 token handling, submission fetch with full comment
// expansion, and subreddit listings.
package reddit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	netUrl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/corpora-hq/reddit-harvester/internal/config"
	"github.com/corpora-hq/reddit-harvester/internal/domain"
	"github.com/corpora-hq/reddit-harvester/pkg/httpclient"
)

const (
	defaultAuthBase = "https://www.reddit.com"
	defaultAPIBase  = "https://oauth.reddit.com"

	// Reddit caps listing pages at 100 items per request.
	listingPageSize = 100
	// Upper bound on ids per morechildren call, per API contract.
	moreChildrenBatch = 100

	tokenExpirySlack = 30 * time.Second
)

// Client talks to the Reddit API. Safe for concurrent use; the access
// token is shared and refreshed lazily.
type Client struct {
	http     httpclient.Client
	creds    config.Credentials
	authBase string
	apiBase  string

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New builds a Client with a resty-backed transport.
func New(creds config.Credentials, timeout time.Duration) *Client {
	return NewWithHTTP(creds, httpclient.NewRestyClient(timeout))
}

// NewWithHTTP builds a Client around an injected HTTP client.
func NewWithHTTP(creds config.Credentials, hc httpclient.Client) *Client {
	return &Client{
		http:     hc,
		creds:    creds,
		authBase: defaultAuthBase,
		apiBase:  defaultAPIBase,
	}
}

// Verify performs a token exchange so credential problems surface at
// startup, before any worker is launched.
func (c *Client) Verify(ctx context.Context) error {
	if _, err := c.accessToken(ctx); err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	return nil
}

// Submission fetches the post behind a canonical reddit URL together with
// its fully expanded, flattened comment bodies. Rate limiting is reported
// as domain.ErrRateLimited; any other failure is terminal for the URL.
func (c *Client) Submission(ctx context.Context, url string) (*domain.Submission, error) {
	apiURL, err := c.submissionEndpoint(url)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var pages []listing
	if err := json.Unmarshal(body, &pages); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", url, err)
	}
	if len(pages) < 2 || len(pages[0].Data.Children) == 0 {
		return nil, fmt.Errorf("submission %s: malformed response", url)
	}

	var post postData
	if err := json.Unmarshal(pages[0].Data.Children[0].Data, &post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", url, err)
	}

	comments, moreIDs := flattenComments(pages[1].Data.Children)
	if len(moreIDs) > 0 {
		expanded, err := c.moreChildren(ctx, post.ID, moreIDs)
		if err != nil {
			return nil, err
		}
		comments = append(comments, expanded...)
	}

	return &domain.Submission{
		ID:         post.ID,
		Subreddit:  post.Subreddit,
		Author:     post.Author,
		CreatedUTC: int64(post.CreatedUTC),
		Title:      post.Title,
		SelfText:   post.Selftext,
		URL:        post.URL,
		Comments:   comments,
	}, nil
}

// SubredditNew returns the most recent submissions of a subreddit, newest
// first, up to limit.
func (c *Client) SubredditNew(ctx context.Context, name string, limit int) ([]domain.Link, error) {
	if limit <= 0 {
		return nil, nil
	}

	links := make([]domain.Link, 0, limit)
	after := ""
	for len(links) < limit {
		pageSize := limit - len(links)
		if pageSize > listingPageSize {
			pageSize = listingPageSize
		}
		endpoint := fmt.Sprintf("%s/r/%s/new.json?raw_json=1&limit=%d", c.apiBase, netUrl.PathEscape(name), pageSize)
		if after != "" {
			endpoint += "&after=" + netUrl.QueryEscape(after)
		}

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var page listing
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode listing r/%s: %w", name, err)
		}
		if len(page.Data.Children) == 0 {
			break
		}
		for _, child := range page.Data.Children {
			var post postData
			if err := json.Unmarshal(child.Data, &post); err != nil {
				return nil, fmt.Errorf("decode listing entry r/%s: %w", name, err)
			}
			links = append(links, domain.Link{URL: permalinkURL(post)})
		}
		if page.Data.After == "" {
			break
		}
		after = page.Data.After
	}

	return links, nil
}

// moreChildren resolves truncated comment-tree nodes so callers always see
// the complete flat comment list.
func (c *Client) moreChildren(ctx context.Context, linkID string, ids []string) ([]string, error) {
	var comments []string
	for start := 0; start < len(ids); start += moreChildrenBatch {
		end := start + moreChildrenBatch
		if end > len(ids) {
			end = len(ids)
		}
		endpoint := fmt.Sprintf("%s/api/morechildren.json?api_type=json&raw_json=1&link_id=t3_%s&children=%s",
			c.apiBase, linkID, netUrl.QueryEscape(strings.Join(ids[start:end], ",")))

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var resp moreChildrenResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode morechildren for t3_%s: %w", linkID, err)
		}
		flat, nested := flattenComments(resp.JSON.Data.Things)
		comments = append(comments, flat...)
		if len(nested) > 0 {
			deeper, err := c.moreChildren(ctx, linkID, nested)
			if err != nil {
				return nil, err
			}
			comments = append(comments, deeper...)
		}
	}
	return comments, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, url, map[string]string{
		"Authorization": "Bearer " + token,
		"User-Agent":    c.creds.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", url, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("get %s: %w", url, domain.ErrRateLimited)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}

// accessToken returns a valid bearer token, exchanging credentials when
// the cached one is missing or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.token, nil
	}

	form := map[string]string{"grant_type": "client_credentials"}
	if c.creds.Username != "" {
		form = map[string]string{
			"grant_type": "password",
			"username":   c.creds.Username,
			"password":   c.creds.Password,
		}
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.creds.ClientID + ":" + c.creds.ClientSecret))
	resp, err := c.http.PostForm(ctx, c.authBase+"/api/v1/access_token", map[string]string{
		"Authorization": "Basic " + basic,
		"User-Agent":    c.creds.UserAgent,
	}, form)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", fmt.Errorf("token exchange: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token exchange: status %d", resp.StatusCode())
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// submissionEndpoint maps a canonical submission URL onto the OAuth API
// host's comments endpoint.
func (c *Client) submissionEndpoint(url string) (string, error) {
	u, err := netUrl.Parse(strings.TrimSpace(url))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", url, err)
	}
	host := strings.ToLower(u.Host)
	if host != "www.reddit.com" && host != "reddit.com" && host != "old.reddit.com" &&
		host != "oauth.reddit.com" && host != "redd.it" {
		return "", fmt.Errorf("%q is not a reddit submission url", url)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("%q is not a reddit submission url", url)
	}
	return c.apiBase + path + ".json?raw_json=1", nil
}
