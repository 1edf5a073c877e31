package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	xhttp "SentiPull/pkg/http"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "sentipull/1.0"
	DefaultLimit     = 100
	maxListingLimit  = 100
)

// Config configures the listing client.
type Config struct {
	BaseURL   string
	UserAgent string
	Limit     int
	Timeout   time.Duration
}

// Client fetches the hot listing of a subreddit.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limit   int
}

var _ drepo.PostSource = (*Client)(nil)

// New creates a listing client. Zero config values fall back to the defaults.
func New(cfg Config, opts ...xhttp.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Limit <= 0 || cfg.Limit > maxListingLimit {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base := []xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout), xhttp.WithUserAgent(cfg.UserAgent)}
	return &Client{
		http:    xhttp.NewClient(append(base, opts...)...),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limit:   cfg.Limit,
	}
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
				Score    int    `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Label returns the row source label of a subreddit, e.g. "r/stocks".
func (c *Client) Label(source string) string {
	return "r/" + strings.TrimPrefix(source, "r/")
}

// Fetch returns up to the configured limit of hot posts. Negative scores are clamped to 0.
func (c *Client) Fetch(ctx context.Context, source string) ([]models.RawPost, error) {
	sub := strings.TrimPrefix(source, "r/")
	if sub == "" {
		return nil, &models.FetchError{Source: source, Err: fmt.Errorf("empty subreddit name")}
	}

	var l listing
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/r/%s/hot.json", c.baseURL, url.PathEscape(sub)),
		QueryParams: map[string][]string{
			"limit": {strconv.Itoa(c.limit)},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &l)
	if err != nil {
		return nil, &models.FetchError{Source: source, Err: err}
	}

	posts := make([]models.RawPost, 0, len(l.Data.Children))
	for _, ch := range l.Data.Children {
		if len(posts) == c.limit {
			break
		}
		score := ch.Data.Score
		if score < 0 {
			score = 0
		}
		posts = append(posts, models.RawPost{
			Text:    ch.Data.Title + " " + ch.Data.Selftext,
			Upvotes: score,
		})
	}
	return posts, nil
}
