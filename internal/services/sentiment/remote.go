package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domsvc "SentiPull/internal/domain/service"
	xhttp "SentiPull/pkg/http"
)

const scorePath = "/sentiment/score"

// RemoteConfig points the remote scorer at a scoring service.
type RemoteConfig struct {
	URL      string
	Timeout  time.Duration
	Attempts int
}

// RemoteScorer delegates scoring to an HTTP service answering
// POST {url}/sentiment/score {"text": ...} with {"compound": x}.
type RemoteScorer struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Compound *float64 `json:"compound"`
}

var _ domsvc.SentimentProvider = (*RemoteScorer)(nil)

func NewRemoteScorer(cfg RemoteConfig, opts ...xhttp.ClientOption) (*RemoteScorer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("sentiment url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &RemoteScorer{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		client:   xhttp.NewClient(append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}, opts...)...),
		attempts: cfg.Attempts,
	}, nil
}

// Score posts text and returns the service's compound polarity.
func (s *RemoteScorer) Score(ctx context.Context, text string) (float64, error) {
	var res scoreResponse
	if err := s.postWithRetry(ctx, scoreRequest{Text: text}, &res); err != nil {
		return 0, fmt.Errorf("remote score: %w", err)
	}
	if res.Compound == nil {
		return 0, fmt.Errorf("remote score: response has no compound")
	}
	return *res.Compound, nil
}

// postWithRetry retries network failures and 5xx answers with linear backoff.
func (s *RemoteScorer) postWithRetry(ctx context.Context, payload, dest interface{}) error {
	var err error
	for i := 1; i <= s.attempts; i++ {
		err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodPost,
			URL:     s.baseURL + scorePath,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    payload,
		}, dest)
		if err == nil || !retryable(err) || i == s.attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
