package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=fetcher.go -destination=../mocks/dictionary/mock_fetcher.go -package=mock_dictionary

// Fetcher downloads the raw dataset.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// HTTPFetcherConfig configures HTTPFetcher.
type HTTPFetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// HTTPFetcher fetches the dataset with a single GET request. It never retries.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(config HTTPFetcherConfig) *HTTPFetcher {
	client := resty.New()
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		Get(source)
	if err != nil {
		return nil, &NetworkError{Source: source, Cause: fmt.Errorf("client.R.Get > %w", err)}
	}
	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return nil, &NetworkError{Source: source, StatusCode: res.StatusCode()}
	}

	body := res.Body()
	if contentLength := res.RawResponse.ContentLength; contentLength >= 0 && int64(len(body)) != contentLength {
		return nil, &NetworkError{
			Source: source,
			Cause:  fmt.Errorf("truncated transfer: received %d of %d bytes", len(body), contentLength),
		}
	}
	return body, nil
}
