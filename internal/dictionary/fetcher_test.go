package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/at-ishikawa/isvdict/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPFetcher(t *testing.T) {
	tests := []struct {
		name   string
		config HTTPFetcherConfig
	}{
		{
			name: "valid config",
			config: HTTPFetcherConfig{
				Timeout:   10 * time.Second,
				UserAgent: "isvdict-test",
			},
		},
		{
			name:   "empty config",
			config: HTTPFetcherConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewHTTPFetcher(tt.config)
			assert.NotNil(t, fetcher)
			assert.NotNil(t, fetcher.client)
		})
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotUserAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserAgent = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(testutil.SampleCSV))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(HTTPFetcherConfig{Timeout: 5 * time.Second, UserAgent: "isvdict-test"})
		got, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, testutil.SampleCSV, string(got))
		assert.Equal(t, "isvdict-test", gotUserAgent)
	})

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		timeout        time.Duration
		wantStatusCode int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "not found", http.StatusNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name: "truncated transfer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", "1000")
				_, _ = w.Write([]byte("isv,en\nvoda,water\n"))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			timeout := tt.timeout
			if timeout == 0 {
				timeout = 5 * time.Second
			}
			fetcher := NewHTTPFetcher(HTTPFetcherConfig{Timeout: timeout})
			got, err := fetcher.Fetch(context.Background(), server.URL)
			assert.Nil(t, got)

			var networkErr *NetworkError
			require.True(t, errors.As(err, &networkErr), "want *NetworkError, got %v", err)
			assert.Equal(t, server.URL, networkErr.Source)
			assert.Equal(t, tt.wantStatusCode, networkErr.StatusCode)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		fetcher := NewHTTPFetcher(HTTPFetcherConfig{Timeout: time.Second})
		_, err := fetcher.Fetch(context.Background(), testutil.UnreachableURL(t))

		var networkErr *NetworkError
		assert.True(t, errors.As(err, &networkErr), "want *NetworkError, got %v", err)
	})
}
