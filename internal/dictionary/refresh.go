package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Origin tells where a refreshed dataset came from.
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginRemote Origin = "remote"
	// OriginStale is an expired cache used because the remote could not be fetched.
	OriginStale Origin = "stale"
)

// RefreshOptions controls EnsureFresh.
type RefreshOptions struct {
	Force bool
	// MaxAge is how long a cache stays fresh. Zero or negative means it never expires.
	MaxAge time.Duration
}

// Refreshed is the dataset returned by EnsureFresh.
type Refreshed struct {
	Dataset  Dataset
	Metadata Metadata
	Origin   Origin
	// Warning is a non-fatal problem, like falling back to a stale cache.
	Warning error
}

// Refresher decides whether the cached dataset can be reused or must be fetched again.
type Refresher struct {
	fetcher Fetcher
	store   Store
	source  string
	now     func() time.Time
	logger  *slog.Logger
}

func NewRefresher(fetcher Fetcher, store Store, source string) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		store:   store,
		source:  source,
		now:     time.Now,
		logger:  slog.Default(),
	}
}

// WithClock replaces the clock used to compute the cache age.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

func (r *Refresher) WithLogger(logger *slog.Logger) *Refresher {
	r.logger = logger
	return r
}

// EnsureFresh returns a dataset, fetching the remote source at most once.
// When the fetch fails, a stale cache is returned with a Warning;
// without any cache an *UnavailableError is returned.
// A payload that cannot be parsed is always a *FormatError.
func (r *Refresher) EnsureFresh(ctx context.Context, options RefreshOptions) (*Refreshed, error) {
	var cached *Refreshed
	if !options.Force {
		cached = r.loadCache(ctx)
		if cached != nil {
			age := cached.Metadata.Age(r.now())
			if options.MaxAge <= 0 || age <= options.MaxAge {
				r.logger.Debug("Using cached dictionary", "age", age, "entries", cached.Metadata.EntryCount)
				return cached, nil
			}
			r.logger.Info("Dictionary cache is stale", "age", age.Round(time.Second), "maxAge", options.MaxAge)
		}
	}

	refreshed, err := r.refresh(ctx)
	if err == nil {
		return refreshed, nil
	}

	var networkErr *NetworkError
	if !errors.As(err, &networkErr) {
		return nil, err
	}
	if options.Force {
		cached = r.loadCache(ctx)
	}
	if cached == nil {
		return nil, &UnavailableError{Cause: err}
	}

	r.logger.Warn("Using stale dictionary cache", "fetchedAt", cached.Metadata.FetchedAt, "error", err)
	cached.Origin = OriginStale
	cached.Warning = fmt.Errorf("using the cache from %s because the dictionary could not be refreshed: %w",
		cached.Metadata.FetchedAt.Format(time.RFC3339), err)
	return cached, nil
}

// loadCache returns nil when there is no usable cache.
func (r *Refresher) loadCache(ctx context.Context) *Refreshed {
	dataset, metadata, err := r.store.Load(ctx)
	switch {
	case err == nil:
		return &Refreshed{Dataset: dataset, Metadata: metadata, Origin: OriginCache}
	case errors.Is(err, ErrNotFound):
		r.logger.Debug("No dictionary cache", "location", r.store.Location())
	case errors.Is(err, ErrCorruptCache):
		r.logger.Warn("Ignoring unreadable dictionary cache", "location", r.store.Location(), "error", err)
	default:
		r.logger.Warn("Failed to read the dictionary cache", "location", r.store.Location(), "error", err)
	}
	return nil
}

func (r *Refresher) refresh(ctx context.Context) (*Refreshed, error) {
	r.logger.Info("Downloading dictionary", "source", r.source)
	startedAt := time.Now()
	raw, err := r.fetcher.Fetch(ctx, r.source)
	if err != nil {
		return nil, fmt.Errorf("fetcher.Fetch > %w", err)
	}

	dataset, report, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("Normalize > %w", err)
	}
	if report.Skipped > 0 {
		r.logger.Info("Skipped rows without an isv headword", "skipped", report.Skipped, "rows", report.Rows)
	}

	metadata := Metadata{
		FetchedAt:      r.now().UTC(),
		EntryCount:     len(dataset),
		SourceIdentity: r.source,
		SchemaVersion:  SchemaVersion,
		Columns:        report.Columns,
		SkippedRows:    report.Skipped,
	}
	refreshed := &Refreshed{Dataset: dataset, Metadata: metadata, Origin: OriginRemote}

	if err := r.store.Save(ctx, dataset, metadata); err != nil {
		r.logger.Warn("Failed to save the dictionary cache", "location", r.store.Location(), "error", err)
		refreshed.Warning = fmt.Errorf("the dictionary was downloaded but could not be cached: %w", err)
	}
	r.logger.Info("Indexed dictionary", "entries", len(dataset), "columns", len(report.Columns), "elapsed", time.Since(startedAt).Round(time.Millisecond))
	return refreshed, nil
}
