package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/isvdict/internal/dictionary"
)

// ErrNoTerms is returned when a lookup has neither search terms nor anything else to do.
var ErrNoTerms = errors.New("at least one search term is required")

// LookupRequest is a single invocation of the dictionary.
type LookupRequest struct {
	Terms          []string
	Language       dictionary.Language
	Format         dictionary.Format
	Refresh        bool
	Info           bool
	Clear          bool
	MaxAge         time.Duration
	FoldDiacritics bool
}

// LookupCLI answers dictionary lookups from the local cache, refreshing it when needed.
type LookupCLI struct {
	store        dictionary.Store
	refresher    *dictionary.Refresher
	stdoutWriter io.Writer
	stderrWriter io.Writer
	warning      *color.Color
}

func NewLookupCLI(fetcher dictionary.Fetcher, store dictionary.Store, source string, stdout, stderr io.Writer) *LookupCLI {
	return &LookupCLI{
		store:        store,
		refresher:    dictionary.NewRefresher(fetcher, store, source),
		stdoutWriter: stdout,
		stderrWriter: stderr,
		warning:      color.New(color.FgYellow, color.Bold),
	}
}

func (cli *LookupCLI) Run(ctx context.Context, req LookupRequest) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	switch {
	case req.Clear:
		return cli.clear(ctx)
	case req.Info:
		return cli.info(ctx, req)
	case len(req.Terms) == 0 && !req.Refresh:
		return ErrNoTerms
	}

	refreshed, err := cli.refresher.EnsureFresh(ctx, dictionary.RefreshOptions{
		Force:  req.Refresh,
		MaxAge: req.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("refresher.EnsureFresh > %w", err)
	}
	if refreshed.Warning != nil {
		_, _ = fmt.Fprintf(cli.stderrWriter, "%s %v\n", cli.warning.Sprint("Warning:"), refreshed.Warning)
	}

	if len(req.Terms) == 0 {
		if refreshed.Origin == dictionary.OriginRemote {
			_, _ = fmt.Fprintf(cli.stdoutWriter, "Dictionary cache refreshed successfully: %d entries.\n", refreshed.Metadata.EntryCount)
		}
		return nil
	}

	entries := dictionary.Search(refreshed.Dataset, dictionary.Query{
		Terms:          req.Terms,
		Language:       req.Language,
		FoldDiacritics: req.FoldDiacritics,
	})
	output, err := dictionary.Render(entries, req.Format)
	if err != nil {
		return fmt.Errorf("dictionary.Render > %w", err)
	}
	_, err = io.WriteString(cli.stdoutWriter, output)
	return err
}

func (cli *LookupCLI) clear(ctx context.Context) error {
	if err := cli.store.Clear(ctx); err != nil {
		return fmt.Errorf("store.Clear > %w", err)
	}
	_, _ = fmt.Fprintf(cli.stdoutWriter, "Removed the dictionary cache at %s.\n", cli.store.Location())
	return nil
}

func (cli *LookupCLI) info(ctx context.Context, req LookupRequest) error {
	info, err := dictionary.NewInspector(cli.store, req.MaxAge).Describe(ctx)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) || errors.Is(err, dictionary.ErrCorruptCache) {
			_, _ = fmt.Fprintf(cli.stdoutWriter, "No dictionary cache found at %s. Run with --refresh to download.\n", cli.store.Location())
			return nil
		}
		return fmt.Errorf("inspector.Describe > %w", err)
	}

	output, err := info.Render(req.Format)
	if err != nil {
		return fmt.Errorf("info.Render > %w", err)
	}
	_, err = io.WriteString(cli.stdoutWriter, output)
	return err
}
