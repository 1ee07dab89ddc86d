package dictionary

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CacheInfo is what Inspector reports about the local cache.
type CacheInfo struct {
	Metadata `yaml:",inline"`
	Location string        `json:"location" yaml:"location"`
	Age      time.Duration `json:"-" yaml:"-"`
	AgeText  string        `json:"age" yaml:"age"`
	Stale    bool          `json:"stale" yaml:"stale"`
}

// Inspector describes the cache without ever contacting the remote source.
type Inspector struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
}

func NewInspector(store Store, maxAge time.Duration) *Inspector {
	return &Inspector{store: store, maxAge: maxAge, now: time.Now}
}

// Describe returns ErrNotFound when there is no cache.
func (i *Inspector) Describe(ctx context.Context) (CacheInfo, error) {
	metadata, err := i.store.Info(ctx)
	if err != nil {
		return CacheInfo{}, fmt.Errorf("store.Info > %w", err)
	}

	age := metadata.Age(i.now())
	return CacheInfo{
		Metadata: metadata,
		Location: i.store.Location(),
		Age:      age,
		AgeText:  age.Round(time.Second).String(),
		Stale:    i.maxAge > 0 && age > i.maxAge,
	}, nil
}

// Render prints the cache info in the given format.
func (info CacheInfo) Render(format Format) (string, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return renderStructured(info, format)
	}

	freshness := "fresh"
	if info.Stale {
		freshness = "stale"
	}
	text := fmt.Sprintf(`Interslavic Dictionary Cache Info
----------------------------------------
Last downloaded: %s (%s ago, %s)
Entries: %d
Skipped rows: %d
Source: %s
Schema version: %d
Cache location: %s
`,
		info.FetchedAt.Local().Format(time.RFC3339), info.AgeText, freshness,
		info.EntryCount,
		info.SkippedRows,
		info.SourceIdentity,
		info.SchemaVersion,
		info.Location,
	)
	if len(info.Columns) > 0 {
		text += fmt.Sprintf("Columns: %s\n", strings.Join(info.Columns, ", "))
	}
	return text, nil
}
