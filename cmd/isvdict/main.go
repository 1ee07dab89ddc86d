package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/isvdict/internal/cli"
	"github.com/at-ishikawa/isvdict/internal/dictionary"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func newRootCommand() *cobra.Command {
	var (
		lang           languageFlag
		format         formatFlag
		asJSON         bool
		refresh        bool
		info           bool
		clearCache     bool
		maxAge         time.Duration
		foldDiacritics bool
		noColor        bool
	)

	command := &cobra.Command{
		Use:   "isvdict [flags] [terms...]",
		Short: "Search the Interslavic cross-language dictionary",
		Long: `Search the Interslavic dictionary by Interslavic headword or by a translation
in any of its languages. The dictionary is downloaded once and cached locally.`,
		Example: `  isvdict water              Search for "water" in all languages
  isvdict --lang ru вода     Search Interslavic headwords and Russian translations
  isvdict --refresh water    Force refresh the cache, then search
  isvdict --json water fire  Output results as JSON
  isvdict --info             Show cache information`,
		Args: func(cmd *cobra.Command, args []string) error {
			if (info || clearCache) && len(args) > 0 {
				return fmt.Errorf("--info and --clear do not take search terms")
			}
			if len(args) == 0 && !refresh && !info && !clearCache {
				return cli.ErrNoTerms
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			setupLogger(debugMode)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			req := cli.LookupRequest{
				Terms:          args,
				Language:       dictionary.Language(lang),
				Format:         dictionary.Format(cfg.Output.Format),
				Refresh:        refresh,
				Info:           info,
				Clear:          clearCache,
				MaxAge:         cfg.Cache.MaxAge,
				FoldDiacritics: cfg.Search.FoldDiacritics,
			}
			flags := cmd.Flags()
			if flags.Changed("format") {
				req.Format = dictionary.Format(format)
			}
			if asJSON {
				req.Format = dictionary.FormatJSON
			}
			if flags.Changed("max-age") {
				if maxAge < 0 {
					return fmt.Errorf("--max-age must not be negative: %s", maxAge)
				}
				req.MaxAge = maxAge
			}
			if flags.Changed("fold-diacritics") {
				req.FoldDiacritics = foldDiacritics
			}
			if noColor || !cfg.Output.Color || req.Format.Structured() {
				color.NoColor = true
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg.Cache)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					slog.Warn("Failed to close the dictionary cache", "error", err)
				}
			}()

			fetcher := dictionary.NewHTTPFetcher(dictionary.HTTPFetcherConfig{
				Timeout:   cfg.Dictionary.Timeout,
				UserAgent: cfg.Dictionary.UserAgent,
			})
			return cli.NewLookupCLI(fetcher, store, cfg.Dictionary.SourceURL, cmd.OutOrStdout(), cmd.ErrOrStderr()).
				Run(ctx, req)
		},
	}

	persistentFlags := command.PersistentFlags()
	persistentFlags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/isvdict/config.yml)")
	persistentFlags.BoolVar(&debugMode, "debug", false, "Enable debug logging")

	flags := command.Flags()
	flags.Var(&lang, "lang", fmt.Sprintf("Match translations in this language only. Possible values are %v", dictionary.Languages))
	flags.Var(&format, "format", fmt.Sprintf("Output format. Possible values are %v (default from config)", dictionary.Formats))
	flags.BoolVar(&asJSON, "json", false, "Output results as JSON (same as --format json)")
	flags.BoolVar(&refresh, "refresh", false, "Force re-download of the dictionary")
	flags.BoolVar(&info, "info", false, "Show information about the cached dictionary")
	flags.BoolVar(&clearCache, "clear", false, "Delete the cached dictionary")
	flags.DurationVar(&maxAge, "max-age", 0, "How long the cache stays fresh, 0 means forever (default from config, 168h)")
	flags.BoolVar(&foldDiacritics, "fold-diacritics", false, "Ignore Interslavic diacritics when matching headwords")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	command.MarkFlagsMutuallyExclusive("info", "clear", "refresh")
	command.MarkFlagsMutuallyExclusive("json", "format")

	return command
}
