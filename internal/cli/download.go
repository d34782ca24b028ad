package cli

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/catalog"
	"github.com/glorpus-work/shelfsync/pkg/config"
	"github.com/glorpus-work/shelfsync/pkg/interrupt"
	"github.com/glorpus-work/shelfsync/pkg/planner"
	"github.com/glorpus-work/shelfsync/pkg/platform"
	"github.com/glorpus-work/shelfsync/pkg/retry"
	"github.com/glorpus-work/shelfsync/pkg/transfer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type downloadOptions struct {
	directory     string
	manifest      string
	update        bool
	noVerify      bool
	removeInvalid bool
	skipErrors    bool
	noExtras      bool

	os              []string
	languages       []string
	englishFallback bool
	excludeLanguage string
	only            []string
	without         []string

	retry        int
	retryDelay   time.Duration
	idleTimeout  time.Duration
	chunkSizeMB  int
	bandwidth    string
	storageClass string
}

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the game library",
		Long: `Download installers and extras of every owned game into a local
directory or an s3:// bucket. Files already present are verified and
skipped, partial files are resumed.

Press CTRL+C once to stop after the current file, twice to abort it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDownload(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.directory, "directory", "d", "", "Target directory or s3://bucket/prefix (defaults to config)")
	flags.StringVar(&opts.manifest, "manifest", "", "Read games from a YAML manifest instead of the local catalog")
	flags.BoolVarP(&opts.update, "update", "u", false, "Import the manifest into the local catalog before downloading")
	flags.BoolVar(&opts.noVerify, "no-verify", false, "Keep existing files without checking their content")
	flags.BoolVar(&opts.removeInvalid, "remove-invalid", false, "Remove files failing verification and download them once more")
	flags.BoolVar(&opts.skipErrors, "skip-errors", false, "Continue with the next file when one keeps failing")
	flags.BoolVar(&opts.noExtras, "no-extras", false, "Skip extras such as manuals and soundtracks")

	flags.StringSliceVarP(&opts.os, "os", "o", nil, "Download only installers for these operating systems (windows, mac, linux)")
	flags.StringSliceVarP(&opts.languages, "language", "l", nil, "Download only installers in these languages, see the languages command")
	flags.BoolVar(&opts.englishFallback, "language-fallback-english", false, "Download English installers when the requested language is missing")
	flags.StringVar(&opts.excludeLanguage, "exclude-game-with-language", "", "Skip games that have an installer in this language")
	flags.StringSliceVar(&opts.only, "only", nil, "Download only games with these titles")
	flags.StringSliceVar(&opts.without, "without", nil, "Skip games with these titles")

	flags.IntVar(&opts.retry, "retry", config.DefaultRetry, "Number of attempts per file")
	flags.DurationVar(&opts.retryDelay, "retry-delay", config.DefaultRetryDelay, "Delay between attempts")
	flags.DurationVar(&opts.idleTimeout, "idle-timeout", config.DefaultIdleTimeout, "Abort a request after this long without data")
	flags.IntVar(&opts.chunkSizeMB, "chunk-size", config.DefaultChunkSizeMB, "Write chunk size in MB, at least 5")
	flags.StringVarP(&opts.bandwidth, "bandwidth", "b", "", "Maximum download speed in bytes, k and m suffixes are accepted (e.g. 200k or 4m)")
	flags.StringVar(&opts.storageClass, "s3-storage-class", "", "Storage class of uploaded objects")

	return cmd
}

// merge overrides the configuration with the flags set on the command line.
func (o *downloadOptions) merge(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if o.directory != "" {
		cfg.Settings.DownloadDir = o.directory
	}
	if changed("retry") {
		cfg.Settings.Retry = o.retry
	}
	if changed("retry-delay") {
		cfg.Settings.RetryDelay = o.retryDelay
	}
	if changed("idle-timeout") {
		cfg.Settings.IdleTimeout = o.idleTimeout
	}
	if changed("chunk-size") {
		cfg.Settings.ChunkSizeMB = o.chunkSizeMB
	}
	if changed("bandwidth") {
		cfg.Settings.Bandwidth = o.bandwidth
	}
	if changed("s3-storage-class") {
		cfg.Storage.StorageClass = o.storageClass
	}
	return cfg.Validate()
}

func (o *downloadOptions) filter() (platform.Filter, error) {
	osList, err := platform.ParseOS(o.os)
	if err != nil {
		return platform.Filter{}, err
	}
	languages, err := platform.ParseLanguages(o.languages)
	if err != nil {
		return platform.Filter{}, err
	}
	var exclude string
	if o.excludeLanguage != "" {
		excluded, err := platform.ParseLanguages([]string{o.excludeLanguage})
		if err != nil {
			return platform.Filter{}, err
		}
		exclude = excluded[0]
	}
	return platform.Filter{
		OS:              osList,
		Languages:       languages,
		EnglishFallback: o.englishFallback,
		ExcludeLanguage: exclude,
	}, nil
}

func runDownload(cmd *cobra.Command, opts *downloadOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := opts.merge(cmd, cfg); err != nil {
		return err
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}
	if filter.NeedsFallbackHint() {
		logger.Warn("Multiple language versions are often shipped inside the English one. Those files will be skipped. " +
			"Specify --language-fallback-english to include English versions if your language's version doesn't exist.")
	}
	bandwidth, err := config.ParseBandwidth(cfg.Settings.Bandwidth)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	source, store, err := openSource(ctx, cfg, opts.manifest, opts.update)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	games, err := source.Games(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}

	sel := selection{
		filter:  filter,
		only:    opts.only,
		without: opts.without,
		extras:  !opts.noExtras,
		root:    cfg.Settings.DownloadDir,
	}
	jobs := sel.jobs(games)
	logger.Infof("%d files selected from %d games", len(jobs), len(games))

	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}
	if err := checkTarget(locator, cfg.Settings.DownloadDir); err != nil {
		return err
	}

	guard := interrupt.NewGuard()
	renderer := newProgressRenderer()
	defer renderer.stop()

	var stored uint64
	p := &planner.Planner{
		DL: transfer.NewClient(cfg.Catalog.BaseURL, cfg.Authorizer(),
			transfer.WithIdleTimeout(cfg.Settings.IdleTimeout),
			transfer.WithUserAgent("shelfsync/"+Version)),
		Locator: locator,
		Retrier: retry.New(debugMode()),
		Guard:   guard,
		Hooks: planner.Hooks{
			OnProgress: renderer.update,
			OnEvent: func(e planner.Event) {
				if e.Phase == planner.PhaseDone {
					stored += uint64(e.Entry.Size())
				}
				handleEvent(ctx, renderer, store, e)
			},
		},
	}
	runOpts := planner.Options{
		NoVerify:      opts.noVerify,
		RemoveInvalid: opts.removeInvalid,
		ChunkSize:     cfg.Settings.ChunkSize(),
		Retry:         cfg.Settings.Retry,
		RetryDelay:    cfg.Settings.RetryDelay,
		SkipErrors:    opts.skipErrors,
		Bandwidth:     bandwidth,
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		return guard.Watch(gctx, os.Interrupt, syscall.SIGTERM)
	})

	var summary planner.Summary
	g.Go(func() error {
		defer stopWatch()
		var runErr error
		summary, runErr = p.Run(ctx, jobs, runOpts)
		return runErr
	})
	err = g.Wait()
	renderer.stop()

	logger.Info(fmt.Sprintf("%d downloaded (%s), %d skipped, %d failed",
		summary.Downloaded, humanize.IBytes(stored), summary.Skipped, summary.Failed))
	if err != nil {
		return err
	}
	logger.Success("Library is up to date")
	return nil
}

// handleEvent reports planner events and remembers digests learned for
// entries the catalog had none for.
func handleEvent(ctx context.Context, renderer *progressRenderer, store *catalog.Store, e planner.Event) {
	switch e.Phase {
	case planner.PhaseDownloading:
		logger.Infof("%s: downloading", e.Entry.Describe())
	case planner.PhaseResuming:
		logger.Infof("%s: resuming", e.Entry.Describe())
	case planner.PhaseDone:
		renderer.stop()
		recordDigest(ctx, store, e)
	case planner.PhaseVerifyFailed, planner.PhaseFailed:
		renderer.stop()
	}
}

func recordDigest(ctx context.Context, store *catalog.Store, e planner.Event) {
	if store == nil || e.Digest == "" {
		return
	}
	if digest, ok := e.Entry.Digest(); ok && digest != "" {
		return
	}
	owner, ok := e.Entry.OwnerID()
	if !ok {
		return
	}
	if _, err := store.RecordDigest(ctx, owner, e.Entry.URL(), e.Digest); err != nil {
		logger.Warn("Failed to record digest", logger.Fields{"entry": e.Entry.Describe(), "error": err})
	}
}

// openSource returns the catalog to download from. store is non-nil when
// the local catalog database is open; the caller closes it.
func openSource(ctx context.Context, cfg *config.Config, manifest string, update bool) (catalog.Source, *catalog.Store, error) {
	if manifest != "" && !update {
		return catalog.NewManifestSource(manifest), nil, nil
	}

	store, err := catalog.OpenStore(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if manifest != "" {
		if err := importManifest(ctx, store, manifest); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}
	return store, store, nil
}

func importManifest(ctx context.Context, store *catalog.Store, manifest string) error {
	games, err := catalog.NewManifestSource(manifest).Games(ctx)
	if err != nil {
		return err
	}
	if err := store.Import(ctx, games); err != nil {
		return err
	}
	logger.Infof("Imported %d games into the local catalog", len(games))
	return nil
}
