// Package cmd wires flags, settings and the run pipeline together.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/showcase-dl/showcase-dl/internal/clipboard"
	"github.com/showcase-dl/showcase-dl/internal/config"
	"github.com/showcase-dl/showcase-dl/internal/download"
	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/logger"
	"github.com/showcase-dl/showcase-dl/internal/resolve"
	"github.com/showcase-dl/showcase-dl/internal/state"
	"github.com/showcase-dl/showcase-dl/internal/telemetry"
	"github.com/showcase-dl/showcase-dl/internal/tui"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagReferer        string
	flagDownloader     string
	flagDownloaderArgs []string
	flagOutput         string
	flagBatch          string
	flagHeadless       bool
	flagOTLPEndpoint   string
	flagTickMillis     int
	flagMaxConcurrent  int
	flagGrace          time.Duration
	flagVerbosity      int
)

// downloadsFailed records whether any download ended Failed; it decides
// the process exit code after a clean run.
var downloadsFailed bool

var rootCmd = &cobra.Command{
	Use:   "showcase-dl [url]...",
	Short: "Download videos embedded in web pages via yt-dlp",
	Long: `showcase-dl resolves video pages, showcases and live events down to
their underlying player URLs and supervises one yt-dlp process per video,
with live progress in the terminal.

With no URL arguments it falls back to the system clipboard.`,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagReferer, "referer", "r", "", "referer header for direct player inputs")
	f.StringVarP(&flagDownloader, "downloader", "d", "", "downloader executable (default yt-dlp)")
	f.StringArrayVarP(&flagDownloaderArgs, "downloader-arg", "a", nil, "extra downloader argument (repeatable)")
	f.StringVarP(&flagOutput, "output", "o", "", "downloader output template")
	f.StringVar(&flagBatch, "batch", "", "file with URLs, one per line")
	f.BoolVar(&flagHeadless, "headless", false, "run without the terminal UI")
	f.StringVar(&flagOTLPEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for trace export")
	f.IntVar(&flagTickMillis, "tick", 0, "UI refresh interval in milliseconds")
	f.IntVar(&flagMaxConcurrent, "max-concurrent", 0, "max simultaneous downloads")
	f.DurationVar(&flagGrace, "grace", 0, "shutdown grace period before force kill")
	f.CountVarP(&flagVerbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
}

// Execute runs the root command and exits nonzero on error or when any
// download failed.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if downloadsFailed {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	applyFlags(cmd, settings)

	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("create app directories: %w", err)
	}

	locked, err := AcquireLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another showcase-dl instance is already running")
	}
	defer func() { _ = ReleaseLock() }()

	log := logger.New(logger.Config{
		Verbosity:  flagVerbosity,
		Dir:        config.GetLogsDir(),
		Console:    flagHeadless,
		MaxSizeMB:  settings.General.LogMaxSizeMB,
		MaxBackups: settings.General.LogMaxBackups,
	})
	defer func() { _ = log.Close() }()

	runID := uuid.NewString()
	log.Info().Str("run_id", runID).Str("version", Version).Msg("starting")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, flagOTLPEndpoint, runID)
	if err != nil {
		return fmt.Errorf("init trace export: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	inputs, err := collectInputs(args, settings)
	if err != nil {
		return err
	}

	client, err := httpx.New(settings.Network.UserAgent, log.Logger)
	if err != nil {
		return err
	}

	store := state.NewStore()
	resolver := resolve.New(client, log.Logger, resolve.WithStageStore(store))
	supervisor := download.New(store, download.Options{
		Bin:            settings.Downloader.Path,
		OutputTemplate: settings.Downloader.OutputTemplate,
		ExtraArgs:      settings.Downloader.ExtraArgs,
		MaxConcurrent:  settings.Downloader.MaxConcurrentDownloads,
		Grace:          settings.Downloader.ShutdownGrace,
	}, log.Logger)

	resolveCtx, cancelResolve := context.WithCancel(ctx)
	defer cancelResolve()

	targets := make(chan resolve.Target, 16)
	go func() {
		g := new(errgroup.Group)
		for _, in := range inputs {
			g.Go(func() error {
				input := resolve.Input{URL: in, Referer: flagReferer}
				if err := resolver.Resolve(resolveCtx, input, targets); err != nil {
					// One bad input never aborts the rest of the run.
					log.Error().Str("url", in).Err(err).Msg("resolution failed")
				}
				return nil
			})
		}
		g.Wait()
		close(targets)
	}()

	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx, targets)
		store.SetStageDone()
		close(done)
	}()

	// Shutdown stops new chain steps first, then drains the children.
	shutdown := func() {
		cancelResolve()
		supervisor.Shutdown()
	}

	if flagHeadless {
		runHeadless(ctx, store, shutdown, done)
	} else {
		tick := time.Duration(settings.General.TickMillis) * time.Millisecond
		m := tui.New(store, shutdown, tick)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run terminal UI: %w", err)
		}
	}

	if store.AnyFailed() {
		downloadsFailed = true
	}
	logSummary(log, store)
	return nil
}

// applyFlags overlays explicitly set flags onto loaded settings, so the
// precedence is flags over file over defaults.
func applyFlags(cmd *cobra.Command, s *config.Settings) {
	if cmd.Flags().Changed("downloader") {
		s.Downloader.Path = flagDownloader
	}
	if cmd.Flags().Changed("downloader-arg") {
		s.Downloader.ExtraArgs = flagDownloaderArgs
	}
	if cmd.Flags().Changed("output") {
		s.Downloader.OutputTemplate = flagOutput
	}
	if cmd.Flags().Changed("max-concurrent") {
		s.Downloader.MaxConcurrentDownloads = flagMaxConcurrent
	}
	if cmd.Flags().Changed("grace") {
		s.Downloader.ShutdownGrace = flagGrace
	}
	if cmd.Flags().Changed("tick") {
		s.General.TickMillis = flagTickMillis
	}
}

// collectInputs gathers URLs from arguments, the batch file and finally
// the clipboard. At least one input is required.
func collectInputs(args []string, s *config.Settings) ([]string, error) {
	inputs := append([]string(nil), args...)

	if flagBatch != "" {
		fromFile, err := readURLsFromFile(flagBatch)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, fromFile...)
	}

	if len(inputs) == 0 && s.General.ClipboardFallback {
		if u := clipboard.ReadURL(); u != "" {
			fmt.Fprintf(os.Stderr, "Using URL from clipboard: %s\n", u)
			inputs = append(inputs, u)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input URLs; pass them as arguments, via --batch, or copy one to the clipboard")
	}
	return inputs, nil
}

// runHeadless waits for the pipeline without a UI. An interrupt starts
// the same coordinated drain the UI's quit key would.
func runHeadless(ctx context.Context, store *state.Store, shutdown func(), done <-chan struct{}) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	select {
	case <-done:
	case <-sigCtx.Done():
		fmt.Fprintln(os.Stderr, "Interrupted, stopping downloads...")
		shutdown()
		<-done
	}

	for _, e := range store.Snapshot().Entries {
		switch e.Status {
		case state.StatusFinished:
			fmt.Printf("Finished: %s\n", e.DisplayTitle())
		case state.StatusFailed:
			fmt.Printf("Failed: %s: %s\n", e.DisplayTitle(), e.Detail)
		case state.StatusCancelled:
			fmt.Printf("Cancelled: %s\n", e.DisplayTitle())
		}
	}
}

func logSummary(log *logger.Logger, store *state.Store) {
	var finished, failed, cancelled int
	for _, e := range store.Snapshot().Entries {
		switch e.Status {
		case state.StatusFinished:
			finished++
		case state.StatusFailed:
			failed++
		case state.StatusCancelled:
			cancelled++
		}
	}
	log.Info().
		Int("finished", finished).
		Int("failed", failed).
		Int("cancelled", cancelled).
		Msg("run complete")
}
