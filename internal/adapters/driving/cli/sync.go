package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driving"
	"github.com/custodia-labs/receiptsync/internal/core/services"
)

// pollInterval is how often progress is refreshed.
const pollInterval = 500 * time.Millisecond

var syncFlags struct {
	year       int
	month      int
	dryRun     bool
	slack      bool
	webhookURL string
	backend    string
}

// Swapped in tests.
var (
	now              = time.Now
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download a month of receipts into storage",
	Long: `Downloads every attachment of the transactions settled in one month and
stores it in the configured backend, under a YYYY-MM folder.

Attachments recorded in the folder's state as already downloaded are skipped
unless their size or creation date changed. Without --year and --month the
previous calendar month is synchronised.`,
	Example: `  receiptsync sync
  receiptsync sync --year 2024 --month 3 --dry-run
  receiptsync sync -y 2024 -m 3 --backend s3 --slack`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.IntVarP(&syncFlags.year, "year", "y", 0, "year to synchronise (requires --month)")
	f.IntVarP(&syncFlags.month, "month", "m", 0, "month to synchronise, 1-12 (requires --year)")
	f.BoolVar(&syncFlags.dryRun, "dry-run", false, "show what would be downloaded without writing anything")
	f.BoolVar(&syncFlags.slack, "slack", false, "post new and updated receipts to Slack")
	f.StringVar(&syncFlags.webhookURL, "slack-webhook-url", "", "Slack incoming webhook (overrides slack.webhook_url)")
	f.StringVar(&syncFlags.backend, "backend", "", "storage backend: local, gdrive, s3 or auto (overrides storage.backend)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	period, err := resolvePeriod(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{backend: syncFlags.backend, withSync: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.Printf("Synchronising %s into %s\n", period, services.DescribeBackend(a.backend))
	if syncFlags.dryRun {
		cmd.Println("Dry run: nothing will be downloaded or written.")
	}

	opts := driving.SyncOptions{DryRun: syncFlags.dryRun}
	result, syncErr := syncWithProgress(ctx, cmd, a.sync, period, opts)
	if result != nil {
		printResult(cmd, result)
	}

	// Files written before a mid-run failure are unchanged on the next run,
	// so this is the only chance to announce them.
	if syncFlags.slack && result != nil && (syncErr == nil || len(result.Changes) > 0) {
		// An interrupt must not cancel the announcement of what was written.
		notifyChanges(context.WithoutCancel(ctx), cmd, a, result)
	}
	if syncErr != nil {
		return fmt.Errorf("sync %s: %w", period, syncErr)
	}
	return nil
}

// resolvePeriod reads --year/--month. Both or neither must be given.
func resolvePeriod(cmd *cobra.Command) (domain.Period, error) {
	yearSet := cmd.Flags().Changed("year")
	monthSet := cmd.Flags().Changed("month")

	switch {
	case yearSet && monthSet:
		return domain.NewPeriod(syncFlags.year, syncFlags.month)
	case yearSet || monthSet:
		return domain.Period{}, fmt.Errorf("%w: --year and --month must be given together", domain.ErrInvalidPeriod)
	default:
		return domain.PreviousMonth(now()), nil
	}
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.SyncService,
	period domain.Period,
	opts driving.SyncOptions,
) (*domain.SyncResult, error) {
	type outcome struct {
		result *domain.SyncResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.Sync(ctx, period, opts)
		done <- outcome{result, err}
	}()

	var bar *pb.ProgressBar
	if stdoutIsTerminal() {
		bar = newProgressBar(cmd.OutOrStdout())
		bar.Start()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case out := <-done:
			if bar != nil {
				if out.result != nil {
					bar.SetCurrent(int64(len(out.result.Items)))
				}
				bar.Finish()
			}
			return out.result, out.err
		case <-ticker.C:
			// Best effort: a status error only skips one refresh.
			status, err := svc.Status(ctx, period)
			if err != nil || status == nil || bar == nil {
				continue
			}
			bar.SetCurrent(int64(status.Processed))
			bar.Set("failed", status.Failed)
		}
	}
}

// newProgressBar counts attachments without a known total, since the
// source streams pages.
func newProgressBar(w io.Writer) *pb.ProgressBar {
	bar := pb.New(0)
	bar.SetWriter(w)
	bar.SetTemplateString(`Processed {{ counters . }} attachments ({{ string . "failed" }} failed) {{ etime . }}`)
	bar.Set("failed", 0)
	return bar
}

// printResult summarises a run for the user.
func printResult(cmd *cobra.Command, result *domain.SyncResult) {
	cmd.Printf("Done: %s\n", result.Counts())

	for _, w := range result.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}

	if failures := result.Failures(); len(failures) > 0 {
		cmd.Println("\nFailed attachments:")
		for _, item := range failures {
			cmd.Printf("  %s (%s): %v\n", item.FileName, item.Record.ID, item.Err)
		}
	}

	if result.DryRun {
		pending := result.Pending()
		if len(pending) == 0 {
			cmd.Println("Nothing to download.")
			return
		}
		cmd.Printf("\nWould download %d attachment(s):\n", len(pending))
		for _, item := range pending {
			cmd.Printf("  [%s] %s\n", item.Decision, item.FileName)
		}
	}
}

// notifyChanges posts the change report. Failures are warnings only.
func notifyChanges(ctx context.Context, cmd *cobra.Command, a *app, result *domain.SyncResult) {
	if result.DryRun {
		cmd.Println("Slack notification skipped (dry run).")
		return
	}

	webhookURL := syncFlags.webhookURL
	if webhookURL == "" {
		webhookURL = a.settings.Slack.WebhookURL
	}
	if webhookURL == "" {
		cmd.Println("Warning: Slack notification skipped: no webhook URL configured.")
		return
	}

	report := services.BuildReport(result, "", a.settings.Slack.MaxLines)
	if report.Empty() {
		cmd.Println("No new or updated receipts to report.")
		return
	}
	if linker, ok := a.backend.(driven.FolderLinker); ok {
		report.Link = linker.FolderURL(ctx, result.Period)
	}

	notifier, err := newNotifier(webhookURL, a.settings.Slack.Debug)
	if err != nil {
		cmd.Printf("Warning: Slack notification failed: %v\n", err)
		return
	}
	if err := notifier.Notify(ctx, report); err != nil {
		cmd.Printf("Warning: Slack notification failed: %v\n", err)
		return
	}
	cmd.Printf("Posted %d change(s) to Slack.\n", report.Count)
}
