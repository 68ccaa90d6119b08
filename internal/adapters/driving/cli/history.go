package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs shown without --limit.
const defaultHistoryLimit = 10

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Long: `Lists recent sync runs, most recent first, with their counts.
Use --limit 0 to list every recorded run.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.settings.History.Enabled {
		cmd.Println("Run history is disabled (history.enabled = false).")
		return nil
	}

	runs, err := a.history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Println("Recent runs:")
	cmd.Println()
	for i := range runs {
		run := &runs[i]
		title := run.Period.String()
		if run.DryRun {
			title += " (dry run)"
		}
		cmd.Printf("  %s\n", title)
		cmd.Printf("    ID:       %s\n", run.ID)
		cmd.Printf("    Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Printf("    Duration: %s\n", run.Duration().Round(time.Millisecond))
		cmd.Printf("    Status:   %s\n", run.Status)
		cmd.Printf("    Result:   %s\n", run.Counts)
		if run.Warnings > 0 {
			cmd.Printf("    Warnings: %d\n", run.Warnings)
		}
		if run.Error != "" {
			cmd.Printf("    Error:    %s\n", run.Error)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d runs\n", len(runs))
	return nil
}
