package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitConfig  = 3
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "receiptsync",
	Short: "Synchronise Qonto receipts into storage",
	Long: `receiptsync downloads the receipts and invoices attached to Qonto
transactions for a month and stores them in a local directory, a Google
Drive folder, or an S3-compatible bucket.

Already-downloaded attachments are tracked per month, so repeated runs only
fetch what is new or changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default ~/.receiptsync)")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	})
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}
	rootCmd.PrintErrln("Error:", err)
	return exitCode(err)
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidPeriod), errors.Is(err, domain.ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, domain.ErrCredentialsMissing), errors.Is(err, domain.ErrBackendNotConfigured):
		return ExitConfig
	default:
		return ExitFailure
	}
}
