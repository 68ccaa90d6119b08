package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driving"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	result *domain.SyncResult
	err    error

	mu     sync.Mutex
	period domain.Period
	opts   driving.SyncOptions
	calls  int
}

func (m *mockSyncService) Sync(_ context.Context, period domain.Period, opts driving.SyncOptions) (*domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.period = period
	m.opts = opts
	if m.result != nil {
		m.result.Period = period
		m.result.DryRun = opts.DryRun
	}
	return m.result, m.err
}

func (m *mockSyncService) Status(_ context.Context, period domain.Period) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{Period: period}, nil
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	runs  []domain.RunRecord
	err   error
	limit int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.limit = limit
	return m.runs, m.err
}

// mockNotifier records reports instead of posting them.
type mockNotifier struct {
	reports []domain.Report
	err     error
}

func (m *mockNotifier) Notify(_ context.Context, report domain.Report) error {
	m.reports = append(m.reports, report)
	return m.err
}

// mockBackend is a storage backend that links to its folders.
type mockBackend struct{}

func (mockBackend) ReadBlob(context.Context, domain.Period, string) ([]byte, error) {
	return nil, domain.ErrNotFound
}
func (mockBackend) WriteBlob(context.Context, domain.Period, string, []byte) error { return nil }
func (mockBackend) WriteFile(context.Context, domain.Period, string, []byte) error { return nil }
func (mockBackend) FileExists(context.Context, domain.Period, string) (bool, error) {
	return false, nil
}
func (mockBackend) Describe() string { return "test backend" }
func (mockBackend) FolderURL(_ context.Context, p domain.Period) string {
	return "https://example.test/" + p.FolderName()
}

func testSettings() file.Settings {
	return file.Settings{
		Backend: file.BackendLocal,
		Slack:   file.SlackSettings{MaxLines: 30},
		History: file.HistorySettings{Enabled: true, Keep: 10},
	}
}

// setupApp swaps the app factory for one returning a.
// The returned options pointer records what the command asked for.
func setupApp(t *testing.T, a *app) *appOptions {
	t.Helper()
	var got appOptions
	old := newApp
	newApp = func(_ context.Context, opts appOptions) (*app, error) {
		got = opts
		return a, nil
	}
	oldTerm := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		newApp = old
		stdoutIsTerminal = oldTerm
	})
	return &got
}

// setupNotifier swaps the Slack notifier factory.
func setupNotifier(t *testing.T, n *mockNotifier) *string {
	t.Helper()
	var url string
	old := newNotifier
	newNotifier = func(webhookURL string, _ bool) (driven.Notifier, error) {
		url = webhookURL
		return n, nil
	}
	t.Cleanup(func() { newNotifier = old })
	return &url
}

// execute runs the root command with args, resetting flags first since
// cobra keeps flag state between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

var errBoom = errors.New("boom")
