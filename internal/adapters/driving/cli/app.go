package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/receiptsync/internal/adapters/driven/notify/slack"
	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/gdrive"
	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/local"
	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/s3"
	"github.com/custodia-labs/receiptsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/receiptsync/internal/connectors/google"
	"github.com/custodia-labs/receiptsync/internal/connectors/qonto"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driving"
	"github.com/custodia-labs/receiptsync/internal/core/services"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// app is the set of collaborators one command invocation runs against.
type app struct {
	settings file.Settings
	sync     driving.SyncService
	history  driving.HistoryService
	backend  driven.StorageBackend
	closers  []io.Closer
}

// Close releases the run store and any other resources.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// appOptions selects what a command needs wired.
type appOptions struct {
	// backend overrides storage.backend when set.
	backend string
	// withSync wires the source, the backend and the sync engine.
	withSync bool
}

// Factories swapped in tests.
var (
	newApp      = wireApp
	openConfig  = func() (driven.ConfigStore, error) { return file.NewConfigStore(configDir) }
	newNotifier = func(webhookURL string, debug bool) (driven.Notifier, error) {
		var opts []slack.Option
		if debug {
			opts = append(opts, slack.WithDebug(os.Stderr))
		}
		return slack.NewNotifier(webhookURL, opts...)
	}
)

// wireApp builds the production object graph from configuration.
func wireApp(ctx context.Context, opts appOptions) (*app, error) {
	store, err := openConfig()
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings, err := file.LoadSettings(store, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("load settings from %s: %w", store.Path(), err)
	}
	if opts.backend != "" {
		if settings.Backend, err = file.ParseBackend(opts.backend); err != nil {
			return nil, err
		}
	}

	a := &app{settings: settings}

	var runs driven.RunStore
	if settings.History.Enabled {
		db, err := sqlite.NewStore(historyDir())
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		runs = db.RunStore()
		a.closers = append(a.closers, runs)
		logger.Debug("Run history at %s", db.Path())
	}
	a.history = services.NewHistoryService(runs)

	if !opts.withSync {
		return a, nil
	}

	backend, err := openBackend(ctx, settings)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	source, err := qonto.New(qonto.Config{
		Login:         settings.Qonto.Login,
		Secret:        settings.Qonto.Secret,
		BankAccountID: settings.Qonto.BankAccountID,
		BaseURL:       settings.Qonto.APIURL,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	engine := services.NewSyncEngine(source, backend, runs)
	engine.SetRetention(settings.History.Keep)
	a.backend = backend
	a.sync = engine
	return a, nil
}

// historyDir places the database next to the configuration.
// Empty means the store's default (~/.receiptsync/data).
func historyDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "data")
}

// openBackend creates the storage backend selected by settings.
func openBackend(ctx context.Context, settings file.Settings) (driven.StorageBackend, error) {
	name := settings.ResolveBackend()
	logger.Debug("Storage backend: %s", name)

	switch name {
	case file.BackendGDrive:
		svc, err := google.NewDriveServiceFromFile(ctx, settings.Drive.CredentialsPath)
		if err != nil {
			return nil, err
		}
		return gdrive.NewBackend(svc, settings.Drive.FolderID)
	case file.BackendS3:
		return s3.NewBackend(s3.Config{
			Endpoint:  settings.S3.Endpoint,
			Bucket:    settings.S3.Bucket,
			AccessKey: settings.S3.AccessKey,
			SecretKey: settings.S3.SecretKey,
			Region:    settings.S3.Region,
			Prefix:    settings.S3.Prefix,
			UseSSL:    settings.S3.UseSSL,
		})
	default:
		return local.NewBackend(settings.LocalDir)
	}
}
