package file

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// Backend names accepted by storage.backend.
const (
	BackendAuto   = "auto"
	BackendLocal  = "local"
	BackendGDrive = "gdrive"
	BackendS3     = "s3"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultQontoURL     = "https://thirdparty.qonto.com/v2"
	DefaultLocalDir     = "receipts_sync"
	DefaultSlackLines   = 30
	DefaultHistoryKeep  = 200
	DefaultS3Region     = "us-east-1"
	DefaultBackend      = BackendAuto
	defaultS3UseSSL     = true
	defaultHistoryState = true
)

// Config keys.
const (
	KeyQontoLogin         = "qonto.login"
	KeyQontoSecret        = "qonto.secret"
	KeyQontoBankAccountID = "qonto.bank_account_id"
	KeyQontoAPIURL        = "qonto.api_url"
	KeyBackend            = "storage.backend"
	KeyLocalDir           = "storage.local.dir"
	KeyDriveCredentials   = "storage.gdrive.credentials_path"
	KeyDriveFolderID      = "storage.gdrive.folder_id"
	KeyS3Endpoint         = "storage.s3.endpoint"
	KeyS3Bucket           = "storage.s3.bucket"
	KeyS3AccessKey        = "storage.s3.access_key"
	KeyS3SecretKey        = "storage.s3.secret_key"
	KeyS3Prefix           = "storage.s3.prefix"
	KeyS3Region           = "storage.s3.region"
	KeyS3UseSSL           = "storage.s3.use_ssl"
	KeySlackWebhookURL    = "slack.webhook_url"
	KeySlackMaxLines      = "slack.max_lines"
	KeySlackDebug         = "slack.debug"
	KeyHistoryEnabled     = "history.enabled"
	KeyHistoryKeep        = "history.keep"
)

// envKeys maps environment variables to the config keys they override.
var envKeys = map[string]string{
	"QONTO_LOGIN":             KeyQontoLogin,
	"QONTO_SECRET":            KeyQontoSecret,
	"QONTO_BANK_ACCOUNT_ID":   KeyQontoBankAccountID,
	"QONTO_API_URL":           KeyQontoAPIURL,
	"RECEIPTSYNC_BACKEND":     KeyBackend,
	"RECEIPTS_LOCAL_DIR":      KeyLocalDir,
	"GOOGLE_CREDENTIALS_PATH": KeyDriveCredentials,
	"GOOGLE_DRIVE_FOLDER_ID":  KeyDriveFolderID,
	"S3_ENDPOINT":             KeyS3Endpoint,
	"S3_BUCKET":               KeyS3Bucket,
	"S3_ACCESS_KEY":           KeyS3AccessKey,
	"S3_SECRET_KEY":           KeyS3SecretKey,
	"S3_PREFIX":               KeyS3Prefix,
	"S3_REGION":               KeyS3Region,
	"S3_USE_SSL":              KeyS3UseSSL,
	"SLACK_WEBHOOK_URL":       KeySlackWebhookURL,
	"SLACK_MAX_LINES":         KeySlackMaxLines,
	"SLACK_DEBUG":             KeySlackDebug,
}

// Typed keys. Every other key holds a string.
var (
	intKeys    = map[string]bool{KeySlackMaxLines: true, KeyHistoryKeep: true}
	boolKeys   = map[string]bool{KeyS3UseSSL: true, KeySlackDebug: true, KeyHistoryEnabled: true}
	secretKeys = map[string]bool{KeyQontoSecret: true, KeyS3SecretKey: true, KeySlackWebhookURL: true}
)

// ParseValue converts a command-line value to the type stored for key.
func ParseValue(key, raw string) (any, error) {
	switch {
	case intKeys[key]:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, raw)
		}
		return n, nil
	case boolKeys[key]:
		b, ok := parseBool(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, raw)
		}
		return b, nil
	case key == KeyBackend:
		return ParseBackend(raw)
	default:
		return raw, nil
	}
}

// IsSecret reports whether a key holds a credential that should not be
// displayed.
func IsSecret(key string) bool {
	return secretKeys[key]
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// QontoSettings configures the banking provider.
type QontoSettings struct {
	Login         string
	Secret        string
	BankAccountID string
	APIURL        string
}

// Configured reports whether credentials are present.
func (q QontoSettings) Configured() bool {
	return q.Login != "" && q.Secret != ""
}

// DriveSettings configures the Google Drive backend.
type DriveSettings struct {
	CredentialsPath string
	FolderID        string
}

// Configured reports whether the backend can be used.
func (d DriveSettings) Configured() bool {
	return d.CredentialsPath != "" && d.FolderID != ""
}

// S3Settings configures the S3-compatible backend.
type S3Settings struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
	Region    string
	UseSSL    bool
}

// Configured reports whether the backend can be used.
func (s S3Settings) Configured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// SlackSettings configures change notifications.
type SlackSettings struct {
	WebhookURL string
	MaxLines   int
	Debug      bool
}

// HistorySettings configures run history.
type HistorySettings struct {
	Enabled bool
	Keep    int
}

// Settings is the resolved application configuration.
type Settings struct {
	Qonto    QontoSettings
	Backend  string
	LocalDir string
	Drive    DriveSettings
	S3       S3Settings
	Slack    SlackSettings
	History  HistorySettings
}

// LoadSettings resolves settings from the config store, overridden by the
// environment. A nil lookup ignores the environment.
func LoadSettings(store driven.ConfigStore, lookup LookupEnv) (Settings, error) {
	r := resolver{store: store, env: make(map[string]string)}
	if lookup != nil {
		for env, key := range envKeys {
			if v, ok := lookup(env); ok && v != "" {
				r.env[key] = v
			}
		}
	}

	s := Settings{
		Qonto: QontoSettings{
			Login:         r.str(KeyQontoLogin, ""),
			Secret:        r.str(KeyQontoSecret, ""),
			BankAccountID: r.str(KeyQontoBankAccountID, ""),
			APIURL:        strings.TrimRight(r.str(KeyQontoAPIURL, DefaultQontoURL), "/"),
		},
		Backend:  strings.ToLower(r.str(KeyBackend, DefaultBackend)),
		LocalDir: r.str(KeyLocalDir, DefaultLocalDir),
		Drive: DriveSettings{
			CredentialsPath: r.str(KeyDriveCredentials, ""),
			FolderID:        r.str(KeyDriveFolderID, ""),
		},
		S3: S3Settings{
			Endpoint:  r.str(KeyS3Endpoint, ""),
			Bucket:    r.str(KeyS3Bucket, ""),
			AccessKey: r.str(KeyS3AccessKey, ""),
			SecretKey: r.str(KeyS3SecretKey, ""),
			Prefix:    strings.Trim(r.str(KeyS3Prefix, ""), "/"),
			Region:    r.str(KeyS3Region, DefaultS3Region),
			UseSSL:    r.boolean(KeyS3UseSSL, defaultS3UseSSL),
		},
		Slack: SlackSettings{
			WebhookURL: r.str(KeySlackWebhookURL, ""),
			MaxLines:   r.integer(KeySlackMaxLines, DefaultSlackLines),
			Debug:      r.boolean(KeySlackDebug, false),
		},
		History: HistorySettings{
			Enabled: r.boolean(KeyHistoryEnabled, defaultHistoryState),
			Keep:    r.integer(KeyHistoryKeep, DefaultHistoryKeep),
		},
	}

	if r.err != nil {
		return Settings{}, r.err
	}
	backend, err := ParseBackend(s.Backend)
	if err != nil {
		return Settings{}, err
	}
	s.Backend = backend
	if s.Slack.MaxLines <= 0 {
		return Settings{}, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, KeySlackMaxLines)
	}
	return s, nil
}

// ParseBackend normalises a backend name. Empty means auto.
func ParseBackend(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendLocal, BackendGDrive, BackendS3:
		return name, nil
	default:
		return "", fmt.Errorf("%w: unknown storage backend %q (want local, gdrive, s3 or auto)",
			domain.ErrInvalidInput, name)
	}
}

// ResolveBackend picks the storage backend. An explicit choice wins;
// "auto" prefers Google Drive, then S3, then the local directory.
func (s Settings) ResolveBackend() string {
	if s.Backend != BackendAuto && s.Backend != "" {
		return s.Backend
	}
	switch {
	case s.Drive.Configured():
		return BackendGDrive
	case s.S3.Configured():
		return BackendS3
	default:
		return BackendLocal
	}
}

// resolver reads a key from the environment overlay first, then the store.
// The first conversion error is kept.
type resolver struct {
	store driven.ConfigStore
	env   map[string]string
	err   error
}

func (r *resolver) str(key, def string) string {
	if v, ok := r.env[key]; ok {
		return v
	}
	if r.store != nil {
		if v := r.store.GetString(key); v != "" {
			return v
		}
	}
	return def
}

func (r *resolver) integer(key string, def int) int {
	if v, ok := r.env[key]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			r.fail(key, v)
			return def
		}
		return n
	}
	if r.store != nil {
		if _, ok := r.store.Get(key); ok {
			return r.store.GetInt(key)
		}
	}
	return def
}

func (r *resolver) boolean(key string, def bool) bool {
	if v, ok := r.env[key]; ok {
		b, ok := parseBool(v)
		if !ok {
			r.fail(key, v)
			return def
		}
		return b
	}
	if r.store != nil {
		if _, ok := r.store.Get(key); ok {
			return r.store.GetBool(key)
		}
	}
	return def
}

func parseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func (r *resolver) fail(key, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: invalid value %q for %s", domain.ErrInvalidInput, value, key)
	}
}
