package qonto

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

const (
	// DefaultBaseURL is the Qonto third-party API.
	DefaultBaseURL = "https://thirdparty.qonto.com/v2"

	// DefaultPerPage is the page size requested for paginated listings.
	DefaultPerPage = 100

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps well under the API rate limit.
	DefaultRequestsPerSecond = 5.0

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3
)

// Config holds the credentials and account of a Qonto organisation.
type Config struct {
	// Login is the organisation slug shown in the Qonto API settings.
	Login string

	// Secret is the API secret key.
	Secret string

	// BankAccountID selects the account whose transactions are listed.
	BankAccountID string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// PerPage overrides DefaultPerPage.
	PerPage int
}

// Validate checks that the credentials and account are set.
func (c Config) Validate() error {
	var missing []string
	if c.Login == "" {
		missing = append(missing, "login")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if c.BankAccountID == "" {
		missing = append(missing, "bank account id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: qonto %s not set", domain.ErrCredentialsMissing, strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c Config) perPage() int {
	if c.PerPage <= 0 {
		return DefaultPerPage
	}
	return c.PerPage
}
