package qonto

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.AttachmentSource = (*Source)(nil)

// rangeLayout is the millisecond-precision UTC format the API expects.
const rangeLayout = "2006-01-02T15:04:05.000Z"

// Source lists the attachments of settled transactions of one bank account.
type Source struct {
	client *Client
	config Config
}

// New creates a Source. The configuration must carry credentials and
// a bank account.
func New(cfg Config, opts ...ClientOption) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		client: NewClient(cfg, opts...),
		config: cfg,
	}, nil
}

// Validate checks credentials and the bank account with a one-item listing.
func (s *Source) Validate(ctx context.Context) error {
	q := url.Values{}
	q.Set("bank_account_id", s.config.BankAccountID)
	q.Set("per_page", "1")

	var page transactionsPage
	if err := s.client.getJSON(ctx, "/transactions", q, &page); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("%w: qonto rejected the login/secret pair: %w", domain.ErrCredentialsMissing, err)
		}
		return fmt.Errorf("validate qonto access: %w", err)
	}
	return nil
}

// Attachments enumerates the attachments of every transaction settled in
// the period, in settlement order. The label catalogue is loaded first so
// each record carries label names.
func (s *Source) Attachments(
	ctx context.Context, period domain.Period,
) (<-chan domain.AttachmentRecord, <-chan error) {
	recordsCh := make(chan domain.AttachmentRecord)
	errsCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errsCh)

		if err := s.enumerate(ctx, period, recordsCh); err != nil {
			errsCh <- err
		}
	}()

	return recordsCh, errsCh
}

func (s *Source) enumerate(ctx context.Context, period domain.Period, out chan<- domain.AttachmentRecord) error {
	labels, err := s.labels(ctx)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	logger.Debug("qonto: %d labels loaded", len(labels))

	from, to := period.Range()
	q := url.Values{}
	q.Set("bank_account_id", s.config.BankAccountID)
	q.Set("with_attachments", "true")
	q.Set("settled_at_from", from.Format(rangeLayout))
	q.Set("settled_at_to", to.Format(rangeLayout))
	q.Set("sort_by", "settled_at:asc")
	q.Set("per_page", strconv.Itoa(s.config.perPage()))

	for page := 1; page != 0; {
		q.Set("page", strconv.Itoa(page))

		var resp transactionsPage
		if err := s.client.getJSON(ctx, "/transactions", q, &resp); err != nil {
			return fmt.Errorf("list transactions page %d: %w", page, err)
		}
		logger.Debug("qonto: page %d: %d transactions", page, len(resp.Transactions))

		for _, t := range resp.Transactions {
			if err := s.emitAttachments(ctx, t.toDomain(labels), out); err != nil {
				return err
			}
		}
		page = resp.Meta.next(page)
	}
	return nil
}

func (s *Source) emitAttachments(ctx context.Context, tx domain.Transaction, out chan<- domain.AttachmentRecord) error {
	var resp attachmentsPage
	path := "/transactions/" + url.PathEscape(tx.ID) + "/attachments"
	if err := s.client.getJSON(ctx, path, nil, &resp); err != nil {
		return fmt.Errorf("list attachments of transaction %s: %w", tx.ID, err)
	}

	for _, a := range resp.Attachments {
		if a.URL == "" {
			logger.Debug("qonto: attachment %s of %s has no download url, skipped", a.ID, tx.ID)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- a.toDomain(tx):
		}
	}
	return nil
}

// labels loads the label catalogue as id -> name.
func (s *Source) labels(ctx context.Context) (map[string]string, error) {
	labels := make(map[string]string)
	q := url.Values{}
	q.Set("bank_account_id", s.config.BankAccountID)
	q.Set("per_page", strconv.Itoa(s.config.perPage()))

	for page := 1; page != 0; {
		q.Set("page", strconv.Itoa(page))

		var resp labelsPage
		if err := s.client.getJSON(ctx, "/labels", q, &resp); err != nil {
			return nil, err
		}
		for _, l := range resp.Labels {
			labels[l.ID] = l.Name
		}
		page = resp.Meta.next(page)
	}
	return labels, nil
}

// Fetch downloads the body of one attachment from its pre-signed URL.
func (s *Source) Fetch(ctx context.Context, record domain.AttachmentRecord) ([]byte, error) {
	if record.DownloadURL == "" {
		return nil, fmt.Errorf("%w: attachment %s has no download url", domain.ErrInvalidInput, record.ID)
	}
	data, err := s.client.download(ctx, record.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("download attachment %s: %w", record.ID, err)
	}
	return data, nil
}
