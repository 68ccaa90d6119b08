package qonto

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// meta is the pagination block of list responses.
type meta struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	TotalPages  int  `json:"total_pages"`
}

// next returns the page to request after current, or 0 when done.
// A next page that does not advance is treated as the end.
func (m meta) next(current int) int {
	if m.NextPage == nil || *m.NextPage <= current {
		return 0
	}
	return *m.NextPage
}

type transactionsPage struct {
	Transactions []transaction `json:"transactions"`
	Meta         meta          `json:"meta"`
}

type transaction struct {
	ID                    string          `json:"id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Label                 string          `json:"label"`
	CleanCounterpartyName string          `json:"clean_counterparty_name"`
	SettledAt             *time.Time      `json:"settled_at"`
	LabelIDs              []string        `json:"label_ids"`
}

type attachmentsPage struct {
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name"`
	FileSize        flexInt   `json:"file_size"`
	FileContentType string    `json:"file_content_type"`
	CreatedAt       time.Time `json:"created_at"`
	URL             string    `json:"url"`
}

type labelsPage struct {
	Labels []label `json:"labels"`
	Meta   meta    `json:"meta"`
}

type label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// flexInt decodes an integer sent either as a JSON number or a string.
type flexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}

// toDomain converts a transaction, resolving label ids against the catalogue.
// Unknown label ids are ignored.
func (t transaction) toDomain(labels map[string]string) domain.Transaction {
	tx := domain.Transaction{
		ID:           t.ID,
		Counterparty: t.CleanCounterpartyName,
		AmountCents:  t.Amount.Shift(2).Round(0).IntPart(),
		Currency:     t.Currency,
	}
	if tx.Counterparty == "" {
		tx.Counterparty = t.Label
	}
	if t.SettledAt != nil {
		tx.SettledAt = t.SettledAt.UTC()
	}
	for _, id := range t.LabelIDs {
		if name, ok := labels[id]; ok {
			tx.Labels = append(tx.Labels, name)
		}
	}
	return tx
}

// toDomain converts an attachment of tx.
func (a attachment) toDomain(tx domain.Transaction) domain.AttachmentRecord {
	return domain.AttachmentRecord{
		ID:          a.ID,
		FileName:    a.FileName,
		Size:        int64(a.FileSize),
		CreatedAt:   a.CreatedAt.UTC(),
		ContentType: a.FileContentType,
		DownloadURL: a.URL,
		Transaction: tx,
	}
}
