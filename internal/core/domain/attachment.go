package domain

import (
	"fmt"
	"mime"
	"path/filepath"
	"time"
)

// DefaultCurrency is assumed when a transaction carries no currency code.
const DefaultCurrency = "EUR"

// Transaction is the owning transaction summary of an attachment.
// It is used only for naming and reporting.
type Transaction struct {
	// ID is the provider's transaction identifier.
	ID string

	// SettledAt is when the transaction settled.
	SettledAt time.Time

	// Counterparty is the merchant label shown to the user.
	Counterparty string

	// AmountCents is the amount in minor currency units.
	AmountCents int64

	// Currency is the ISO 4217 code.
	Currency string

	// Labels are user-assigned label names.
	Labels []string
}

// AttachmentRecord is one attachment as listed by the provider.
// Records are immutable once yielded by a source.
type AttachmentRecord struct {
	// ID is the provider-assigned identity, unique within a period.
	ID string

	// FileName is the provider's original file name.
	FileName string

	// Size is the file size in bytes.
	Size int64

	// CreatedAt is the provider's creation timestamp, the source of truth
	// for "modified".
	CreatedAt time.Time

	// ContentType is the provider's MIME type, if known.
	ContentType string

	// DownloadURL references the file body.
	DownloadURL string

	// Transaction is the owning transaction.
	Transaction Transaction
}

// FormatAmount renders minor units as "12EUR" or "12.50EUR".
// Decimals are dropped when the amount is integral.
func FormatAmount(cents int64, currency string) string {
	return formatMinorUnits(cents) + currencyOrDefault(currency)
}

// FormatAmountSymbol renders an amount for humans, e.g. "12.50€".
func FormatAmountSymbol(cents int64, currency string) string {
	currency = currencyOrDefault(currency)
	switch currency {
	case "EUR":
		return formatMinorUnits(cents) + "€"
	case "GBP":
		return "£" + formatMinorUnits(cents)
	case "USD":
		return "$" + formatMinorUnits(cents)
	default:
		return formatMinorUnits(cents) + " " + currency
	}
}

func formatMinorUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return fmt.Sprintf("%s%d", sign, cents/100)
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// ContentType returns the MIME type to store a file under.
// The declared type wins; otherwise it is derived from the extension.
func ContentType(fileName, declared string) string {
	if declared != "" {
		return declared
	}
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
