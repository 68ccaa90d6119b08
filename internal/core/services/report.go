package services

import (
	"fmt"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// DefaultReportLines is the number of items listed before truncating.
const DefaultReportLines = 30

// BuildReport summarises the attachments a run added or changed.
// Only successfully written items are reported, in source order. At most
// maxLines items are listed; a non-positive maxLines means the default.
// The label, when set, prefixes the title (e.g. an account name).
func BuildReport(result *domain.SyncResult, label string, maxLines int) domain.Report {
	if maxLines <= 0 {
		maxLines = DefaultReportLines
	}

	report := domain.Report{Count: len(result.Changes)}

	noun := "receipts"
	if report.Count == 1 {
		noun = "receipt"
	}
	report.Title = fmt.Sprintf("%d new or updated %s for %s", report.Count, noun, result.Period)
	if label != "" {
		report.Title = label + ": " + report.Title
	}

	for i, item := range result.Changes {
		if i >= maxLines {
			report.Omitted = report.Count - maxLines
			break
		}
		report.Lines = append(report.Lines, reportLine(item))
	}
	return report
}

// reportLine formats "date · merchant · amount — file name".
func reportLine(item domain.SyncItem) string {
	tx := item.Record.Transaction

	date := "unknown date"
	if !tx.SettledAt.IsZero() {
		date = tx.SettledAt.UTC().Format("2006-01-02")
	}
	merchant := tx.Counterparty
	if merchant == "" {
		merchant = "Unknown"
	}

	line := fmt.Sprintf("%s · %s · %s — %s",
		date, merchant, domain.FormatAmountSymbol(tx.AmountCents, tx.Currency), item.FileName)
	if item.Decision == domain.DecisionChanged {
		line += " (updated)"
	}
	return line
}
