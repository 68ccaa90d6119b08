package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{1200, "EUR", "12EUR"},
		{1250, "EUR", "12.50EUR"},
		{1205, "USD", "12.05USD"},
		{0, "", "0EUR"},
		{-4599, "EUR", "-45.99EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.cents, tt.currency))
		})
	}
}

func TestFormatAmountSymbol(t *testing.T) {
	assert.Equal(t, "12.50€", FormatAmountSymbol(1250, "EUR"))
	assert.Equal(t, "12€", FormatAmountSymbol(1200, ""))
	assert.Equal(t, "£3", FormatAmountSymbol(300, "GBP"))
	assert.Equal(t, "$0.99", FormatAmountSymbol(99, "USD"))
	assert.Equal(t, "10 CHF", FormatAmountSymbol(1000, "CHF"))
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple.pdf", "simple.pdf"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"many   spaces", "many_spaces"},
		{"__under__scores__", "under_scores"},
		{".hidden", "hidden"},
		{"._dot_underscore", "dot_underscore"},
		{"tab\tand\nnewline", "tab_and_newline"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFileName(tt.in))
		})
	}
}

func testRecord(id, fileName string) AttachmentRecord {
	return AttachmentRecord{
		ID:        id,
		FileName:  fileName,
		Size:      1024,
		CreatedAt: time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC),
		Transaction: Transaction{
			ID:           "tx-" + id,
			SettledAt:    time.Date(2025, time.June, 2, 14, 30, 0, 0, time.UTC),
			Counterparty: "Acme Corp",
			AmountCents:  4250,
			Currency:     "EUR",
		},
	}
}

func TestAttachmentRecord_DisplayName(t *testing.T) {
	t.Run("enriched", func(t *testing.T) {
		r := testRecord("a1", "receipt.pdf")
		assert.Equal(t, "receipt-42.50EUR-Acme_Corp-20250602.pdf", r.DisplayName())
	})

	t.Run("with labels", func(t *testing.T) {
		r := testRecord("a1", "receipt.pdf")
		r.Transaction.Labels = []string{"Travel", "Q2 / client"}
		assert.Equal(t, "receipt-42.50EUR-Acme_Corp-20250602-Travel_Q2_client.pdf", r.DisplayName())
	})

	t.Run("missing counterparty and date", func(t *testing.T) {
		r := testRecord("a1", "scan.jpg")
		r.Transaction.Counterparty = ""
		r.Transaction.SettledAt = time.Time{}
		r.Transaction.AmountCents = 1000
		assert.Equal(t, "scan-10EUR-Unknown-unknown.jpg", r.DisplayName())
	})

	t.Run("unsafe characters", func(t *testing.T) {
		r := testRecord("a1", "in/voice:1.pdf")
		r.Transaction.Counterparty = "Foo <Bar>"
		assert.Equal(t, "in_voice_1-42.50EUR-Foo_Bar-20250602.pdf", r.DisplayName())
	})

	t.Run("never starts with a dot", func(t *testing.T) {
		r := testRecord("a1", ".download_state.json")
		name := r.DisplayName()
		assert.NotEqual(t, StateBlobName, name)
		assert.NotEqual(t, byte('.'), name[0])
	})

	t.Run("deterministic", func(t *testing.T) {
		r := testRecord("a1", "receipt.pdf")
		assert.Equal(t, r.DisplayName(), r.DisplayName())
	})
}

func TestNameRegistry_Resolve(t *testing.T) {
	t.Run("first claimant keeps base name", func(t *testing.T) {
		reg := NewNameRegistry(nil)
		assert.Equal(t, "r.pdf", reg.Resolve("id-one-long", "r.pdf"))
		assert.Equal(t, "r-id-two-l.pdf", reg.Resolve("id-two-long", "r.pdf"))
		assert.Equal(t, "r.pdf", reg.Resolve("id-one-long", "r.pdf"))

		owner, ok := reg.Owner("r-id-two-l.pdf")
		assert.True(t, ok)
		assert.Equal(t, "id-two-long", owner)
	})

	t.Run("short id equal to full id", func(t *testing.T) {
		reg := NewNameRegistry(nil)
		reg.Resolve("a", "r.pdf")
		assert.Equal(t, "r-b.pdf", reg.Resolve("b", "r.pdf"))
	})

	t.Run("falls back to full id", func(t *testing.T) {
		reg := NewNameRegistry(nil)
		reg.Resolve("x", "r.pdf")
		reg.Resolve("y", "r-abcdefgh.pdf")
		assert.Equal(t, "r-abcdefghij.pdf", reg.Resolve("abcdefghij", "r.pdf"))
	})

	t.Run("stored names are sticky", func(t *testing.T) {
		state := NewStateStore()
		state.Upsert("late", StateEntry{FileSize: 1, FileName: "r.pdf"})
		reg := NewNameRegistry(state)

		// An identity enumerated first cannot steal a stored name.
		assert.Equal(t, "r-early.pdf", reg.Resolve("early", "r.pdf"))
		assert.Equal(t, "r.pdf", reg.Resolve("late", "other.pdf"))
	})
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.pdf", "image/png"))
	assert.Equal(t, "application/pdf", ContentType("a.pdf", ""))
	assert.Equal(t, "application/octet-stream", ContentType("noext", ""))
}
