package qonto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want flexInt
	}{
		{`123`, 123},
		{`"456"`, 456},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v struct {
				N flexInt `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &v))
			assert.Equal(t, tt.want, v.N)
		})
	}

	var bad flexInt
	assert.Error(t, bad.UnmarshalJSON([]byte(`"12kb"`)))
}

func TestMetaNext(t *testing.T) {
	two, one := 2, 1
	assert.Equal(t, 2, meta{NextPage: &two}.next(1))
	assert.Equal(t, 0, meta{}.next(1))
	assert.Equal(t, 0, meta{NextPage: &one}.next(1))
}

func TestTransactionToDomain_Rounding(t *testing.T) {
	tx := transaction{ID: "t", Amount: decimal.RequireFromString("19.999")}
	assert.Equal(t, int64(2000), tx.toDomain(nil).AmountCents)

	settled := time.Date(2024, 3, 2, 11, 0, 0, 0, time.FixedZone("CET", 3600))
	tx = transaction{ID: "t", SettledAt: &settled}
	assert.Equal(t, time.UTC, tx.toDomain(nil).SettledAt.Location())
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errors detail", `{"errors":[{"code":"not_found","detail":"Transaction not found"}]}`, "Transaction not found"},
		{"errors code", `{"errors":[{"code":"forbidden"}]}`, "forbidden"},
		{"message", `{"message":"Unauthorized"}`, "Unauthorized"},
		{"plain text", "  bad gateway \n", "bad gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusBadRequest)
			_, _ = rec.WriteString(tt.body)

			err := newAPIError(rec.Result(), "https://api.example/v2/x")
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		})
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://files.example/a.pdf", redact("https://files.example/a.pdf?X-Amz-Signature=abc"))
	assert.Equal(t, "https://files.example/a.pdf", redact("https://files.example/a.pdf"))
}
