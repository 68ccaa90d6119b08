package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateEntry_Matches(t *testing.T) {
	created := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	entry := StateEntry{FileSize: 100, CreatedAt: created}

	assert.True(t, entry.Matches(AttachmentRecord{Size: 100, CreatedAt: created}))
	assert.True(t, entry.Matches(AttachmentRecord{Size: 100, CreatedAt: created.In(time.FixedZone("CEST", 7200))}))
	assert.False(t, entry.Matches(AttachmentRecord{Size: 101, CreatedAt: created}))
	assert.False(t, entry.Matches(AttachmentRecord{Size: 100, CreatedAt: created.Add(time.Second)}))
}

func TestStateStore_UpsertGet(t *testing.T) {
	s := NewStateStore()
	_, ok := s.Get("a")
	assert.False(t, ok)

	e := StateEntry{FileSize: 10, CreatedAt: time.Unix(0, 0).UTC()}
	s.Upsert("a", e)
	s.Upsert("a", e)

	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, e, got)
	assert.Equal(t, 1, s.Len())
}

func TestStateStore_IDsSorted(t *testing.T) {
	s := NewStateStore()
	s.Upsert("c", StateEntry{})
	s.Upsert("a", StateEntry{})
	s.Upsert("b", StateEntry{})

	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
}

func TestStateStore_EncodeDecode(t *testing.T) {
	created := time.Date(2025, time.June, 3, 9, 15, 0, 0, time.UTC)
	s := NewStateStore()
	s.Upsert("att-1", StateEntry{
		FileSize:         2048,
		CreatedAt:        created,
		OriginalFileName: "receipt.pdf",
		FileName:         "receipt-12EUR-Acme-20250602.pdf",
		ContentType:      "application/pdf",
	})

	data, err := s.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_size": 2048`)
	assert.Contains(t, string(data), `"created_at": "2025-06-03T09:15:00Z"`)
	assert.Contains(t, string(data), `"enriched_file_name": "receipt-12EUR-Acme-20250602.pdf"`)

	decoded, err := DecodeStateStore(data)
	require.NoError(t, err)
	assert.Equal(t, s.Entries(), decoded.Entries())
}

func TestDecodeStateStore_MinimalEntry(t *testing.T) {
	data := []byte(`{"x": {"file_size": 5, "created_at": "2025-06-01T00:00:00.000Z"}}`)

	s, err := DecodeStateStore(data)
	require.NoError(t, err)

	e, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.FileSize)
	assert.Empty(t, e.FileName)
}

func TestDecodeStateStore_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"truncated", `{"x": {"file_size": 5`},
		{"wrong type", `[1, 2, 3]`},
		{"bad timestamp", `{"x": {"file_size": 5, "created_at": "yesterday"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeStateStore([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCorruptState)
			assert.Nil(t, s)
		})
	}
}

func TestDecodeStateStore_Null(t *testing.T) {
	s, err := DecodeStateStore([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}
