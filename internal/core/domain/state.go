package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// StateBlobName is the reserved name of the state blob inside a period folder.
// Display names never start with a dot, so it cannot collide with an attachment.
const StateBlobName = ".download_state.json"

// StateEntry records the last successfully synced version of an attachment.
type StateEntry struct {
	// FileSize is the size in bytes at the last successful write.
	FileSize int64 `json:"file_size"`

	// CreatedAt is the provider creation timestamp at the last successful write.
	CreatedAt time.Time `json:"created_at"`

	// OriginalFileName is the provider's file name.
	OriginalFileName string `json:"original_file_name,omitempty"`

	// FileName is the display name the file was written under.
	FileName string `json:"enriched_file_name,omitempty"`

	// ContentType is the provider's MIME type.
	ContentType string `json:"file_content_type,omitempty"`
}

// NewStateEntry builds the entry recorded after writing record as fileName.
func NewStateEntry(record AttachmentRecord, fileName string) StateEntry {
	return StateEntry{
		FileSize:         record.Size,
		CreatedAt:        record.CreatedAt,
		OriginalFileName: record.FileName,
		FileName:         fileName,
		ContentType:      record.ContentType,
	}
}

// Matches reports whether the entry describes the same version as record.
// Only size and creation timestamp take part in the comparison.
func (e StateEntry) Matches(record AttachmentRecord) bool {
	return e.FileSize == record.Size && e.CreatedAt.Equal(record.CreatedAt)
}

// StateStore maps attachment identity to its last synced version for one period.
// An entry exists if and only if the file was written at least once.
type StateStore struct {
	entries map[string]StateEntry
}

// NewStateStore creates an empty state store (the first-run condition).
func NewStateStore() *StateStore {
	return &StateStore{entries: make(map[string]StateEntry)}
}

// Get looks up the entry for an identity.
func (s *StateStore) Get(id string) (StateEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Upsert records or replaces the entry for an identity. It is idempotent.
func (s *StateStore) Upsert(id string, entry StateEntry) {
	s.entries[id] = entry
}

// Len returns the number of entries.
func (s *StateStore) Len() int {
	return len(s.entries)
}

// IDs returns all identities in ascending order.
func (s *StateStore) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a copy of the mapping.
func (s *StateStore) Entries() map[string]StateEntry {
	out := make(map[string]StateEntry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Encode serialises the store as indented JSON with sorted keys.
func (s *StateStore) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// DecodeStateStore parses a state blob.
// Any parse failure is reported as ErrCorruptState.
func DecodeStateStore(data []byte) (*StateStore, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrCorruptState)
	}

	var entries map[string]StateEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	store := NewStateStore()
	for id, e := range entries {
		store.entries[id] = e
	}
	return store, nil
}
