package domain

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	separatorRuns    = regexp.MustCompile(`[_\s]+`)
)

// shortIDLen is the length of the identity prefix used to disambiguate names.
const shortIDLen = 8

// CleanFileName makes a name safe for local filesystems and cloud drives.
// Reserved characters become underscores, whitespace and underscore runs
// collapse to a single underscore, and leading dots are removed so a
// derived name can never shadow the state blob.
func CleanFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = separatorRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	name = strings.TrimLeft(name, ".")
	return strings.Trim(name, "_")
}

// DisplayName derives the enriched file name for an attachment:
//
//	<original stem>-<amount><CUR>-<counterparty>-<YYYYMMDD>[-<labels>]<ext>
func (r AttachmentRecord) DisplayName() string {
	original := r.FileName
	if original == "" {
		original = r.ID + ".bin"
	}
	ext := filepath.Ext(original)
	stem := CleanFileName(strings.TrimSuffix(original, ext))
	if stem == "" {
		stem = "attachment"
	}

	tx := r.Transaction
	author := CleanFileName(tx.Counterparty)
	if author == "" {
		author = "Unknown"
	}
	date := "unknown"
	if !tx.SettledAt.IsZero() {
		date = tx.SettledAt.UTC().Format("20060102")
	}

	parts := []string{stem, FormatAmount(tx.AmountCents, tx.Currency), author, date}
	labels := make([]string, 0, len(tx.Labels))
	for _, l := range tx.Labels {
		if c := CleanFileName(l); c != "" {
			labels = append(labels, c)
		}
	}
	if len(labels) > 0 {
		parts = append(parts, strings.Join(labels, "_"))
	}

	name := CleanFileName(strings.Join(parts, "-") + ext)
	if name == "" || name == StateBlobName {
		return CleanFileName("attachment-" + r.ID + ext)
	}
	return name
}

// NameRegistry assigns display names to identities within a period so two
// attachments never write to the same file.
//
// Names recorded in the state stay bound to their identity across runs.
// A new identity whose derived name is already taken gets its short
// identity inserted before the extension, which makes the result
// independent of enumeration order for any name already on record.
type NameRegistry struct {
	byName map[string]string
	byID   map[string]string
}

// NewNameRegistry seeds a registry with the names recorded in a state store.
func NewNameRegistry(state *StateStore) *NameRegistry {
	r := &NameRegistry{
		byName: make(map[string]string),
		byID:   make(map[string]string),
	}
	if state == nil {
		return r
	}
	for _, id := range state.IDs() {
		entry, _ := state.Get(id)
		if entry.FileName == "" {
			continue
		}
		if _, taken := r.byName[entry.FileName]; taken {
			continue
		}
		r.claim(id, entry.FileName)
	}
	return r
}

// Resolve returns the file name for id, claiming base or a suffixed
// variant of it on first use.
func (r *NameRegistry) Resolve(id, base string) string {
	if name, ok := r.byID[id]; ok {
		return name
	}
	if r.available(id, base) {
		r.claim(id, base)
		return base
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	cleanID := CleanFileName(id)
	if cleanID == "" {
		cleanID = "id"
	}
	short := cleanID
	if len(short) > shortIDLen {
		short = short[:shortIDLen]
	}

	candidates := []string{stem + "-" + short + ext}
	if short != cleanID {
		candidates = append(candidates, stem+"-"+cleanID+ext)
	}
	for _, c := range candidates {
		if r.available(id, c) {
			r.claim(id, c)
			return c
		}
	}

	// Only reachable when identities themselves collide after cleaning.
	for n := 2; ; n++ {
		c := stem + "-" + cleanID + "-" + strconv.Itoa(n) + ext
		if r.available(id, c) {
			r.claim(id, c)
			return c
		}
	}
}

// Owner returns the identity holding name, if any.
func (r *NameRegistry) Owner(name string) (string, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *NameRegistry) available(id, name string) bool {
	owner, taken := r.byName[name]
	return !taken || owner == id
}

func (r *NameRegistry) claim(id, name string) {
	r.byName[name] = id
	r.byID[id] = name
}
