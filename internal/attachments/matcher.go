package attachments

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/mailcorpus/api"
)

// Catalog is the stored-attachment collaborator. LookupByNames must resolve
// all names in one round-trip: case-insensitive exact filename match, or
// suffix match for path-qualified catalog entries.
type Catalog interface {
	LookupByNames(ctx context.Context, names []string) ([]api.AttachmentRecord, error)
}

// Matcher cross-references parsed body references against the catalog.
type Matcher struct {
	catalog Catalog
}

// NewMatcher creates a Matcher over the given catalog.
func NewMatcher(catalog Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// MatchReferences resolves every reference in refs against the catalog using
// a single batched lookup. Matched references get the catalog record's id,
// mime type, size and canonical filename; the rest stay Matched=false.
//
// After the one query, per-reference resolution is an O(1) map lookup —
// the lookup table is built once and reused for the whole page.
func (m *Matcher) MatchReferences(ctx context.Context, refs []*api.TextAttachmentReference) error {
	if len(refs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(refs))
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := strings.ToLower(ref.Filename)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}

	records, err := m.catalog.LookupByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("match references: %w", err)
	}

	// Keyed by full lower-cased catalog filename, then by its base name.
	// Full-name entries are inserted first and never overwritten by a
	// base-name entry for a different record.
	lookup := make(map[string]api.AttachmentRecord, len(records)*2)
	for _, rec := range records {
		full := strings.ToLower(rec.Filename)
		if _, ok := lookup[full]; !ok {
			lookup[full] = rec
		}
	}
	for _, rec := range records {
		base := baseName(strings.ToLower(rec.Filename))
		if _, ok := lookup[base]; !ok {
			lookup[base] = rec
		}
	}

	for _, ref := range refs {
		name := strings.ToLower(ref.Filename)
		rec, ok := lookup[name]
		if !ok {
			rec, ok = lookup[baseName(name)]
		}
		if !ok {
			continue
		}
		ref.Matched = true
		ref.AttachmentID = rec.ID
		ref.StoredFilename = rec.Filename
		ref.MimeType = rec.MimeType
		ref.FileSize = rec.FileSize
	}
	return nil
}

// baseName returns the last path segment of a filename that may be qualified
// with either separator style (archived names carry both).
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
