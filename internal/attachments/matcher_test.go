package attachments

import (
	"context"
	"testing"

	"github.com/agentic-research/mailcorpus/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	records []api.AttachmentRecord
	calls   int
	lastReq []string
}

func (f *fakeCatalog) LookupByNames(_ context.Context, names []string) ([]api.AttachmentRecord, error) {
	f.calls++
	f.lastReq = names
	return f.records, nil
}

func refPtrs(refs []api.TextAttachmentReference) []*api.TextAttachmentReference {
	out := make([]*api.TextAttachmentReference, len(refs))
	for i := range refs {
		out[i] = &refs[i]
	}
	return out
}

func TestMatchReferences_CaseInsensitiveExact(t *testing.T) {
	catalog := &fakeCatalog{records: []api.AttachmentRecord{
		{ID: 7, Filename: "q3_report.pdf", MimeType: "application/pdf", FileSize: 123456},
	}}
	m := NewMatcher(catalog)

	refs := ParseReferences("<< File: Q3_Report.PDF >>")
	require.Len(t, refs, 1)
	require.NoError(t, m.MatchReferences(context.Background(), refPtrs(refs)))

	assert.True(t, refs[0].Matched)
	assert.Equal(t, int64(7), refs[0].AttachmentID)
	assert.Equal(t, "q3_report.pdf", refs[0].StoredFilename)
	assert.Equal(t, "application/pdf", refs[0].MimeType)
	assert.Equal(t, int64(123456), refs[0].FileSize)
}

func TestMatchReferences_UnmatchedStaysBare(t *testing.T) {
	catalog := &fakeCatalog{}
	m := NewMatcher(catalog)

	refs := ParseReferences("<< File: missing.doc >>")
	require.Len(t, refs, 1)
	require.NoError(t, m.MatchReferences(context.Background(), refPtrs(refs)))

	assert.False(t, refs[0].Matched)
	assert.Zero(t, refs[0].AttachmentID)
	assert.Empty(t, refs[0].StoredFilename)
	assert.Empty(t, refs[0].MimeType)
	assert.Zero(t, refs[0].FileSize)
}

func TestMatchReferences_BaseNameFallback(t *testing.T) {
	catalog := &fakeCatalog{records: []api.AttachmentRecord{
		{ID: 3, Filename: `legal\contracts\MasterAgreement.doc`, MimeType: "application/msword", FileSize: 99},
	}}
	m := NewMatcher(catalog)

	refs := ParseReferences("<< masteragreement.doc >>")
	require.Len(t, refs, 1)
	require.NoError(t, m.MatchReferences(context.Background(), refPtrs(refs)))

	assert.True(t, refs[0].Matched)
	assert.Equal(t, int64(3), refs[0].AttachmentID)
}

func TestMatchReferences_ExactNotShadowedByBaseName(t *testing.T) {
	// Two records whose base names collide; the unqualified name must keep
	// resolving to the exact-name record.
	catalog := &fakeCatalog{records: []api.AttachmentRecord{
		{ID: 1, Filename: "memo.txt"},
		{ID: 2, Filename: "old/memo.txt"},
	}}
	m := NewMatcher(catalog)

	refs := ParseReferences("<< memo.txt >>")
	require.NoError(t, m.MatchReferences(context.Background(), refPtrs(refs)))
	assert.Equal(t, int64(1), refs[0].AttachmentID)
}

func TestMatchReferences_SingleBatchedLookup(t *testing.T) {
	catalog := &fakeCatalog{}
	m := NewMatcher(catalog)

	refs := ParseReferences("<< a.pdf >> << b.pdf >> << A.PDF >>")
	require.Len(t, refs, 3)
	require.NoError(t, m.MatchReferences(context.Background(), refPtrs(refs)))

	assert.Equal(t, 1, catalog.calls, "one page must cost one catalog query")
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, catalog.lastReq, "names deduplicated case-insensitively")
}

func TestMatchReferences_Empty(t *testing.T) {
	catalog := &fakeCatalog{}
	m := NewMatcher(catalog)
	require.NoError(t, m.MatchReferences(context.Background(), nil))
	assert.Zero(t, catalog.calls)
}
