package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferences_Markers(t *testing.T) {
	body := `Please review the attached.

<< File: Q3_Report.PDF >>
<<budget.xls>>
Some trailing text << File: notes >> end.`

	refs := ParseReferences(body)
	require.Len(t, refs, 3)

	assert.Equal(t, "Q3_Report.PDF", refs[0].Filename)
	assert.Equal(t, "pdf", refs[0].Extension)
	assert.Equal(t, CategoryDocument, refs[0].Category)
	assert.False(t, refs[0].Matched)

	assert.Equal(t, "budget.xls", refs[1].Filename)
	assert.Equal(t, CategorySpreadsheet, refs[1].Category)

	assert.Equal(t, "notes", refs[2].Filename)
	assert.Equal(t, "unknown", refs[2].Extension)
	assert.Equal(t, CategoryOther, refs[2].Category)
}

func TestParseReferences_NoMarkers(t *testing.T) {
	assert.Nil(t, ParseReferences("plain body with no markers, even with < and > alone"))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"noext", "unknown"},
		{"trailingdot.", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.name), "Extension(%q)", tt.name)
	}
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, CategoryPresentation, Categorize("pptx"))
	assert.Equal(t, CategoryEmail, Categorize("msg"))
	assert.Equal(t, CategoryArchive, Categorize("zip"))
	assert.Equal(t, CategoryOther, Categorize("xyz"))
	assert.Equal(t, CategoryOther, Categorize("unknown"))
}
