// Package attachments parses inline textual attachment references out of
// message bodies and cross-references them against the stored attachment
// catalog.
//
// Archived bodies carry markers of the form "<< File: NAME >>" (the "File:"
// prefix is optional) where the original client stripped the attachment and
// left only its filename behind.
package attachments

import (
	"regexp"
	"strings"

	"github.com/agentic-research/mailcorpus/api"
)

// refPattern matches "<< NAME >>" and "<< File: NAME >>" markers.
// NAME must not contain angle brackets; surrounding whitespace is trimmed
// by the non-greedy group plus the \s* anchors.
var refPattern = regexp.MustCompile(`<<\s*(?:File:\s*)?([^<>]+?)\s*>>`)

// Coarse categories derived from file extensions.
const (
	CategoryDocument     = "document"
	CategorySpreadsheet  = "spreadsheet"
	CategoryImage        = "image"
	CategoryArchive      = "archive"
	CategoryPresentation = "presentation"
	CategoryEmail        = "email"
	CategoryOther        = "other"
)

// unknownExtension is reported when a referenced name has no extension.
const unknownExtension = "unknown"

var categoryByExtension = map[string]string{
	"doc":  CategoryDocument,
	"docx": CategoryDocument,
	"pdf":  CategoryDocument,
	"txt":  CategoryDocument,
	"rtf":  CategoryDocument,
	"wpd":  CategoryDocument,
	"xls":  CategorySpreadsheet,
	"xlsx": CategorySpreadsheet,
	"csv":  CategorySpreadsheet,
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"png":  CategoryImage,
	"gif":  CategoryImage,
	"bmp":  CategoryImage,
	"tif":  CategoryImage,
	"tiff": CategoryImage,
	"zip":  CategoryArchive,
	"tar":  CategoryArchive,
	"gz":   CategoryArchive,
	"rar":  CategoryArchive,
	"7z":   CategoryArchive,
	"ppt":  CategoryPresentation,
	"pptx": CategoryPresentation,
	"msg":  CategoryEmail,
	"eml":  CategoryEmail,
}

// ParseReferences scans a message body for attachment markers and returns one
// reference per marker, unmatched. Matching against the catalog is a separate
// batched step (Matcher.MatchReferences).
func ParseReferences(body string) []api.TextAttachmentReference {
	matches := refPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]api.TextAttachmentReference, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		ext := Extension(name)
		refs = append(refs, api.TextAttachmentReference{
			Filename:  name,
			Extension: ext,
			Category:  Categorize(ext),
		})
	}
	return refs
}

// Extension returns the lower-cased text after the last dot in name, or
// "unknown" when there is none.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return unknownExtension
	}
	return strings.ToLower(name[i+1:])
}

// Categorize maps an extension to its coarse category; anything not in the
// table is "other".
func Categorize(ext string) string {
	if category, ok := categoryByExtension[ext]; ok {
		return category
	}
	return CategoryOther
}
