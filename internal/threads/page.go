package threads

import (
	"context"
	"fmt"

	"github.com/agentic-research/mailcorpus/api"
	"github.com/agentic-research/mailcorpus/internal/attachments"
)

// AttachmentSource resolves stored attachments for a batch of messages in a
// single round-trip.
type AttachmentSource interface {
	AttachmentsForMessages(ctx context.Context, messageIDs []int64) (map[int64][]api.AttachmentRecord, error)
}

// PageBuilder enriches one already-deduplicated page of a conversation with
// stored attachments and parsed body references. Deduplication itself happens
// upstream in the store query (sender id + body content hash, earliest
// timestamp kept); this stage never drops or reorders messages.
type PageBuilder struct {
	attachments AttachmentSource
	matcher     *attachments.Matcher
}

// NewPageBuilder creates a PageBuilder.
func NewPageBuilder(source AttachmentSource, matcher *attachments.Matcher) *PageBuilder {
	return &PageBuilder{attachments: source, matcher: matcher}
}

// PageRequest carries the pagination parameters the page was fetched with.
type PageRequest struct {
	Total int // deduplicated conversation size
	Page  int // 1-based
	Limit int
}

// BuildDedupedPage enriches messages and assembles pagination metadata.
// Exactly two batched collaborator calls happen per page: one stored-
// attachment fetch and one catalog match — never one per message.
func (b *PageBuilder) BuildDedupedPage(ctx context.Context, messages []api.Message, req PageRequest) (*api.MessagePage, error) {
	var flagged []int64
	for i := range messages {
		if messages[i].HasAttachments {
			flagged = append(flagged, messages[i].ID)
		}
	}

	stored := map[int64][]api.AttachmentRecord{}
	if len(flagged) > 0 {
		var err error
		stored, err = b.attachments.AttachmentsForMessages(ctx, flagged)
		if err != nil {
			return nil, fmt.Errorf("fetch stored attachments: %w", err)
		}
	}

	enriched := make([]api.EnrichedMessage, len(messages))
	var refs []*api.TextAttachmentReference
	for i := range messages {
		enriched[i] = api.EnrichedMessage{
			Message:     messages[i],
			Attachments: stored[messages[i].ID],
			References:  attachments.ParseReferences(messages[i].Body),
		}
		for j := range enriched[i].References {
			refs = append(refs, &enriched[i].References[j])
		}
	}

	if err := b.matcher.MatchReferences(ctx, refs); err != nil {
		return nil, err
	}

	totalPages := 0
	if req.Limit > 0 {
		totalPages = (req.Total + req.Limit - 1) / req.Limit
	}
	return &api.MessagePage{
		Messages: enriched,
		Pagination: api.Pagination{
			Total:      req.Total,
			Page:       req.Page,
			Limit:      req.Limit,
			TotalPages: totalPages,
		},
	}, nil
}
