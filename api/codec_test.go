package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphViewRoundTrip(t *testing.T) {
	view := &GraphView{
		Nodes: []PersonNode{
			{ID: 1, Email: "kay@corp.example", Name: "Kay", Sent: 9, Received: 4, Total: 13, IsCenter: true},
			{ID: 2, Email: "lee@corp.example", Name: "lee", Total: 2},
		},
		Edges:     []Edge{{Source: 1, Target: 2, Weight: 3}},
		NodeCount: 2,
		EdgeCount: 1,
	}

	data, err := EncodeGraphView(view)
	require.NoError(t, err)
	got, err := DecodeGraphView(data)
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestThreadTreeViewRoundTrip(t *testing.T) {
	root := &ThreadNode{
		Message: Message{ID: 1, MessageID: "<a@x>", FromEmail: "kay@corp.example", Subject: "Deal", Timestamp: 1000},
		Children: []*ThreadNode{
			{Message: Message{ID: 2, MessageID: "<b@x>", InReplyTo: "<a@x>", Timestamp: 2000}},
		},
	}
	view := &ThreadTreeView{Total: 2, Displayed: 2, Limit: 1000, Roots: []*ThreadNode{root}}

	data, err := EncodeThreadTreeView(view)
	require.NoError(t, err)
	got, err := DecodeThreadTreeView(data)
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestMessagePageRoundTrip(t *testing.T) {
	view := &MessagePage{
		Messages: []EnrichedMessage{
			{
				Message:     Message{ID: 1, Body: "see << File: a.doc >>", HasAttachments: true},
				Attachments: []AttachmentRecord{{ID: 7, Filename: "a.doc", MimeType: "application/msword", FileSize: 10}},
				References: []TextAttachmentReference{
					{Filename: "a.doc", Extension: "doc", Category: "document", Matched: true, AttachmentID: 7},
				},
			},
		},
		Pagination: Pagination{Total: 1, Page: 1, Limit: 50, TotalPages: 1},
	}

	data, err := EncodeMessagePage(view)
	require.NoError(t, err)
	got, err := DecodeMessagePage(data)
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestCorpusStatsRoundTrip(t *testing.T) {
	stats := &CorpusStats{People: 3, Messages: 9, Threads: 2, Attachments: 1,
		AttachmentBytes: 20480, FirstTimestamp: 1000, LastTimestamp: 3000}

	data, err := EncodeCorpusStats(stats)
	require.NoError(t, err)
	got, err := DecodeCorpusStats(data)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeGraphView([]byte("{not json"))
	require.Error(t, err)
}
