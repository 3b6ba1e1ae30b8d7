// Package threads reconstructs conversation structure from flat,
// timestamp-ordered message rows: reply trees for the thread view and
// enriched, deduplicated pages for the message list view.
package threads

import (
	"fmt"

	"github.com/agentic-research/mailcorpus/api"
)

// BuildTree links one conversation's messages into a forest of reply trees.
// Input must be sorted ascending by timestamp; children inherit that order,
// so no sorting happens here.
//
// Conversations larger than limit are not linked at all: the returned view is
// truncated, carrying only the counts and a notice. This bounds memory and
// CPU on pathological threads (some archived subject groups run to tens of
// thousands of messages).
func BuildTree(messages []api.Message, limit int) *api.ThreadTreeView {
	total := len(messages)
	if limit > 0 && total > limit {
		return &api.ThreadTreeView{
			Total:     total,
			Limit:     limit,
			Truncated: true,
			Notice: fmt.Sprintf(
				"conversation has %d messages; tree view is limited to %d — use the message list instead",
				total, limit),
		}
	}

	ordered := make([]*api.ThreadNode, total)
	byID := make(map[string]*api.ThreadNode, total)
	for i := range messages {
		node := &api.ThreadNode{Message: messages[i]}
		ordered[i] = node
		// First occurrence wins on duplicate external ids.
		if id := messages[i].MessageID; id != "" {
			if _, ok := byID[id]; !ok {
				byID[id] = node
			}
		}
	}

	roots := make([]*api.ThreadNode, 0, total)
	for _, node := range ordered {
		if parentID := node.Message.InReplyTo; parentID != "" {
			if parent, ok := byID[parentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		// Replies whose parent is outside this conversation become roots.
		roots = append(roots, node)
	}

	return &api.ThreadTreeView{
		Total:     total,
		Displayed: total,
		Limit:     limit,
		Roots:     roots,
	}
}
