package threads

import (
	"fmt"
	"testing"

	"github.com/agentic-research/mailcorpus/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id int64, messageID, inReplyTo string, ts int64) api.Message {
	return api.Message{ID: id, MessageID: messageID, InReplyTo: inReplyTo, Timestamp: ts}
}

func TestBuildTree_ReplyChain(t *testing.T) {
	messages := []api.Message{
		msg(1, "<m1>", "", 100),
		msg(2, "<m2>", "<m1>", 200),
		msg(3, "<m3>", "<m2>", 300),
	}

	view := BuildTree(messages, 1000)
	require.False(t, view.Truncated)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 3, view.Displayed)

	require.Len(t, view.Roots, 1)
	root := view.Roots[0]
	assert.Equal(t, "<m1>", root.Message.MessageID)

	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, "<m2>", child.Message.MessageID)

	require.Len(t, child.Children, 1)
	assert.Equal(t, "<m3>", child.Children[0].Message.MessageID)
	assert.Empty(t, child.Children[0].Children)
}

func TestBuildTree_OrphanReplyBecomesRoot(t *testing.T) {
	messages := []api.Message{
		msg(1, "<m1>", "", 100),
		msg(2, "<m2>", "<not-in-this-thread>", 200),
	}

	view := BuildTree(messages, 1000)
	require.Len(t, view.Roots, 2)
	assert.Equal(t, "<m1>", view.Roots[0].Message.MessageID)
	assert.Equal(t, "<m2>", view.Roots[1].Message.MessageID)
}

func TestBuildTree_ChildrenKeepTimestampOrder(t *testing.T) {
	messages := []api.Message{
		msg(1, "<root>", "", 100),
		msg(2, "<a>", "<root>", 150),
		msg(3, "<b>", "<root>", 200),
		msg(4, "<c>", "<root>", 250),
	}

	view := BuildTree(messages, 1000)
	require.Len(t, view.Roots, 1)
	children := view.Roots[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, "<a>", children[0].Message.MessageID)
	assert.Equal(t, "<b>", children[1].Message.MessageID)
	assert.Equal(t, "<c>", children[2].Message.MessageID)
}

func TestBuildTree_TruncationBoundary(t *testing.T) {
	messages := make([]api.Message, 1500)
	for i := range messages {
		messages[i] = msg(int64(i+1), fmt.Sprintf("<m%d>", i+1), "", int64(i))
	}

	view := BuildTree(messages, 1000)
	assert.True(t, view.Truncated)
	assert.Equal(t, 1500, view.Total)
	assert.Equal(t, 1000, view.Limit)
	assert.Zero(t, view.Displayed)
	assert.Nil(t, view.Roots, "no linking work on truncated conversations")
	assert.NotEmpty(t, view.Notice)
}

func TestBuildTree_AtLimitIsNotTruncated(t *testing.T) {
	messages := make([]api.Message, 1000)
	for i := range messages {
		messages[i] = msg(int64(i+1), fmt.Sprintf("<m%d>", i+1), "", int64(i))
	}

	view := BuildTree(messages, 1000)
	assert.False(t, view.Truncated)
	assert.Len(t, view.Roots, 1000)
}

func TestBuildTree_SelfReplyDoesNotCycle(t *testing.T) {
	messages := []api.Message{msg(1, "<m1>", "<m1>", 100)}

	view := BuildTree(messages, 10)
	require.Len(t, view.Roots, 1)
	assert.Empty(t, view.Roots[0].Children)
}

func TestBuildTree_Empty(t *testing.T) {
	view := BuildTree(nil, 1000)
	assert.False(t, view.Truncated)
	assert.Zero(t, view.Total)
	assert.Empty(t, view.Roots)
}
