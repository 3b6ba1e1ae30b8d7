package api

// PersonNode is a read-only snapshot of one person in the archive, carrying
// the aggregate counts the social graph is weighted by.
type PersonNode struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Sent     int64  `json:"sent"`
	Received int64  `json:"received"`
	Total    int64  `json:"total"`
	IsCenter bool   `json:"is_center,omitempty"`
}

// Edge is a directed, weighted connection between two PersonNodes.
// Both endpoints always belong to the node set returned alongside it.
type Edge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
	Weight int64 `json:"weight"`
}

// GraphView is the cache payload for the network:* key namespace.
type GraphView struct {
	Nodes     []PersonNode `json:"nodes"`
	Edges     []Edge       `json:"edges"`
	NodeCount int          `json:"node_count"`
	EdgeCount int          `json:"edge_count"`
}

// Message is an immutable snapshot of one archived message.
// Timestamp is Unix seconds, matching the archive's timestamp column.
type Message struct {
	ID             int64  `json:"id"`
	MessageID      string `json:"message_id"`
	FromID         int64  `json:"from_id"`
	FromEmail      string `json:"from_email"`
	FromName       string `json:"from_name,omitempty"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Timestamp      int64  `json:"timestamp"`
	InReplyTo      string `json:"in_reply_to,omitempty"`
	HasAttachments bool   `json:"has_attachments"`
}

// ThreadNode wraps a Message with its replies. Children are ordered by
// ascending timestamp, inherited from the input ordering during linking.
type ThreadNode struct {
	Message  Message       `json:"message"`
	Children []*ThreadNode `json:"children,omitempty"`
}

// ThreadTreeView is the cache payload for threads:tree keys. When Truncated
// is set, Roots is nil and Notice explains why the tree was not built.
type ThreadTreeView struct {
	Total     int           `json:"total"`
	Displayed int           `json:"displayed"`
	Limit     int           `json:"limit"`
	Truncated bool          `json:"truncated"`
	Notice    string        `json:"notice,omitempty"`
	Roots     []*ThreadNode `json:"roots,omitempty"`
}

// AttachmentRecord is a read-only catalog entry for a stored attachment.
type AttachmentRecord struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// TextAttachmentReference is a filename mentioned inline in a message body.
// Catalog fields are populated only when Matched is true.
type TextAttachmentReference struct {
	Filename       string `json:"filename"`
	Extension      string `json:"extension"`
	Category       string `json:"category"`
	Matched        bool   `json:"matched"`
	AttachmentID   int64  `json:"attachment_id,omitempty"`
	StoredFilename string `json:"stored_filename,omitempty"`
	MimeType       string `json:"mime_type,omitempty"`
	FileSize       int64  `json:"file_size,omitempty"`
}

// EnrichedMessage is a Message plus its stored attachments and the inline
// references parsed from its body.
type EnrichedMessage struct {
	Message
	Attachments []AttachmentRecord        `json:"attachments,omitempty"`
	References  []TextAttachmentReference `json:"references,omitempty"`
}

// Pagination describes one page of a deduplicated message list.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// MessagePage is the cache payload for threads:messages keys.
type MessagePage struct {
	Messages   []EnrichedMessage `json:"messages"`
	Pagination Pagination        `json:"pagination"`
}

// CorpusStats summarizes the archive as a whole.
type CorpusStats struct {
	People          int64 `json:"people"`
	Messages        int64 `json:"messages"`
	Threads         int64 `json:"threads"`
	Attachments     int64 `json:"attachments"`
	AttachmentBytes int64 `json:"attachment_bytes"`
	FirstTimestamp  int64 `json:"first_timestamp,omitempty"`
	LastTimestamp   int64 `json:"last_timestamp,omitempty"`
}
