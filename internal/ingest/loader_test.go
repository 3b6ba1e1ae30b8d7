package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchOne = `[
	{
		"message_id": "<100.JavaMail.evans@thyme>",
		"timestamp": 978350400,
		"from_address": "Kay.Mann@corp.example",
		"from_name": "Kay Mann",
		"to_addresses": [{"name": "Suzanne Adams", "address": "suzanne.adams@corp.example"}],
		"cc_addresses": [{"name": "", "address": "ben.jacoby@corp.example"}],
		"bcc_addresses": [],
		"subject": "Turbine contract",
		"in_reply_to": "",
		"references": [],
		"body": "Please see the attached draft.\n\n<< File: TurbineDraft.doc >>",
		"attachments": [
			{"sha256_hash": "aa01", "original_filename": "TurbineDraft.doc", "mime_type": "application/msword", "file_size": 20480}
		]
	},
	{
		"message_id": "<101.JavaMail.evans@thyme>",
		"timestamp": 978354000,
		"from_address": "suzanne.adams@corp.example",
		"from_name": "Suzanne Adams",
		"to_addresses": [{"name": "Kay Mann", "address": "kay.mann@corp.example"}],
		"cc_addresses": [],
		"bcc_addresses": [],
		"subject": "RE: Turbine contract",
		"in_reply_to": "<100.JavaMail.evans@thyme>",
		"references": ["<100.JavaMail.evans@thyme>"],
		"body": "Looks fine to me.",
		"attachments": []
	}
]`

// Same message_id as batch one — a mailbox overlap duplicate.
const batchTwo = `[
	{
		"message_id": "<100.JavaMail.evans@thyme>",
		"timestamp": 978350400,
		"from_address": "kay.mann@corp.example",
		"from_name": "Kay Mann",
		"to_addresses": [{"name": "Suzanne Adams", "address": "suzanne.adams@corp.example"}],
		"cc_addresses": [],
		"bcc_addresses": [],
		"subject": "Turbine contract",
		"in_reply_to": "",
		"references": [],
		"body": "Please see the attached draft.\n\n<< File: TurbineDraft.doc >>",
		"attachments": []
	}
]`

func loadFixture(t *testing.T) *Loader {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emails_batch_001.json"), []byte(batchOne), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emails_batch_002.json"), []byte(batchTwo), 0o644))

	l, err := Open(filepath.Join(dir, "corpus.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	stats, err := l.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Messages)
	assert.Equal(t, 1, stats.Duplicates)
	return l
}

func TestLoadDir_InsertsAndSkipsDuplicates(t *testing.T) {
	l := loadFixture(t)

	var messages, people, attachments int
	require.NoError(t, l.DB().QueryRow("SELECT COUNT(*) FROM messages").Scan(&messages))
	require.NoError(t, l.DB().QueryRow("SELECT COUNT(*) FROM people").Scan(&people))
	require.NoError(t, l.DB().QueryRow("SELECT COUNT(*) FROM attachments").Scan(&attachments))
	assert.Equal(t, 2, messages)
	assert.Equal(t, 3, people, "kay, suzanne, ben")
	assert.Equal(t, 1, attachments)

	// From addresses are lowercased before identity resolution.
	var kayCount int
	require.NoError(t, l.DB().QueryRow(
		"SELECT COUNT(*) FROM people WHERE email LIKE '%kay.mann%'").Scan(&kayCount))
	assert.Equal(t, 1, kayCount, "mixed-case sender must not split identities")

	var hasAtt int
	require.NoError(t, l.DB().QueryRow(
		"SELECT has_attachments FROM messages WHERE message_id = '<100.JavaMail.evans@thyme>'").Scan(&hasAtt))
	assert.Equal(t, 1, hasAtt)
}

func TestBuildThreads_GroupsByNormalizedSubject(t *testing.T) {
	l := loadFixture(t)

	threads, err := l.BuildThreads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, threads, "reply shares the original's thread")

	var distinct int
	require.NoError(t, l.DB().QueryRow(
		"SELECT COUNT(DISTINCT thread_id) FROM messages").Scan(&distinct))
	assert.Equal(t, 1, distinct)

	var count int
	require.NoError(t, l.DB().QueryRow("SELECT message_count FROM threads").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestUpdatePeopleStats(t *testing.T) {
	l := loadFixture(t)
	require.NoError(t, l.UpdatePeopleStats(context.Background()))

	var sent, received int
	require.NoError(t, l.DB().QueryRow(
		"SELECT sent_count, received_count FROM people WHERE email = 'kay.mann@corp.example'").
		Scan(&sent, &received))
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, received, "the reply addressed kay")
}

func TestNormalizeSubject(t *testing.T) {
	cases := map[string]string{
		"Turbine contract":           "turbine contract",
		"RE: Turbine contract":       "turbine contract",
		"Re: re: FW: Turbine   deal": "turbine deal",
		"Fwd: budget":                "budget",
		"  ":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSubject(in), "input %q", in)
	}
}
