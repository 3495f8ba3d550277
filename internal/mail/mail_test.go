// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// fakeExecutor records the last call and returns configured output.
type fakeExecutor struct {
	stdout string
	stderr string
	err    error

	name string
	args []string
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name = name
	f.args = args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

const sampleStream = `###MSG_START###
SUBJECT: 3 new results for "graph learning"
SENDER: Google Scholar Alerts <scholaralerts-noreply@google.com>
CONTENT_START
Scaling laws for sparse mixture models
A Author - arXiv, 2024
CONTENT_END
`

func TestFetchUnread(t *testing.T) {
	fx := &fakeExecutor{stdout: sampleStream}
	c := newClient(types.MailConfig{}, fx, nil)

	got := c.FetchUnread(context.Background(), "iCloud", "Google Scholar", 3)
	require.Len(t, got, 1)
	assert.Equal(t, `3 new results for "graph learning"`, got[0].SubjectOr(""))
	assert.Equal(t, "Scaling laws for sparse mixture models\nA Author - arXiv, 2024", got[0].ContentOr(""))

	assert.Equal(t, "osascript", fx.name)
	require.Len(t, fx.args, 2)
	assert.Equal(t, "-e", fx.args[0])
	assert.Contains(t, fx.args[1], `tell account "iCloud"`)
	assert.Contains(t, fx.args[1], `tell mailbox "Google Scholar"`)
	assert.Contains(t, fx.args[1], "items 1 thru 3 of unreadMsgs")
}

func TestFetchUnreadDefaults(t *testing.T) {
	fx := &fakeExecutor{}
	c := newClient(types.MailConfig{Osascript: "/usr/local/bin/osascript", Mailbox: "Alerts", Limit: 7}, fx, nil)

	got := c.FetchUnread(context.Background(), "Work", "", 0)
	assert.Empty(t, got)
	assert.Equal(t, "/usr/local/bin/osascript", fx.name)
	assert.Contains(t, fx.args[1], `tell mailbox "Alerts"`)
	assert.Contains(t, fx.args[1], "msgCount > 7")
}

func TestFetchUnreadFailureYieldsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	fx := &fakeExecutor{
		stdout: sampleStream,
		stderr: "execution error: Mail got an error: Can't get account \"Nope\". (-1728)\n",
		err:    errors.New("exit status 1"),
	}
	c := newClient(types.MailConfig{}, fx, zap.New(core))

	got := c.FetchUnread(context.Background(), "Nope", "Inbox", 5)
	assert.Empty(t, got, "stdout must be ignored when the script fails")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "fetching mail", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "Can't get account")
}

func TestFetchUnreadLogsMessagesAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fx := &fakeExecutor{stdout: "###MSG_START###\n" + sampleStream}
	c := newClient(types.MailConfig{}, fx, zap.New(core))

	got := c.FetchUnread(context.Background(), "iCloud", "Inbox", 5)
	require.Len(t, got, 2)

	msgs := logs.FilterMessage("message").All()
	require.Len(t, msgs, 1)
	fields := msgs[0].ContextMap()
	assert.Equal(t, int64(1), fields["index"])
	assert.Equal(t, `3 new results for "graph learning"`, fields["subject"])
	assert.Equal(t, "Google Scholar Alerts <scholaralerts-noreply@google.com>", fields["sender"])
	assert.Equal(t, int64(len(got[1].ContentOr(""))), fields["content_bytes"])

	summary := logs.FilterMessage("parsed mail stream").All()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(1), summary[0].ContextMap()["empty"])
}

func TestFetchRawError(t *testing.T) {
	fx := &fakeExecutor{err: errors.New("executable file not found in $PATH")}
	c := newClient(types.MailConfig{}, fx, nil)

	_, err := c.FetchRaw(context.Background(), "iCloud", "Inbox", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "osascript failed")
}

func TestScriptDoesNotEscapeNames(t *testing.T) {
	script, err := Script(`Bob's "Work"`, "Inbox", 2)
	require.NoError(t, err)
	assert.Contains(t, script, `tell account "Bob's "Work""`)
	assert.Contains(t, script, `"###MSG_START###"`)
	assert.Contains(t, script, `"CONTENT_END"`)
}

func TestNewClient(t *testing.T) {
	c := NewClient(types.MailConfig{}, nil)
	assert.Equal(t, defaultBinary, c.bin)
	assert.Equal(t, defaultMailbox, c.mailbox)
	assert.Equal(t, defaultLimit, c.limit)
	assert.IsType(t, osExecutor{}, c.exec)
}
