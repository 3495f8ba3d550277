// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail fetches unread messages from the local Mail app by running a
// generated AppleScript through osascript. The script prints the delimited
// message stream understood by internal/mailstream.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-mail/internal/mailstream"
	"github.com/pdiddy/scholar-mail/pkg/types"
)

const (
	defaultBinary  = "osascript"
	defaultMailbox = "Inbox"
	defaultLimit   = 5
)

// fetchScriptTmpl walks the unread messages of one mailbox and prints them
// in the delimited stream format. Account and mailbox are substituted as-is;
// a name containing a double quote breaks the script.
var fetchScriptTmpl = template.Must(template.New("fetch").Parse(`tell application "Mail"
	tell account "{{.Account}}"
		tell mailbox "{{.Mailbox}}"
			set unreadMsgs to (messages whose read status is false)
			set msgCount to count of unreadMsgs

			if msgCount is 0 then return ""

			if msgCount > {{.Limit}} then
				set targetMsgs to items 1 thru {{.Limit}} of unreadMsgs
			else
				set targetMsgs to unreadMsgs
			end if

			set output to ""
			repeat with msg in targetMsgs
				set msgSubject to subject of msg
				set msgSender to sender of msg
				set msgContent to content of msg

				set output to output & "###MSG_START###" & linefeed
				set output to output & "SUBJECT: " & msgSubject & linefeed
				set output to output & "SENDER: " & msgSender & linefeed
				set output to output & "CONTENT_START" & linefeed
				set output to output & msgContent & linefeed
				set output to output & "CONTENT_END" & linefeed
			end repeat
			return output
		end tell
	end tell
end tell
`))

// Script renders the AppleScript program that lists up to limit unread
// messages of account/mailbox.
func Script(account, mailbox string, limit int) (string, error) {
	var buf bytes.Buffer
	err := fetchScriptTmpl.Execute(&buf, struct {
		Account string
		Mailbox string
		Limit   int
	}{account, mailbox, limit})
	if err != nil {
		return "", fmt.Errorf("rendering fetch script: %w", err)
	}
	return buf.String(), nil
}

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Client fetches unread mail through the script runner.
type Client struct {
	bin     string
	mailbox string
	limit   int
	exec    executor
	logger  *zap.Logger
}

// NewClient returns a Client using cfg. Zero values fall back to osascript,
// the "Inbox" mailbox, and a limit of 5. A nil logger discards log output.
func NewClient(cfg types.MailConfig, logger *zap.Logger) *Client {
	return newClient(cfg, osExecutor{}, logger)
}

func newClient(cfg types.MailConfig, exec executor, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		bin:     cfg.Osascript,
		mailbox: cfg.Mailbox,
		limit:   cfg.Limit,
		exec:    exec,
		logger:  logger,
	}
	if c.bin == "" {
		c.bin = defaultBinary
	}
	if c.mailbox == "" {
		c.mailbox = defaultMailbox
	}
	if c.limit <= 0 {
		c.limit = defaultLimit
	}
	return c
}

// FetchRaw runs the fetch script and returns its standard output.
func (c *Client) FetchRaw(ctx context.Context, account, mailbox string, limit int) (string, error) {
	if mailbox == "" {
		mailbox = c.mailbox
	}
	if limit <= 0 {
		limit = c.limit
	}

	script, err := Script(account, mailbox, limit)
	if err != nil {
		return "", err
	}

	c.logger.Debug("running mail script",
		zap.String("account", account),
		zap.String("mailbox", mailbox),
		zap.Int("limit", limit))

	stdout, stderr, err := c.exec.Run(ctx, c.bin, "-e", script)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", c.bin, err, strings.TrimSpace(string(stderr)))
	}
	return string(stdout), nil
}

// FetchUnread returns up to limit unread messages from account/mailbox.
// Script failures are logged and produce an empty result; FetchUnread never
// returns an error.
func (c *Client) FetchUnread(ctx context.Context, account, mailbox string, limit int) []types.MessageRecord {
	raw, err := c.FetchRaw(ctx, account, mailbox, limit)
	if err != nil {
		c.logger.Error("fetching mail", zap.String("account", account), zap.Error(err))
		return nil
	}

	records := mailstream.Parse(raw)
	empty := 0
	for i, r := range records {
		if r.IsEmpty() {
			empty++
			continue
		}
		c.logger.Debug("message",
			zap.Int("index", i),
			zap.String("subject", r.SubjectOr("")),
			zap.String("sender", r.SenderOr("")),
			zap.Int("content_bytes", len(r.ContentOr(""))))
	}
	c.logger.Debug("parsed mail stream",
		zap.Int("messages", len(records)),
		zap.Int("empty", empty))
	return records
}
