// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailbox

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartAlert = "From: Google Scholar Alerts <scholaralerts-noreply@google.com>\r\n" +
	"Subject: =?UTF-8?Q?New_results_for_=E2=80=9Cgraphs=E2=80=9D?=\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Graph neural networks in chemistry\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"<a href=3D\"https://arxiv.org/abs/1\">Graph neural networks in chemistry</a>\r\n" +
	"--b1--\r\n"

const plainOnly = "From: someone@example.com\r\n" +
	"Subject: plain\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"no html here\r\n"

func TestReadMessage(t *testing.T) {
	alert, err := ReadMessage(strings.NewReader(multipartAlert))
	require.NoError(t, err)

	assert.Equal(t, "New results for “graphs”", alert.Subject)
	assert.Equal(t, "Google Scholar Alerts <scholaralerts-noreply@google.com>", alert.Sender)
	assert.Contains(t, alert.HTML, `<a href="https://arxiv.org/abs/1">Graph neural networks in chemistry</a>`)
}

func TestReadMessageSinglePartHTML(t *testing.T) {
	raw := "Subject: digest\r\nContent-Type: text/html\r\n\r\n<p>hello</p>\r\n"
	alert, err := ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "digest", alert.Subject)
	assert.Contains(t, alert.HTML, "<p>hello</p>")
}

func TestReadMessageNoHTML(t *testing.T) {
	_, err := ReadMessage(strings.NewReader(plainOnly))
	assert.ErrorIs(t, err, ErrNoHTML)
}

func mboxOf(messages ...string) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString("From MAILER-DAEMON Mon Jan  1 00:00:00 2024\n")
		b.WriteString(strings.ReplaceAll(m, "\r\n", "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func TestReadMbox(t *testing.T) {
	archive := mboxOf(multipartAlert, plainOnly, multipartAlert)

	alerts, err := ReadMbox(context.Background(), strings.NewReader(archive), nil)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Contains(t, a.HTML, "https://arxiv.org/abs/1")
	}
}

func TestReadMboxEmpty(t *testing.T) {
	alerts, err := ReadMbox(context.Background(), strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestReadMboxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadMbox(ctx, strings.NewReader(mboxOf(multipartAlert)), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
