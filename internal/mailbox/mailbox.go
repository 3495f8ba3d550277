// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailbox reads archived alert emails (mbox archives and single
// RFC 5322 messages) and returns their HTML bodies for link extraction.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"go.uber.org/zap"
)

// ErrNoHTML is returned by ReadMessage when the message has no text/html part.
var ErrNoHTML = errors.New("message has no text/html part")

var errStopWalk = errors.New("stop walk")

// Alert is an archived email reduced to what link extraction needs.
type Alert struct {
	Subject string
	Sender  string
	HTML    string
}

// ReadMessage parses one message and returns its first text/html part.
// Unknown charsets are tolerated; the part is then read undecoded.
func ReadMessage(r io.Reader) (Alert, error) {
	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return Alert{}, fmt.Errorf("parsing message: %w", err)
	}

	var alert Alert
	alert.Subject, _ = entity.Header.Text("Subject")
	alert.Sender, _ = entity.Header.Text("From")

	found := false
	err = entity.Walk(func(_ []int, part *message.Entity, err error) error {
		if err != nil && !message.IsUnknownCharset(err) {
			return err
		}
		mediaType, _, _ := part.Header.ContentType()
		if !strings.EqualFold(mediaType, "text/html") {
			return nil
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return fmt.Errorf("reading html part: %w", err)
		}
		alert.HTML = string(body)
		found = true
		return errStopWalk
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return Alert{}, fmt.Errorf("walking message parts: %w", err)
	}
	if !found {
		return Alert{}, ErrNoHTML
	}
	return alert, nil
}

// ReadMbox returns the HTML alerts contained in an mbox archive, in archive
// order. Messages without an HTML part or that fail to parse are logged and
// skipped. Only a failure of the archive framing itself is returned.
func ReadMbox(ctx context.Context, r io.Reader, logger *zap.Logger) ([]Alert, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := mboxlib.NewReader(r)
	var alerts []Alert
	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return alerts, err
		}

		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return alerts, nil
			}
			return alerts, fmt.Errorf("message %d: %w", idx, err)
		}

		alert, err := ReadMessage(msgReader)
		if err != nil {
			if errors.Is(err, ErrNoHTML) {
				logger.Debug("skipping message without html", zap.Int("index", idx))
			} else {
				logger.Warn("skipping unreadable message", zap.Int("index", idx), zap.Error(err))
			}
			continue
		}
		alerts = append(alerts, alert)
	}
}
