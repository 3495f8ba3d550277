// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailstream parses the delimited message stream written by the
// mail-automation script into MessageRecords.
//
// The stream is line oriented:
//
//	###MSG_START###
//	SUBJECT: <subject>
//	SENDER: <sender>
//	CONTENT_START
//	<body lines>
//	CONTENT_END
//
// Fields are not escaped by the script, so a body line that happens to read
// "CONTENT_END" ends the block early. Parse never fails; damaged input yields
// fewer or truncated records.
package mailstream

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

const (
	markerStart        = "###MSG_START###"
	markerContentStart = "CONTENT_START"
	markerContentEnd   = "CONTENT_END"

	prefixSubject = "SUBJECT: "
	prefixSender  = "SENDER: "
)

// state is the scanner position relative to the current record.
type state int

const (
	// stateIdle: no record is open; nothing will be flushed.
	stateIdle state = iota
	// stateRecord: a record is open and accepts SUBJECT/SENDER lines.
	stateRecord
	// stateContent: a content block is open; lines are buffered verbatim.
	stateContent
)

// Parse splits raw into lines and returns one MessageRecord per start marker,
// in stream order. Field lines seen before the first start marker form an
// implicit leading record. An open content block is closed with whatever was
// buffered when the next start marker or the end of input arrives.
func Parse(raw string) []types.MessageRecord {
	sc := &scanner{}
	for _, line := range splitLines(raw) {
		sc.feed(line)
	}
	sc.flush()
	return sc.out
}

type scanner struct {
	state   state
	current types.MessageRecord
	buf     []string
	out     []types.MessageRecord
}

func (sc *scanner) feed(line string) {
	marker := strings.TrimSpace(line)

	switch {
	case marker == markerStart:
		sc.flush()
		sc.state = stateRecord

	case sc.state != stateContent && strings.HasPrefix(line, prefixSubject):
		sc.open()
		v := line[len(prefixSubject):]
		sc.current.Subject = &v

	case sc.state != stateContent && strings.HasPrefix(line, prefixSender):
		sc.open()
		v := line[len(prefixSender):]
		sc.current.Sender = &v

	case marker == markerContentStart:
		sc.open()
		sc.state = stateContent

	case marker == markerContentEnd:
		sc.open()
		sc.closeContent()
		sc.state = stateRecord

	case sc.state == stateContent:
		sc.buf = append(sc.buf, line)
	}
}

// open starts an implicit record when a field line arrives outside one.
func (sc *scanner) open() {
	if sc.state == stateIdle {
		sc.state = stateRecord
	}
}

// closeContent stores the buffer as the record content. The buffer is kept
// until the next flush, so a reopened block extends the same content.
func (sc *scanner) closeContent() {
	content := strings.TrimSpace(strings.Join(sc.buf, "\n"))
	sc.current.Content = &content
}

func (sc *scanner) flush() {
	if sc.state == stateIdle {
		return
	}
	if sc.state == stateContent {
		sc.closeContent()
	}
	sc.out = append(sc.out, sc.current)
	sc.current = types.MessageRecord{}
	sc.buf = nil
	sc.state = stateIdle
}

// isLineBreak reports whether r ends a line. Besides LF and CR this covers
// VT, FF, the ASCII separators 0x1c-0x1e, NEL, U+2028 and U+2029.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// splitLines breaks text at every line boundary, treating CRLF as one. A
// trailing line break does not produce an empty final line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if i < start || !isLineBreak(r) {
			continue
		}
		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && start < len(text) && text[start] == '\n' {
			start++
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
