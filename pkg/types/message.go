// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records produced by the scholar-mail parsers and
// the configuration shared by the CLI stages.
//
// MessageRecord is produced by internal/mailstream from the delimited text
// emitted by the mail-automation script; PaperRecord is produced by
// internal/scholar from the HTML body of an alert email. Both are ephemeral:
// built per call and handed straight to the output layer.
package types

// MessageRecord is one email message recovered from the delimited message
// stream. A nil field means the stream never supplied it for this message.
type MessageRecord struct {
	// Subject is the text following "SUBJECT: ", untrimmed.
	Subject *string `json:"subject,omitempty" yaml:"subject,omitempty"`

	// Sender is the raw sender field, usually "Display Name <address>".
	Sender *string `json:"sender,omitempty" yaml:"sender,omitempty"`

	// Content is the message body with surrounding blank lines removed.
	// Interior line breaks are kept as they appeared.
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`
}

// IsEmpty reports whether no field was populated.
func (m MessageRecord) IsEmpty() bool {
	return m.Subject == nil && m.Sender == nil && m.Content == nil
}

// SubjectOr returns the subject, or fallback when it is absent.
func (m MessageRecord) SubjectOr(fallback string) string {
	if m.Subject == nil {
		return fallback
	}
	return *m.Subject
}

// SenderOr returns the sender, or fallback when it is absent.
func (m MessageRecord) SenderOr(fallback string) string {
	if m.Sender == nil {
		return fallback
	}
	return *m.Sender
}

// ContentOr returns the content, or fallback when it is absent.
func (m MessageRecord) ContentOr(fallback string) string {
	if m.Content == nil {
		return fallback
	}
	return *m.Content
}
