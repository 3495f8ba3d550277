// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperRecord is a candidate paper link found in an alert email.
type PaperRecord struct {
	// Title is the trimmed visible text of the anchor. Never empty.
	Title string `json:"title" yaml:"title"`

	// URL is the anchor target exactly as it appeared in the document.
	URL string `json:"url" yaml:"url"`
}

// LedgerEntry is a PaperRecord as remembered by the paper ledger.
type LedgerEntry struct {
	PaperRecord `yaml:",inline"`

	// Source describes where the paper was last seen (an email subject,
	// a file path, or a URL).
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// FirstSeen is when the URL was first recorded.
	FirstSeen time.Time `json:"first_seen" yaml:"first_seen"`

	// LastSeen is when the URL was most recently recorded.
	LastSeen time.Time `json:"last_seen" yaml:"last_seen"`

	// TimesSeen counts how many extraction runs reported the URL.
	TimesSeen int `json:"times_seen" yaml:"times_seen"`
}
