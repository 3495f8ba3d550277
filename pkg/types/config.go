// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MailConfig holds settings for the mail-automation fetch stage.
type MailConfig struct {
	// Account is the account name as shown in the Mail app (e.g. "iCloud").
	Account string `json:"account" yaml:"account"`

	// Mailbox is the mailbox inside Account (default "Inbox").
	Mailbox string `json:"mailbox" yaml:"mailbox"`

	// Limit caps the number of unread messages returned (default 5).
	Limit int `json:"limit" yaml:"limit"`

	// Osascript is the script runner binary (default "osascript").
	Osascript string `json:"osascript" yaml:"osascript"`
}

// HTTPConfig holds shared HTTP settings used when an alert is fetched by URL.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LedgerConfig holds settings for the paper ledger.
type LedgerConfig struct {
	// Dir is the base directory for the ledger (contains index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed entries (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputFormat selects how records are rendered.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Config groups all stage configurations.
type Config struct {
	Mail   MailConfig   `json:"mail" yaml:"mail"`
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
}
