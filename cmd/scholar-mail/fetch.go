// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-mail/internal/mail"
	"github.com/pdiddy/scholar-mail/internal/mailstream"
	"github.com/pdiddy/scholar-mail/internal/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch unread messages from the Mail app",
	Long: `Fetch runs an AppleScript through osascript that lists the unread
messages of one account and mailbox, then prints them as records with
subject, sender, and content.

The account and mailbox names are inserted into the script verbatim. Names
containing double quotes are not supported. If the script fails, fetch logs
the failure and prints an empty list.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	cfg := loadConfig().Mail
	if cfg.Account == "" {
		return fmt.Errorf("account required: pass --account or set mail.account")
	}

	client := mail.NewClient(cfg, logger)
	records := client.FetchUnread(cmd.Context(), cfg.Account, cfg.Mailbox, cfg.Limit)
	return output.Write(cmd.OutOrStdout(), format, records)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a captured delimited message stream",
	Long: `Parse reads raw fetch-script output from a file (or stdin when the
file is "-" or omitted) and prints the message records. Useful for
replaying a captured stream without the Mail app.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	raw, _, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, mailstream.Parse(raw))
}

// readInput returns the contents of args[0], or stdin when args is empty
// or "-", along with a label naming the source.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func init() {
	fetchCmd.Flags().String("account", "", "Mail account name (e.g. iCloud)")
	fetchCmd.Flags().String("mailbox", "Inbox", "mailbox within the account")
	fetchCmd.Flags().Int("limit", 5, "maximum number of unread messages")
	fetchCmd.Flags().String("osascript", "osascript", "script runner binary")

	_ = viper.BindPFlag("mail.account", fetchCmd.Flags().Lookup("account"))
	_ = viper.BindPFlag("mail.mailbox", fetchCmd.Flags().Lookup("mailbox"))
	_ = viper.BindPFlag("mail.limit", fetchCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("mail.osascript", fetchCmd.Flags().Lookup("osascript"))

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(parseCmd)
}
