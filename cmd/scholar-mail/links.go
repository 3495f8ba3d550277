// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/scholar-mail/internal/httputil"
	"github.com/pdiddy/scholar-mail/internal/ledger"
	"github.com/pdiddy/scholar-mail/internal/mailbox"
	"github.com/pdiddy/scholar-mail/internal/output"
	"github.com/pdiddy/scholar-mail/internal/scholar"
	"github.com/pdiddy/scholar-mail/pkg/types"
)

var linksCmd = &cobra.Command{
	Use:   "links [file]",
	Short: "Extract academic paper links from alert HTML",
	Long: `Links reads the HTML of one or more academic alert emails and prints
the paper links found in them, deduplicated by URL.

Input comes from a file argument, stdin ("-" or no argument), a URL (--url),
an mbox archive (--mbox), or a single .eml message (--eml). With --ledger the
papers are also recorded in the paper ledger, and --new-only prints only the
papers the ledger had not seen before.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLinks,
}

// document is one HTML body to extract from.
type document struct {
	source string
	html   string
}

func runLinks(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	if listDomains, _ := cmd.Flags().GetBool("domains"); listDomains {
		return output.Write(cmd.OutOrStdout(), format, scholar.Domains())
	}

	useLedger, _ := cmd.Flags().GetBool("ledger")
	newOnly, _ := cmd.Flags().GetBool("new-only")
	if newOnly && !useLedger {
		return fmt.Errorf("--new-only requires --ledger")
	}

	docs, err := linkDocuments(cmd, args)
	if err != nil {
		return err
	}

	batches := make([][]types.PaperRecord, 0, len(docs))
	for _, d := range docs {
		papers := scholar.Extract(d.html)
		logger.Debug("extracted links", zap.String("source", d.source), zap.Int("papers", len(papers)))
		batches = append(batches, papers)
	}
	papers := scholar.Merge(batches...)

	if useLedger {
		papers, err = recordPapers(cmd.Context(), docs, papers, newOnly)
		if err != nil {
			return err
		}
	}

	return output.Write(cmd.OutOrStdout(), format, papers)
}

// linkDocuments gathers HTML from whichever input the flags select.
func linkDocuments(cmd *cobra.Command, args []string) ([]document, error) {
	url, _ := cmd.Flags().GetString("url")
	mboxPath, _ := cmd.Flags().GetString("mbox")
	emlPath, _ := cmd.Flags().GetString("eml")

	switch {
	case url != "":
		f := httputil.NewFetcher(nil, loadConfig().HTTP, logger)
		body, err := f.Get(cmd.Context(), url)
		if err != nil {
			return nil, err
		}
		return []document{{source: url, html: body}}, nil

	case mboxPath != "":
		file, err := os.Open(mboxPath)
		if err != nil {
			return nil, fmt.Errorf("opening mbox: %w", err)
		}
		defer file.Close()

		alerts, err := mailbox.ReadMbox(cmd.Context(), file, logger)
		if err != nil {
			return nil, fmt.Errorf("reading mbox %s: %w", mboxPath, err)
		}
		docs := make([]document, len(alerts))
		for i, a := range alerts {
			docs[i] = document{source: alertSource(a, mboxPath), html: a.HTML}
		}
		return docs, nil

	case emlPath != "":
		file, err := os.Open(emlPath)
		if err != nil {
			return nil, fmt.Errorf("opening message: %w", err)
		}
		defer file.Close()

		alert, err := mailbox.ReadMessage(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", emlPath, err)
		}
		return []document{{source: alertSource(alert, emlPath), html: alert.HTML}}, nil

	default:
		html, source, err := readInput(cmd, args)
		if err != nil {
			return nil, err
		}
		return []document{{source: source, html: html}}, nil
	}
}

func alertSource(a mailbox.Alert, fallback string) string {
	if a.Subject != "" {
		return a.Subject
	}
	return fallback
}

// recordPapers stores papers in the ledger. With newOnly it returns just the
// papers the ledger did not know.
func recordPapers(ctx context.Context, docs []document, papers []types.PaperRecord, newOnly bool) ([]types.PaperRecord, error) {
	store, err := ledger.NewStore(loadConfig().Ledger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	source := "stdin"
	if len(docs) == 1 {
		source = docs[0].source
	} else if len(docs) > 1 {
		source = fmt.Sprintf("%s (+%d more)", docs[0].source, len(docs)-1)
	}

	summary, err := store.Record(ctx, source, papers)
	if err != nil {
		return nil, err
	}
	logger.Info("recorded papers",
		zap.Int("new", len(summary.New)),
		zap.Int("seen", summary.Seen))

	if newOnly {
		return summary.New, nil
	}
	return papers, nil
}

func init() {
	linksCmd.Flags().String("url", "", "fetch the alert HTML from this URL")
	linksCmd.Flags().String("mbox", "", "read alert emails from an mbox archive")
	linksCmd.Flags().String("eml", "", "read a single RFC 5322 message file")
	linksCmd.Flags().Bool("ledger", false, "record papers in the paper ledger")
	linksCmd.Flags().Bool("new-only", false, "print only papers new to the ledger (requires --ledger)")
	linksCmd.Flags().Bool("domains", false, "print the recognised publisher domains and exit")
	linksCmd.MarkFlagsMutuallyExclusive("url", "mbox", "eml")

	rootCmd.AddCommand(linksCmd)
}
