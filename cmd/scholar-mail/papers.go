// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-mail/internal/ledger"
	"github.com/pdiddy/scholar-mail/internal/output"
	"github.com/pdiddy/scholar-mail/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Inspect the paper ledger (list, export)",
	Long: `Papers reads the ledger that "links --ledger" writes. The ledger
remembers every paper URL reported so far, with the latest title and when
it was first and last seen.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recorded papers, most recently seen first",
	RunE:  runPapersList,
}

func runPapersList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	store, err := ledger.NewStore(loadConfig().Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), listOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, entries)
}

// --- export subcommand ---

var papersExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the ledger to index/export.yaml or export.json",
	RunE:  runPapersExport,
}

func runPapersExport(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	store, err := ledger.NewStore(loadConfig().Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := listOptsFromFlags(cmd, args)

	var path string
	switch format {
	case types.OutputYAML:
		path, err = store.ExportYAML(cmd.Context(), opts)
	default:
		path, err = store.ExportJSON(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func listOptsFromFlags(cmd *cobra.Command, args []string) ledger.ListOptions {
	domain, _ := cmd.Flags().GetString("domain")
	limit, _ := cmd.Flags().GetInt("limit")
	return ledger.ListOptions{
		Query:      strings.Join(args, " "),
		Domain:     domain,
		MaxResults: limit,
	}
}

func init() {
	papersCmd.PersistentFlags().String("ledger-dir", "knowledge", "base directory for the ledger (contains index/)")
	papersCmd.PersistentFlags().String("domain", "", "filter by URL substring (e.g. arxiv.org)")
	papersListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	_ = viper.BindPFlag("ledger.dir", papersCmd.PersistentFlags().Lookup("ledger-dir"))

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersExportCmd)
	rootCmd.AddCommand(papersCmd)
}
