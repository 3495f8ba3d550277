// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-mail CLI.
// It wires the mail-automation fetch, the delimited-stream parser, the
// academic link extractor, and the optional paper ledger into subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE and writes to stderr.
var logger = zap.NewNop()

// rootCmd is the base command for the scholar-mail CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-mail",
	Short: "Turn unread mail and academic alert emails into structured records",
	Long: `scholar-mail reads unread messages from the local Mail app and extracts
paper links from academic alert emails (Google Scholar, publisher digests).

Records are written to stdout as JSON (default) or YAML; logs go to stderr.
A failed mail fetch prints an empty list rather than an error.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-mail.yaml or ~/.config/scholar-mail/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("format", "json", "output format: json or yaml")
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	viper.SetDefault("mail.mailbox", "Inbox")
	viper.SetDefault("mail.limit", 5)
	viper.SetDefault("mail.osascript", "osascript")
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", "scholar-mail/"+version)
	viper.SetDefault("http.max_retries", 5)
	viper.SetDefault("ledger.dir", "knowledge")
	viper.SetDefault("ledger.max_results", 50)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-mail")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-mail"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_MAIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
		}
	}
}

// loadConfig assembles the typed configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		Mail: types.MailConfig{
			Account:   viper.GetString("mail.account"),
			Mailbox:   viper.GetString("mail.mailbox"),
			Limit:     viper.GetInt("mail.limit"),
			Osascript: viper.GetString("mail.osascript"),
		},
		HTTP: types.HTTPConfig{
			Timeout:    viper.GetDuration("http.timeout"),
			UserAgent:  viper.GetString("http.user_agent"),
			MaxRetries: viper.GetInt("http.max_retries"),
		},
		Ledger: types.LedgerConfig{
			Dir:        viper.GetString("ledger.dir"),
			MaxResults: viper.GetInt("ledger.max_results"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
