// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the discourse-engine CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discourse-engine/internal/logging"
	"github.com/pdiddy/discourse-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is configured in PersistentPreRunE from --log-level.
var logger = logging.Discard()

// rootCmd is the base command for the discourse-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "discourse-engine",
	Short: "Collect Reddit discussions and analyze their political discourse",
	Long: `discourse-engine collects posts and comments from subreddits into a
local SQLite database and scores them on three political dimensions
(economic, social, governance). Corpus runs aggregate the scores into
means, a diversity index and octant clusters.

Typical workflow: collect, analyze run, report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(os.Stderr, viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l
		log.SetDefault(l)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./discourse-engine.yaml or ~/.config/discourse-engine/discourse-engine.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding discourse.db and exports")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("taxonomy", "", "YAML topic taxonomy replacing the built-in one")
	rootCmd.PersistentFlags().String("sentiment-lexicon", "", "VADER-format sentiment lexicon (token<TAB>valence) replacing the built-in one")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("analysis.taxonomy", rootCmd.PersistentFlags().Lookup("taxonomy"))
	viper.BindPFlag("analysis.sentiment_lexicon", rootCmd.PersistentFlags().Lookup("sentiment-lexicon"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("discourse-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "discourse-engine"))
		}
	}

	viper.SetEnvPrefix("DISCOURSE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Info("using config file", "path", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
