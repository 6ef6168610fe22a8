// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the healthdash CLI. It classifies
// health-indicator queries, prints and exports reports, manages saved
// reports and serves the dashboard.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/logging"
	"github.com/pdiddy/healthdash/internal/secrets"
	"github.com/pdiddy/healthdash/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger        = zap.NewNop()
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the healthdash CLI.
var rootCmd = &cobra.Command{
	Use:   "healthdash",
	Short: "Health indicator reports from free-text queries",
	Long: `healthdash answers a free-text health-indicator query ("infant mortality
2015 to 2020", "relationship between maternal mortality and infant mortality")
with a structured analysis, charts, an HTML dashboard page and a PDF report.

Queries are classified into a topic, a year range and an optional correlation
pair. Reports can be saved to a local SQLite store and searched later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = log

		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 && verbose {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./healthdash.yaml or ~/.config/healthdash/healthdash.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.Int("default-year", types.DefaultYear, "year used when a query names none")
	pf.String("output-dir", "", "directory for exported PDF and HTML files")
	pf.String("store-dir", "", "directory holding the saved-report database")
	pf.String("provider-url", "", "base URL of a remote indicator service (empty uses the built-in dataset)")

	bind("classifier.default_year", "default-year")
	bind("export.output_dir", "output-dir")
	bind("store.dir", "store-dir")
	bind("provider.base_url", "provider-url")

	setDefaults(types.DefaultConfig())
}

func bind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("healthdash")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "healthdash"))
		}
	}

	viper.SetEnvPrefix("HEALTHDASH")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
