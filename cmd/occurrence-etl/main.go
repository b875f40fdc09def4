// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the occurrence-etl CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/occurrence-etl/internal/logging"
	"github.com/pdiddy/occurrence-etl/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the diagnostic logger configured from log.level and log.format.
var logger = zerolog.Nop()

// rootCmd is the base command for the occurrence-etl CLI.
var rootCmd = &cobra.Command{
	Use:   "occurrence-etl",
	Short: "Turn tab-separated occurrence exports into JSON Lines",
	Long: `occurrence-etl extracts biodiversity occurrence records from tab-separated
exports, keeps the configured columns, drops incomplete rows, and writes one
JSON object per line.

Each dataset in the catalog maps <raw_dir>/<subdir>/occurrence.txt to
<processed_dir>/<subdir>/<name>.json. Use run to process datasets, seed to
import the results into a store, and serve to expose them over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./occurrence-etl.yaml or ~/.config/occurrence-etl/config.yaml)")
	flags.String("env-file", secrets.DefaultFile, "file of environment variables to load; existing variables win")
	flags.String("raw-dir", "", "root directory of raw occurrence exports")
	flags.String("processed-dir", "", "root directory for JSON Lines outputs")
	flags.String("db", "", "path of the SQLite store")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	bindFlag("raw_dir", "raw-dir")
	bindFlag("processed_dir", "processed-dir")
	bindFlag("store.path", "db")
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	if envFile != "" {
		loadEnvFile(envFile)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("occurrence-etl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "occurrence-etl"))
		}
	}

	viper.SetEnvPrefix("OCCURRENCE_ETL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

func loadEnvFile(path string) {
	s, err := secrets.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	applied, err := secrets.Apply(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	if len(applied) > 0 {
		fmt.Fprintf(os.Stderr, "Loaded environment from %s: %v\n", path, applied)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
