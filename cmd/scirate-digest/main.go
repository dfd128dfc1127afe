// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scirate-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scirate-digest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// credential resolves a credential: environment variable first, then the
// matching .secrets/ key file.
func credential(envKey, secretKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return loadedSecrets[secretKey]
}

// rootCmd is the base command for the scirate-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "scirate-digest",
	Short: "Daily SciRate paper digest for Discord",
	Long: `scirate-digest scrapes the SciRate popularity listing for an arXiv
category, enriches the top papers from the arXiv metadata API, summarizes
them with Gemini, and posts the digest to a Discord webhook.

The run subcommand executes the full pipeline once; usage prints the
accumulated Gemini API call counts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is optional; a missing file is not an error.
		_ = godotenv.Load()

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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scirate-digest.yaml or ~/.config/scirate-digest/config.yaml)")
	rootCmd.PersistentFlags().String("storage-dir", "", "directory for the JSON stores and run log (default: XDG data dir)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scirate-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scirate-digest"))
		}
	}

	viper.SetEnvPrefix("SCIRATE_DIGEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// storageDir resolves the store directory: flag, then config, then the
// per-user XDG data directory.
func storageDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("storage-dir"); dir != "" {
		return dir
	}
	if dir := viper.GetString("storage_dir"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, "scirate-digest")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
