package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vpress",
	Short: "Batch-transcode a directory tree of behavioral videos",
	Long: `vpress - batch video compression pipeline

Re-encodes every video under an input directory into a mirrored output
directory, applying per-file or per-subtree compression overrides on
top of a global default. Non-video files are linked through unchanged.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "vpress.toml", "Path to job settings file")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("vpress {{.Version}}\n")
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
