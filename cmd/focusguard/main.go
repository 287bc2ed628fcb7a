package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/focusguard/internal/config"
	"github.com/user/focusguard/internal/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "focusguard",
	Short: "Companion client for the focus engine",
	Long:  "focusguard pairs with a focus engine over its room code, tracks the live session, and records distraction evidence locally.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config",
		filepath.Join(os.Getenv("HOME"), ".focusguard", "config.json"),
		"config file path")
}

// loadConfig loads the config file, exiting on failure. Commands call this
// instead of handling config errors individually.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	logger.Setup(cfg.LogLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
