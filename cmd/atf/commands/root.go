// Package commands implements ATF's CLI command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/atfkit/atf/internal/logger"
	"github.com/atfkit/atf/pkg/config"
	"github.com/spf13/cobra"

	// Import the Prometheus metrics backend to register its init() functions.
	_ "github.com/atfkit/atf/pkg/metrics/prometheus"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "atf",
	Short: "ATF - Application Testing/Inspection Framework",
	Long: `ATF combines a function-hooking runtime (HookCore) with a DSL-driven
remote-memory inspector (MemCore) behind a single TCP surface and an
interactive expression console.

Use "atf [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/atf/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(hooksCmd)
	rootCmd.AddCommand(reflectCmd)
}

// GetConfigFile returns the config file path from the global --config flag.
func GetConfigFile() string {
	return cfgFile
}

// getConfigSource describes where the config was loaded from, for logging.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// InitLogger initializes the structured logger from cfg.Logging.
func InitLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
