package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose     bool
	rootDir     string
	permissions string
	auditLog    string
	logLevel    string
	cfgFile     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "polysafe",
	Short: "Capability-scoped filesystem and git operations with an audit trail",
	Long: `polysafe resolves filesystem paths, copies and moves files, and stages
git changes through a capability that is rooted at a single directory and
cannot be resolved outside it. Every mutating operation is recorded in a
hash-chained audit log so the history of what happened can be verified
later, even if the log file itself is later inspected by hand.

Core Commands:
  cap     Resolve paths and mint subcapabilities
  fs      Transactional file and directory operations
  audit   Inspect and verify the audit log
  git     Capability-scoped git operations
  config  Show resolved configuration`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (development-mode) logging")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Capability root directory (default: .)")
	rootCmd.PersistentFlags().StringVar(&permissions, "permissions", "", "Permission set: full, read_only or read_write")
	rootCmd.PersistentFlags().StringVar(&auditLog, "audit-log", "", "Path to the audit log file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file read in place of the project .polysafe/config.yaml")

	rootCmd.AddCommand(capCmd)
	rootCmd.AddCommand(fsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("POLYSAFE_CONFIG", path)
}
