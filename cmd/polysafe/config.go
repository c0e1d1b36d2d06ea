package main

import (
	"encoding/json"

	"github.com/polysafe/polysafe/internal/config"
	"github.com/spf13/cobra"
)

var showConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := config.Resolve(rootDir, permissions, auditLog, logLevel, verbose)
		return json.NewEncoder(cmd.OutOrStdout()).Encode(rc)
	},
}

func init() {
	configCmd.Flags().BoolVar(&showConfig, "show", true, "Print resolved configuration with source attribution")
}
