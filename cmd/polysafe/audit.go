package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/polysafe/polysafe/internal/audit"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the audit log",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Walk the audit log and verify its hash chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck

		count, err := audit.Verify(e.cfg.AuditLog)
		if err != nil {
			var chainBroken *audit.ChainBrokenError
			if errors.As(err, &chainBroken) {
				return fmt.Errorf("audit log tampered: %w", chainBroken)
			}
			return err
		}

		fmt.Printf("ok: %d entries, chain intact\n", count)
		return nil
	},
}

var auditShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every audit log entry as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck

		entries, err := audit.ReadAll(e.cfg.AuditLog)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, entry := range entries {
			if err := enc.Encode(entry); err != nil {
				return err
			}
		}
		return nil
	},
}

var auditAppendCmd = &cobra.Command{
	Use:   "append <kind> <details>",
	Short: "Append a custom audit entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck

		log, err := e.auditLog()
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		return log.Append(audit.Custom{Kind: args[0], Details: args[1]})
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditShowCmd)
	auditCmd.AddCommand(auditAppendCmd)
}
