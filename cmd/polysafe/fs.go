package main

import (
	"os"

	"github.com/polysafe/polysafe/internal/audit"
	"github.com/polysafe/polysafe/internal/capability"
	"github.com/polysafe/polysafe/internal/fsops"
	"github.com/spf13/cobra"
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Transactional file and directory operations",
}

// withTxn loads the environment, opens a capability, audit log and
// one-shot transaction, runs op, and on success commits the transaction
// and appends the audit entry it returns. If op or Commit fails, the
// deferred Close rolls back whatever the transaction had journaled; a
// failed audit append happens after Commit and leaves the changes in place.
func withTxn(op func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error)) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	cap, err := e.capability()
	if err != nil {
		return err
	}

	log, err := e.auditLog()
	if err != nil {
		return err
	}
	defer log.Close() //nolint:errcheck

	tx := fsops.New(cap, e.logger)
	defer tx.Close()

	entry, err := op(cap, tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return log.Append(entry)
}

var fsCopyCmd = &cobra.Command{
	Use:   "copy <from> <to>",
	Short: "Copy a file within the capability root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			if err := tx.CopyFile(from, to); err != nil {
				return nil, err
			}
			resolved, err := cap.Resolve(to)
			if err != nil {
				return nil, err
			}
			info, err := os.Stat(resolved)
			if err != nil {
				return nil, err
			}
			return audit.FileWrite{Path: resolved, Size: uint64(info.Size())}, nil
		})
	},
}

var fsMoveCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Move a file within the capability root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			fromResolved, err := cap.Resolve(from)
			if err != nil {
				return nil, err
			}
			if err := tx.MoveFile(from, to); err != nil {
				return nil, err
			}
			toResolved, err := cap.Resolve(to)
			if err != nil {
				return nil, err
			}
			return audit.FileMove{From: fromResolved, To: toResolved}, nil
		})
	},
}

var fsMkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a single directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			if err := tx.CreateDir(path); err != nil {
				return nil, err
			}
			resolved, err := cap.Resolve(path)
			if err != nil {
				return nil, err
			}
			return audit.DirCreate{Path: resolved}, nil
		})
	},
}

var fsMkdirAllCmd = &cobra.Command{
	Use:   "mkdir-all <path>",
	Short: "Create a directory and any missing parents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			if err := tx.CreateDirAll(path); err != nil {
				return nil, err
			}
			resolved, err := cap.Resolve(path)
			if err != nil {
				return nil, err
			}
			return audit.DirCreate{Path: resolved}, nil
		})
	},
}

var fsRmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			resolved, err := cap.Resolve(path)
			if err != nil {
				return nil, err
			}
			if err := tx.DeleteFile(path); err != nil {
				return nil, err
			}
			return audit.FileDelete{Path: resolved}, nil
		})
	},
}

var fsRmdirCmd = &cobra.Command{
	Use:   "rmdir <path>",
	Short: "Delete a directory and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			resolved, err := cap.Resolve(path)
			if err != nil {
				return nil, err
			}
			if err := tx.DeleteDirAll(path); err != nil {
				return nil, err
			}
			return audit.DirDelete{Path: resolved}, nil
		})
	},
}

var fsWriteCmd = &cobra.Command{
	Use:   "write <path> <content>",
	Short: "Write content to a file, replacing it atomically",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, content := args[0], args[1]
		return withTxn(func(cap *capability.DirCapability, tx *fsops.Transaction) (audit.Operation, error) {
			if err := tx.WriteFile(path, []byte(content)); err != nil {
				return nil, err
			}
			resolved, err := cap.Resolve(path)
			if err != nil {
				return nil, err
			}
			return audit.FileWrite{Path: resolved, Size: uint64(len(content))}, nil
		})
	},
}

func init() {
	fsCmd.AddCommand(fsCopyCmd)
	fsCmd.AddCommand(fsMoveCmd)
	fsCmd.AddCommand(fsMkdirCmd)
	fsCmd.AddCommand(fsMkdirAllCmd)
	fsCmd.AddCommand(fsRmCmd)
	fsCmd.AddCommand(fsRmdirCmd)
	fsCmd.AddCommand(fsWriteCmd)
}
