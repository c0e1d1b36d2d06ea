package main

import (
	"fmt"

	"github.com/polysafe/polysafe/internal/config"
	"github.com/spf13/cobra"
)

var capCmd = &cobra.Command{
	Use:   "cap",
	Short: "Resolve paths and mint subcapabilities",
}

var capResolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve a path through the root capability and print the canonical path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck

		cap, err := e.capability()
		if err != nil {
			return err
		}

		resolved, err := cap.Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Println(resolved)
		return nil
	},
}

var capSubcapCmd = &cobra.Command{
	Use:   "subcap <subdir> <permissions>",
	Short: "Mint a subcapability rooted at subdir with the given permission set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck

		cap, err := e.capability()
		if err != nil {
			return err
		}

		requested, err := config.ParsePermissions(args[1])
		if err != nil {
			return err
		}

		sub, err := cap.Subcapability(args[0], requested)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", sub.Root(), sub.Permissions())
		return nil
	},
}

func init() {
	capCmd.AddCommand(capResolveCmd)
	capCmd.AddCommand(capSubcapCmd)
}
