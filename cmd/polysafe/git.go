package main

import (
	"encoding/json"
	"fmt"

	"github.com/polysafe/polysafe/internal/gitfacade"
	"github.com/spf13/cobra"
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Capability-scoped git operations",
}

var gitStatusCmd = &cobra.Command{
	Use:   "status <repo>",
	Short: "Print the status of a git repository within the capability root",
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

		sess := gitfacade.NewSession(cap, nil)
		status, err := sess.Status(args[0])
		if err != nil {
			return err
		}

		return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
	},
}

var gitRemotesCmd = &cobra.Command{
	Use:   "remotes <repo>",
	Short: "List the remotes of a git repository",
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

		repoPath, err := cap.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := cap.RequireRead(); err != nil {
			return err
		}

		remotes, err := gitfacade.GetRemotes(repoPath)
		if err != nil {
			return err
		}

		return json.NewEncoder(cmd.OutOrStdout()).Encode(remotes)
	},
}

var findReposWithStatus bool

var gitFindReposCmd = &cobra.Command{
	Use:   "find-repos [max-depth]",
	Short: "Find git repositories under the capability root",
	Args:  cobra.MaximumNArgs(1),
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
		if err := cap.RequireRead(); err != nil {
			return err
		}

		maxDepth := 10
		if len(args) == 1 {
			if _, err := fmt.Sscanf(args[0], "%d", &maxDepth); err != nil {
				return fmt.Errorf("invalid max-depth %q: %w", args[0], err)
			}
		}

		repos, err := gitfacade.FindRepos(cap.Root(), maxDepth)
		if err != nil {
			return err
		}

		if !findReposWithStatus {
			for _, repo := range repos {
				fmt.Println(repo)
			}
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, result := range gitfacade.StatusMany(repos) {
			if result.Err != nil {
				return fmt.Errorf("status %s: %w", repos[result.Index], result.Err)
			}
			if err := enc.Encode(result.Value); err != nil {
				return err
			}
		}
		return nil
	},
}

var gitStageAllCmd = &cobra.Command{
	Use:   "stage-all <repo>",
	Short: "Stage every change in a git repository and record it in the audit log",
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

		log, err := e.auditLog()
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		sess := gitfacade.NewSession(cap, log)
		return sess.StageAll(args[0])
	},
}

func init() {
	gitFindReposCmd.Flags().BoolVar(&findReposWithStatus, "status", false, "Also fetch and print the status of each repo found")

	gitCmd.AddCommand(gitStatusCmd)
	gitCmd.AddCommand(gitRemotesCmd)
	gitCmd.AddCommand(gitFindReposCmd)
	gitCmd.AddCommand(gitStageAllCmd)
}
