package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/worktree"
)

var commitMessage string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record staged changes to the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(commitMessage) == "" {
			return fmt.Errorf("cmd: commit message (-m) is required")
		}

		rc, err := openRepo()
		if err != nil {
			return err
		}
		name, email, err := resolveIdentity(rc.layout.Root)
		if err != nil {
			return err
		}

		h, err := worktree.Commit(rc.refs, rc.store, rc.index, name, email, commitMessage+"\n", time.Now())
		if err != nil {
			return err
		}

		branch, symbolic, err := rc.refs.CurrentBranch()
		if err != nil {
			return err
		}
		label := branch
		if !symbolic {
			label = "detached HEAD"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", label, h.String()[:7], commitMessage)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	rootCmd.AddCommand(commitCmd)
}
