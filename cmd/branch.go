package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/refs"
	"github.com/flomonster/my-git/internal/worktree"
)

var (
	branchDelete      string
	branchForceDelete string
	branchQuiet       bool
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create or delete branches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}

		if branchDelete != "" || branchForceDelete != "" {
			name, force := branchDelete, false
			if branchForceDelete != "" {
				name, force = branchForceDelete, true
			}
			if err := worktree.DeleteBranch(rc.refs, rc.store, name, force); err != nil {
				return err
			}
			if !branchQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted branch %s\n", name)
			}
			return nil
		}

		if len(args) == 1 {
			if err := worktree.CreateBranch(rc.refs, args[0], false); err != nil {
				return err
			}
			return nil
		}

		return listBranches(cmd, rc)
	},
}

func listBranches(cmd *cobra.Command, rc *repoContext) error {
	branches, err := rc.refs.Branches()
	if err != nil {
		return err
	}
	current, symbolic, err := rc.refs.CurrentBranch()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range refs.SortedBranchNames(branches) {
		if symbolic && name == current {
			fmt.Fprintf(out, "* %s\n", name)
		} else {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return nil
}

func init() {
	branchCmd.Flags().StringVarP(&branchDelete, "delete", "d", "", "delete a branch (must be merged)")
	branchCmd.Flags().StringVarP(&branchForceDelete, "force-delete", "D", "", "delete a branch, merged or not")
	branchCmd.Flags().BoolVarP(&branchQuiet, "quiet", "q", false, "suppress informational output")
	rootCmd.AddCommand(branchCmd)
}
