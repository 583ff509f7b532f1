package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/worktree"
)

var (
	switchCreate      bool
	switchForceCreate bool
)

var switchCmd = &cobra.Command{
	Use:   "switch <branch>",
	Short: "Switch branches, updating the working tree and index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}

		name := args[0]
		create, force := switchCreate, false
		if switchForceCreate {
			create, force = true, true
		}

		if err := worktree.Switch(rc.layout.Root, rc.refs, rc.store, rc.index, rc.layout.IndexFile, name, create, force); err != nil {
			return err
		}

		if create {
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to a new branch '%s'\n", name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch '%s'\n", name)
		}
		return nil
	},
}

func init() {
	switchCmd.Flags().BoolVarP(&switchCreate, "create", "c", false, "create the branch before switching")
	switchCmd.Flags().BoolVarP(&switchForceCreate, "force-create", "C", false, "create or reset the branch before switching")
	rootCmd.AddCommand(switchCmd)
}
