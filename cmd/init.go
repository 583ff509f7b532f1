package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/repo"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create an empty my-git repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		layout, reinitialized, err := repo.Init(dir)
		if err != nil {
			return err
		}

		if reinitialized {
			fmt.Fprintf(cmd.OutOrStdout(), "Reinitialized existing my-git repository in %s\n", layout.GitDir)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty my-git repository in %s\n", layout.GitDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
