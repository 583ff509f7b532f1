package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsFilesStage bool

// lsFilesCmd is a plumbing command exposing the raw index contents,
// the way status and commit consume them internally.
var lsFilesCmd = &cobra.Command{
	Use:   "ls-files",
	Short: "Show staged paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range rc.index.Sorted() {
			if lsFilesStage {
				fmt.Fprintf(out, "%s %s\t%s\n", e.Mode.Octal(), e.Hash, e.Path)
			} else {
				fmt.Fprintln(out, e.Path)
			}
		}
		return nil
	},
}

func init() {
	lsFilesCmd.Flags().BoolVar(&lsFilesStage, "stage", false, "show mode and object hash alongside each path")
	rootCmd.AddCommand(lsFilesCmd)
}
