package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/history"
	"github.com/flomonster/my-git/internal/objects"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}
		h, ok, err := rc.refs.Head()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cmd: your current branch does not have any commits yet")
		}

		out := cmd.OutOrStdout()
		return history.Walk(rc.store, h, func(commitHash hash.Hash, c *objects.Commit) error {
			fmt.Fprintf(out, "commit %s\n", commitHash)
			fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
			fmt.Fprintf(out, "Date:   %s\n\n", c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(out, "    %s\n\n", c.Message)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
