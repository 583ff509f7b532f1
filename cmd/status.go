package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/worktree"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}
		matcher, err := loadIgnoreMatcher(rc.layout.Root)
		if err != nil {
			return err
		}
		committed, err := rc.headTree()
		if err != nil {
			return err
		}

		items, err := worktree.Status(rc.layout.Root, rc.index, committed, matcher)
		if err != nil {
			return err
		}

		printStatus(cmd, items)
		return nil
	},
}

func printStatus(cmd *cobra.Command, items []worktree.StatusItem) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
		return
	}

	staged := filterStatus(items, worktree.New, worktree.ModifiedStaged, worktree.DeletedStaged)
	if len(staged) > 0 {
		fmt.Fprintln(out, "Changes to be committed:")
		for _, it := range staged {
			fmt.Fprintf(out, "\t%s:   %s\n", statusLabel(it.Kind), it.Path)
		}
		fmt.Fprintln(out)
	}

	notStaged := filterStatus(items, worktree.ModifiedNotStaged, worktree.DeletedNotStaged)
	if len(notStaged) > 0 {
		fmt.Fprintln(out, "Changes not staged for commit:")
		for _, it := range notStaged {
			fmt.Fprintf(out, "\t%s:   %s\n", statusLabel(it.Kind), it.Path)
		}
		fmt.Fprintln(out)
	}

	untracked := filterStatus(items, worktree.Untracked)
	if len(untracked) > 0 {
		fmt.Fprintln(out, "Untracked files:")
		for _, it := range untracked {
			fmt.Fprintf(out, "\t%s\n", it.Path)
		}
		fmt.Fprintln(out)
	}
}

func filterStatus(items []worktree.StatusItem, kinds ...worktree.StatusKind) []worktree.StatusItem {
	want := map[worktree.StatusKind]bool{}
	for _, k := range kinds {
		want[k] = true
	}
	var out []worktree.StatusItem
	for _, it := range items {
		if want[it.Kind] {
			out = append(out, it)
		}
	}
	return out
}

func statusLabel(k worktree.StatusKind) string {
	switch k {
	case worktree.New:
		return "new file"
	case worktree.ModifiedStaged, worktree.ModifiedNotStaged:
		return "modified"
	case worktree.DeletedStaged, worktree.DeletedNotStaged:
		return "deleted"
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
