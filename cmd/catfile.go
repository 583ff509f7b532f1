package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/objects"
)

var (
	catFileType  bool
	catFilePrint bool
)

// catFileCmd is a plumbing command: given a full object hash, it
// reports the object's kind (-t) or its contents (-p: a blob's raw
// bytes, a tree's entry listing, a commit's headers and message), the
// way log and status rely on the store internally.
var catFileCmd = &cobra.Command{
	Use:   "cat-file <hash>",
	Short: "Print the kind or contents of a stored object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}
		objHash, err := hash.FromHex(args[0])
		if err != nil {
			return fmt.Errorf("cmd: %w", err)
		}

		kind, _, err := rc.store.Peek(objHash)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if catFileType {
			fmt.Fprintln(out, kind)
			return nil
		}
		if !catFilePrint {
			return fmt.Errorf("cmd: exactly one of -t or -p is required")
		}

		switch kind {
		case objects.KindBlob:
			b, err := rc.store.LoadBlob(objHash)
			if err != nil {
				return err
			}
			out.Write(b.Data)
		case objects.KindTree:
			t, err := rc.store.LoadTree(objHash)
			if err != nil {
				return err
			}
			for _, name := range sortedEntryNames(t) {
				printTreeEntry(out, name, t.Entries[name])
			}
		case objects.KindCommit:
			c, err := rc.store.LoadCommit(objHash)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "tree %s\n", c.TreeHash)
			for _, p := range c.Parents {
				fmt.Fprintf(out, "parent %s\n", p)
			}
			fmt.Fprintf(out, "author %s <%s> %s\n\n%s\n", c.Author.Name, c.Author.Email, c.Author.When, c.Message)
		}
		return nil
	},
}

func printTreeEntry(out io.Writer, name string, e *objects.TreeEntry) {
	if e.Kind == objects.EntryDirectory {
		h, err := e.Tree.Hash()
		if err != nil {
			h = hash.Hash{}
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", "40000", "tree", h, name)
		return
	}
	fmt.Fprintf(out, "%s %s %s\t%s\n", e.Kind.Mode().Octal(), "blob", e.Hash, name)
}

func sortedEntryNames(t *objects.Tree) []string {
	names := make([]string, 0, len(t.Entries))
	for name := range t.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	catFileCmd.Flags().BoolVarP(&catFileType, "type", "t", false, "print the object's kind")
	catFileCmd.Flags().BoolVarP(&catFilePrint, "print", "p", false, "pretty-print the object's contents")
	rootCmd.AddCommand(catFileCmd)
}
