package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/index"
)

var addForce bool

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add file contents to the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openRepo()
		if err != nil {
			return err
		}
		matcher, err := loadIgnoreMatcher(rc.layout.Root)
		if err != nil {
			return err
		}

		var ignoredErr *index.IgnoredPathsError
		var ignoredAll []string
		for _, path := range args {
			err := index.Add(rc.index, rc.store, rc.layout.Root, path, addForce, matcher)
			if err != nil {
				if errors.As(err, &ignoredErr) {
					ignoredAll = append(ignoredAll, ignoredErr.Paths...)
					continue
				}
				return err
			}
		}

		if err := rc.saveIndex(); err != nil {
			return err
		}

		if len(ignoredAll) > 0 {
			return &index.IgnoredPathsError{Paths: ignoredAll}
		}
		return nil
	},
}

func init() {
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "add ignored paths anyway")
	rootCmd.AddCommand(addCmd)
}
