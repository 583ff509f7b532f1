package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flomonster/my-git/internal/config"
	"github.com/flomonster/my-git/internal/repo"
)

var configGlobal bool

var configCmd = &cobra.Command{
	Use:   "config <key> [value]",
	Short: "Get or set a config value (user.name, user.email, core.editor)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := configRoot()
		key := args[0]

		if len(args) == 2 {
			return config.Set(root, configGlobal, key, args[1])
		}

		cfg, err := config.Load(root)
		if err != nil {
			return err
		}
		value, err := configGet(cfg, key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

// configRoot resolves the repository root for the local config file,
// falling back to the working directory outside a repository (still
// valid for --global reads/writes).
func configRoot() string {
	layout, err := repo.FindRoot(".")
	if err != nil {
		return "."
	}
	return layout.Root
}

func configGet(cfg *config.Config, key string) (string, error) {
	switch key {
	case "user.name":
		return cfg.User.Name, nil
	case "user.email":
		return cfg.User.Email, nil
	case "core.editor":
		return cfg.Core.Editor, nil
	default:
		return "", fmt.Errorf("%w: %s", config.ErrInvalidConfigKey, key)
	}
}

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "operate on the global config file")
	rootCmd.AddCommand(configCmd)
}
