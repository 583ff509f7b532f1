// Package config reads and writes the YAML identity/config file, in
// both its global ($HOME/.my_gitconfig) and per-repository
// (<repo>/.my_git/config) forms, local always overriding global.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfigKey is returned by Set for any dotted key other than
// user.name, user.email, or core.editor.
var ErrInvalidConfigKey = errors.New("config: invalid key")

// ErrMissingIdentity is returned when neither local nor global config
// supplies user.name/user.email, and the caller needs both (commit
// authorship).
var ErrMissingIdentity = errors.New("config: no identity configured, set user.name and user.email")

// User holds committer/author identity.
type User struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Core holds miscellaneous settings outside the identity block.
type Core struct {
	Editor string `yaml:"editor,omitempty"`
}

// Config is the merged view of global and local config files.
type Config struct {
	User User `yaml:"user"`
	Core Core `yaml:"core"`
}

func globalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".my_gitconfig"), nil
}

func localPath(root string) string {
	return filepath.Join(root, ".my_git", "config")
}

func readFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load merges global config with local config rooted at root, local
// values winning field-by-field.
func Load(root string) (*Config, error) {
	gPath, err := globalPath()
	if err != nil {
		return nil, err
	}
	global, err := readFile(gPath)
	if err != nil {
		return nil, err
	}
	local, err := readFile(localPath(root))
	if err != nil {
		return nil, err
	}

	merged := global
	if local.User.Name != "" {
		merged.User.Name = local.User.Name
	}
	if local.User.Email != "" {
		merged.User.Email = local.User.Email
	}
	if local.Core.Editor != "" {
		merged.Core.Editor = local.Core.Editor
	}
	return &merged, nil
}

// Identity returns the resolved (name, email) pair, or
// ErrMissingIdentity if either is unset after merging.
func (c *Config) Identity() (string, string, error) {
	if c.User.Name == "" || c.User.Email == "" {
		return "", "", ErrMissingIdentity
	}
	return c.User.Name, c.User.Email, nil
}

// Set writes key=value into the global or local config file,
// rewriting only the touched field. key must be one of user.name,
// user.email, core.editor.
func Set(root string, global bool, key, value string) error {
	path := localPath(root)
	if global {
		p, err := globalPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := readFile(path)
	if err != nil {
		return err
	}

	switch key {
	case "user.name":
		cfg.User.Name = value
	case "user.email":
		cfg.User.Email = value
	case "core.editor":
		cfg.Core.Editor = value
	default:
		return fmt.Errorf("%w: %s", ErrInvalidConfigKey, key)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir for %s: %w", path, err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
