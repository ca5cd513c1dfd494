package dirsql

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Default configuration values
const (
	// DefaultRootDir is the default data directory for CSV storage
	DefaultRootDir = "~/dirsql-data"
)

// DefaultIgnores lists the glob patterns excluded from listings when no
// configuration is provided.
var DefaultIgnores = []string{".git"}

// ErrEmptyRootDir indicates a Config without a root directory
var ErrEmptyRootDir = errors.New("dirsql: root directory must not be empty")

// Config holds the values the engine consumes from outside: the root
// data directory and the ignore patterns applied during listings.
type Config struct {
	// RootDir is the base directory containing the table namespace.
	// A leading "~" or "~/" expands to the current user's home directory.
	RootDir string `json:"root_dir" yaml:"root_dir" mapstructure:"root_dir"`

	// Ignores holds glob patterns (path.Match syntax) tested against the
	// bare filename of every directory entry during listings. A matching
	// entry is excluded entirely.
	Ignores []string `json:"ignores" yaml:"ignores" mapstructure:"ignores"`
}

// DefaultConfig returns a Config with the default root directory and
// ignore patterns.
func DefaultConfig() Config {
	return Config{
		RootDir: DefaultRootDir,
		Ignores: append([]string(nil), DefaultIgnores...),
	}
}

// Validate checks that the Config is well-formed
func (c Config) Validate() error {
	if strings.TrimSpace(c.RootDir) == "" {
		return ErrEmptyRootDir
	}
	return nil
}

// ExpandTilde expands a leading "~" in path to the current user's home
// directory. Paths without a leading tilde are returned unchanged.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
