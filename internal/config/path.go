// Package config loads layout profiles, branding and integration settings
// from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// OutputFilename is the file name of a rendered statement.
func OutputFilename(name string) string {
	return filepath.Base(name) + "-temp.pdf"
}

// OutputPath is where a rendered statement named name is written inside dir.
func OutputPath(dir, name string) string {
	return filepath.Join(ExpandPath(dir), OutputFilename(name))
}
