// Package config loads budget settings from viper and expands paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// memoryDatabase is SQLite's name for a private in-memory database.
const memoryDatabase = ":memory:"

// ExpandDatabasePath turns a configured database location into a path the
// SQLite driver can open. A leading ~ becomes the home directory, $VAR and
// ${VAR} are substituted and the result is cleaned. ":memory:" and "file:"
// URIs are handed to the driver untouched.
func ExpandDatabasePath(raw string) string {
	if raw == "" || raw == memoryDatabase || strings.HasPrefix(raw, "file:") {
		return raw
	}

	expanded := os.ExpandEnv(raw)
	if rest, ok := strings.CutPrefix(expanded, "~"); ok && (rest == "" || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = home + rest
		}
	}

	return filepath.Clean(expanded)
}
