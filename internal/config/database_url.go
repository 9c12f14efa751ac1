package config

import (
	"fmt"
	"strings"
)

// databaseFilePath turns a database_path or BULK_DATABASE_URL value into a
// filesystem path. URLs follow the SQLAlchemy sqlite form: sqlite:///rel is
// relative to the working directory and sqlite:////abs is absolute. Values
// without a scheme are already paths.
func databaseFilePath(value string) (string, error) {
	scheme, rest, ok := strings.Cut(value, "://")
	if !ok {
		return value, nil
	}
	dialect, _, _ := strings.Cut(strings.ToLower(scheme), "+")
	if dialect != "sqlite" {
		return "", fmt.Errorf("unsupported database url scheme %q (only sqlite is supported)", scheme)
	}
	path, found := strings.CutPrefix(rest, "/")
	if !found {
		return "", fmt.Errorf("database url %q has no file path", value)
	}
	path, _, _ = strings.Cut(path, "?")
	if path == "" || path == ":memory:" {
		return "", fmt.Errorf("database url %q must name a file on disk", value)
	}
	return path, nil
}
