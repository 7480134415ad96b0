// Package filex holds filesystem helpers for the local state database.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DBPath extracts the file path from a SQLite DSN such as
// "file:state/booknest.db?_pragma=busy_timeout(5000)". In-memory DSNs
// yield "".
func DBPath(dsn string) string {
	path, query, _ := strings.Cut(dsn, "?")
	path = strings.TrimPrefix(path, "file:")

	if path == "" || strings.HasPrefix(path, ":memory:") || strings.Contains(query, "mode=memory") {
		return ""
	}
	return path
}

// EnsureParentDir creates the directory that will hold path and returns it.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
