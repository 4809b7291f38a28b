package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects paths with directory traversal components. The
// config file and audit database paths both come from operator input and go
// straight to os.Open, so they are checked here first.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	return nil
}
