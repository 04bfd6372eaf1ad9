// Package safety guards destructive commands against operating outside the
// requested tree or inside system and operator-protected paths.
package safety

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var blockedPaths = []string{
	"/",
	"/boot",
	"/bin",
	"/sbin",
	"/lib",
	"/lib64",
	"/usr",
	"/etc",
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/var",
}

// ValidatePath rejects paths that are malformed, sit inside a blocked system
// tree, match an operator-protected prefix, or escape the command root.
func ValidatePath(path string, root string, protected []string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("PATH_INVALID: empty path")
	}
	if strings.ContainsRune(path, rune(0)) {
		return errors.New("PATH_INVALID: null byte")
	}
	if strings.Contains(path, "/../") {
		return errors.New("PATH_INVALID: traversal")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("PATH_INVALID: %w", err)
	}

	if isBlocked(abs) {
		return fmt.Errorf("PATH_BLOCKED: %s", abs)
	}
	if isProtected(abs, protected) {
		return fmt.Errorf("PATH_PROTECTED: %s", abs)
	}
	if root != "" && !isUnder(abs, root) {
		return fmt.Errorf("PATH_BLOCKED: outside command root %s", abs)
	}
	return nil
}

func isBlocked(path string) bool {
	for _, p := range blockedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isProtected(path string, protected []string) bool {
	for _, p := range protected {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isUnder(path, root string) bool {
	abs, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	return path == abs || strings.HasPrefix(path, abs+string(filepath.Separator))
}
