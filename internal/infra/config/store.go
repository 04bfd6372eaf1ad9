package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads operator configuration from the XDG config directory and from
// explicit list files passed on the command line.
type Store struct{}

func NewStore() Store { return Store{} }

// LoadProtected reads the protected-paths file: absolute path prefixes the
// remove command refuses to touch, one per line, # comments allowed. A
// missing file means no extra protection.
func (Store) LoadProtected(ctx context.Context) ([]string, error) {
	_ = ctx
	path, err := protectedPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = expandHome(line)
		line = filepath.Clean(line)
		if abs, err := filepath.Abs(line); err == nil {
			line = abs
		}
		out = append(out, line)
	}
	return out, s.Err()
}

// LoadNameList reads an explicit file-name list for the list-membership rule:
// one base name per line, # comments and blank lines skipped.
func (Store) LoadNameList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("name list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("name list %s is empty", path)
	}
	return out, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func protectedPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mediac", "protected"), nil
}
