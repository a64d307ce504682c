// Package security confines file names handed to shell helpers and file
// readers to a known directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dangerousChars are shell metacharacters rejected in any path that may end
// up on a helper command line.
var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// CheckPath rejects empty paths and paths containing shell metacharacters.
func CheckPath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}
	return nil
}

// ResolveInDir returns the absolute path of name inside baseDir. Relative
// names are taken relative to baseDir. Symlinks are resolved where the
// target exists, and the result must stay within baseDir.
func ResolveInDir(baseDir, name string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	if err := CheckPath(name); err != nil {
		return "", err
	}

	base, err := resolve(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path, err = resolve(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	if path != base && !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes base directory: %s is not within %s", name, baseDir)
	}
	return path, nil
}

// ReadFileInDir reads name from baseDir after ResolveInDir.
func ReadFileInDir(baseDir, name string) ([]byte, error) {
	path, err := ResolveInDir(baseDir, name)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is confined above
	return os.ReadFile(path)
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}
