package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath returns the cleaned absolute form of path
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	normalized := filepath.Clean(abs)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" && IsUNCPath(path) && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\`)
	}

	return normalized, nil
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// Contains reports whether target lies strictly below base. Both paths
// must be normalized.
func Contains(base, target string) bool {
	if base == target {
		return false
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" && !IsUNCPath(path) {
		// Skip the drive letter colon
		rest := path
		if len(rest) >= 2 && rest[1] == ':' {
			rest = rest[2:]
		}
		for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
			if strings.Contains(rest, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
