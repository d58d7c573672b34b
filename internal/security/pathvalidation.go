// Package security keeps exporter output inside the directory the caller
// chose. Output directories are subdirectories of a run root (normally the
// working directory) and file prefixes are single path components.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory checks that filePath resolves inside safeDir.
// Symlinks are resolved on both sides, walking up to the first existing
// parent when filePath does not exist yet, so a link planted under safeDir
// cannot redirect writes elsewhere.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	canonicalPath := absPath
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		canonicalPath = resolved
	} else {
		for check := absPath; ; {
			parent := filepath.Dir(check)
			if parent == check {
				break
			}
			if resolved, err := filepath.EvalSymlinks(parent); err == nil {
				rel, _ := filepath.Rel(parent, absPath)
				canonicalPath = filepath.Join(resolved, rel)
				break
			}
			check = parent
		}
	}

	canonicalSafeDir, err := filepath.EvalSymlinks(absSafeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(canonicalSafeDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if escapes(rel) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// ValidateOutputDir checks an exporter output directory lexically: it must be
// relative and must not climb out of the run root. The directory does not
// need to exist.
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	if filepath.IsAbs(dir) {
		return fmt.Errorf("output directory %q must be relative to the run root", dir)
	}
	if escapes(filepath.Clean(dir)) {
		return fmt.Errorf("output directory %q escapes the run root", dir)
	}
	return nil
}

// ValidateFilePrefix checks that a file-name prefix is a single path
// component.
func ValidateFilePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("file prefix is empty")
	case prefix == "." || prefix == "..":
		return fmt.Errorf("file prefix %q is not a file name", prefix)
	case strings.ContainsAny(prefix, `/\`):
		return fmt.Errorf("file prefix %q contains a path separator", prefix)
	}
	return nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}
