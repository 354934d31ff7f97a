package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath formats a file path for display, relative to base when one is given.
// Relative results are prefixed with "./" and an empty result becomes "./".
func NormalizePath(file, base string) string {
	if base != "" {
		if rel, err := filepath.Rel(base, file); err == nil {
			file = rel
			if file == "." {
				file = ""
			}
		}
	}
	file = strings.ReplaceAll(file, "\\", "/")
	if base != "" && file != "" && !filepath.IsAbs(file) && !strings.HasPrefix(file, ".") {
		file = "./" + file
	}
	if file == "" {
		return "./"
	}
	return file
}

// IsSamePath reports whether a and b point to the same location.
// Relative paths are resolved against base, or the working directory when base is empty.
func IsSamePath(a, b, base string) bool {
	if base == "" {
		base, _ = os.Getwd()
	}
	return absPath(a, base) == absPath(b, base)
}

func absPath(p, base string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)
	if trimmed := strings.TrimRight(p, `/\`); trimmed != "" {
		return trimmed
	}
	return p
}

// WriteFile writes data to path, creating missing parent directories first.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RealCwd returns the working directory with symbolic links resolved.
func RealCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(cwd); err == nil {
		return real, nil
	}
	return cwd, nil
}
