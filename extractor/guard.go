package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/localepack/utils"
)

// ReservedDirs may never serve as the staging directory.
var ReservedDirs = []string{
	"config",
	"node_modules",
	"assets",
	"public",
	"resources",
	"scripts",
	"src",
	"test",
	"tests",
	"__tests__",
	".vscode",
	".idea",
}

// ResolveTmpDir returns the absolute staging directory for dir, or the reason
// it cannot serve as one.
func ResolveTmpDir(dir, cwd string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	dir = filepath.Clean(dir)
	if err := checkTmpDir(dir, cwd); err != nil {
		return "", err
	}
	return dir, nil
}

// checkTmpDir rejects files, the working directory and reserved project directories.
func checkTmpDir(dir, cwd string) error {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", ErrInvalidTmpDir, utils.NormalizePath(dir, cwd))
	}
	if dir == cwd {
		return fmt.Errorf("%w: cannot be current working directory", ErrInvalidTmpDir)
	}
	for _, reserved := range ReservedDirs {
		if filepath.Join(cwd, reserved) == dir {
			return fmt.Errorf("%w: cannot be a resource dir: %s", ErrInvalidTmpDir, reserved)
		}
	}
	return nil
}

// checkOutputDir requires a path inside the build output.
func checkOutputDir(dir string) error {
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "/") || strings.HasPrefix(dir, "..") {
		return fmt.Errorf("%w: must be relative to build path", ErrInvalidOutputDir)
	}
	return nil
}
