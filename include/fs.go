package include

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the file access the resolver needs. It lets builds read through
// an in-memory or cached file system.
type FileSystem interface {
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	EvalSymlinks(path string) (string, error)
}

// OSFileSystem reads from the host file system.
type OSFileSystem struct{}

func (OSFileSystem) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFileSystem) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }
