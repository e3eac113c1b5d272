// Package diskmanager provides interfaces and implementations for managing disk-based file operations.
// It is the single boundary between the storage engine and the operating system's file system.
package diskmanager

import (
	"os"
	"strings"
)

// FileHandle abstracts a sequential file stream with durable syncing.
type FileHandle interface {
	// Read reads up to len(b) bytes from the current position.
	Read(b []byte) (int, error)
	// Write writes len(b) bytes at the current position, or at the end
	// of the file when it was opened with os.O_APPEND.
	Write(b []byte) (int, error)
	// Close closes the file handle, rendering it unusable for I/O.
	Close() error
	// Sync commits the current contents of the file to stable storage.
	Sync() error
	// Truncate changes the size of the file.
	Truncate(size int64) error
	// Stat returns the file stat
	Stat() (os.FileInfo, error)
}

// DiskManager defines methods for file operations.
type DiskManager interface {
	// Open opens a file with specified path, flags and permissions.
	// Every call returns an independent handle with its own position.
	Open(path string, flags int, perm os.FileMode) (FileHandle, error)
	// Delete removes the named file.
	Delete(path string) error
	// List returns a slice of filenames in the specified directory
	// that contain the filter string. Empty filter matches all files.
	List(dir string, filter string) ([]string, error)
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}

type diskManager struct{}

// NewDiskManager creates a DiskManager backed by the os package.
func NewDiskManager() DiskManager {
	return diskManager{}
}

// Open opens a file with the given flags and permissions.
func (diskManager) Open(path string, flags int, perm os.FileMode) (FileHandle, error) {
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (diskManager) Delete(path string) error {
	return os.Remove(path)
}

func (diskManager) List(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filter == "" || strings.Contains(entry.Name(), filter) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (diskManager) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}
