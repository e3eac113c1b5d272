// Package mockdm provides an in-memory implementation of the disk manager for testing.
// Failures can be injected per operation kind.
package mockdm

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MikhailWahib/siltdb/internal/diskmanager"
)

type fileData struct {
	data []byte
}

// MockFile implements diskmanager.FileHandle for testing purposes
type MockFile struct {
	dm     *MockDiskManager
	file   *fileData
	name   string
	pos    int
	append bool
	closed bool
}

// Read reads from the current position of the handle
func (m *MockFile) Read(b []byte) (int, error) {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	if m.closed {
		return 0, os.ErrClosed
	}
	if m.pos >= len(m.file.data) {
		return 0, io.EOF
	}
	n := copy(b, m.file.data[m.pos:])
	m.pos += n
	return n, nil
}

// Write writes at the current position, or at the end for append handles
func (m *MockFile) Write(b []byte) (int, error) {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	if m.closed {
		return 0, os.ErrClosed
	}
	if m.dm.writeErr != nil {
		return 0, m.dm.writeErr
	}
	if m.append {
		m.pos = len(m.file.data)
	}

	// Extend the slice if needed
	requiredLen := m.pos + len(b)
	if requiredLen > len(m.file.data) {
		newData := make([]byte, requiredLen)
		copy(newData, m.file.data)
		m.file.data = newData
	}
	n := copy(m.file.data[m.pos:], b)
	m.pos += n
	return n, nil
}

// Close closes the mock file
func (m *MockFile) Close() error {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	if m.closed {
		return os.ErrClosed
	}
	m.closed = true
	return nil
}

// Sync simulates syncing file contents to disk
func (m *MockFile) Sync() error {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	if m.closed {
		return os.ErrClosed
	}
	m.dm.syncs++
	return m.dm.syncErr
}

// Truncate shrinks or zero-extends the file
func (m *MockFile) Truncate(size int64) error {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	if m.closed {
		return os.ErrClosed
	}
	if m.dm.truncateErr != nil {
		return m.dm.truncateErr
	}
	newData := make([]byte, size)
	copy(newData, m.file.data)
	m.file.data = newData
	return nil
}

// Stat returns file information
func (m *MockFile) Stat() (os.FileInfo, error) {
	m.dm.mu.Lock()
	defer m.dm.mu.Unlock()

	return &testFileInfo{size: int64(len(m.file.data)), name: filepath.Base(m.name)}, nil
}

type testFileInfo struct {
	size int64
	name string
}

func (m *testFileInfo) Name() string       { return m.name }
func (m *testFileInfo) Size() int64        { return m.size }
func (m *testFileInfo) Mode() os.FileMode  { return 0644 }
func (m *testFileInfo) ModTime() time.Time { return time.Now() }
func (m *testFileInfo) IsDir() bool        { return false }
func (m *testFileInfo) Sys() any           { return nil }

// MockDiskManager implements diskmanager.DiskManager interface for testing
type MockDiskManager struct {
	mu    sync.Mutex
	files map[string]*fileData
	dirs  map[string]bool

	writeErr    error
	syncErr     error
	deleteErr   error
	truncateErr error
	syncs       int
}

var _ diskmanager.DiskManager = (*MockDiskManager)(nil)

// NewMockDiskManager creates a new MockDiskManager instance
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*fileData),
		dirs:  make(map[string]bool),
	}
}

// Open creates or opens a mock file, honouring O_CREATE, O_TRUNC and O_APPEND
func (dm *MockDiskManager) Open(path string, flags int, _ os.FileMode) (diskmanager.FileHandle, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	path = filepath.Clean(path)
	file, exists := dm.files[path]
	if !exists {
		if flags&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		file = &fileData{}
		dm.files[path] = file
	}
	if flags&os.O_TRUNC != 0 {
		file.data = nil
	}

	return &MockFile{
		dm:     dm,
		file:   file,
		name:   path,
		append: flags&os.O_APPEND != 0,
	}, nil
}

// Delete removes a mock file
func (dm *MockDiskManager) Delete(path string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.deleteErr != nil {
		return dm.deleteErr
	}
	path = filepath.Clean(path)
	if _, exists := dm.files[path]; !exists {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(dm.files, path)
	return nil
}

// List returns the names of mock files directly inside dir matching the filter
func (dm *MockDiskManager) List(dir string, filter string) ([]string, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dir = filepath.Clean(dir)
	var files []string
	for path := range dm.files {
		if filepath.Dir(path) != dir {
			continue
		}
		name := filepath.Base(path)
		if filter == "" || strings.Contains(name, filter) {
			files = append(files, name)
		}
	}
	if len(files) == 0 && !dm.dirs[dir] {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}
	sort.Strings(files)
	return files, nil
}

// MkdirAll records dir as existing
func (dm *MockDiskManager) MkdirAll(dir string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.dirs[filepath.Clean(dir)] = true
	return nil
}

// FailWrites makes every subsequent Write return err. Pass nil to stop failing.
func (dm *MockDiskManager) FailWrites(err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.writeErr = err
}

// FailSyncs makes every subsequent Sync return err. Pass nil to stop failing.
func (dm *MockDiskManager) FailSyncs(err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.syncErr = err
}

// FailDeletes makes every subsequent Delete return err. Pass nil to stop failing.
func (dm *MockDiskManager) FailDeletes(err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.deleteErr = err
}

// FailTruncates makes every subsequent Truncate return err. Pass nil to stop failing.
func (dm *MockDiskManager) FailTruncates(err error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.truncateErr = err
}

// Syncs returns how many times Sync was called on any handle.
func (dm *MockDiskManager) Syncs() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.syncs
}

// Data returns a copy of the contents of path, or nil if it does not exist.
func (dm *MockDiskManager) Data(path string) []byte {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	file, exists := dm.files[filepath.Clean(path)]
	if !exists {
		return nil
	}
	return append([]byte{}, file.data...)
}

// SetData replaces the contents of path, creating it if needed.
func (dm *MockDiskManager) SetData(path string, data []byte) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	path = filepath.Clean(path)
	file, exists := dm.files[path]
	if !exists {
		file = &fileData{}
		dm.files[path] = file
	}
	file.data = append([]byte{}, data...)
}
