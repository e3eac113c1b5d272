// Package sstable implements immutable sorted segment files.
//
// A segment is a flat sequence of records in ascending key order, written once
// from a sorted source and never modified afterwards. Lookups scan the file
// from the start; there is no index or footer.
package sstable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MikhailWahib/siltdb/internal/diskmanager"
)

const (
	filePrefix = "sstable_"
	fileSuffix = ".sst"
)

// FileName returns the segment file name for a generation.
func FileName(gen uint64) string {
	return filePrefix + strconv.FormatUint(gen, 10) + fileSuffix
}

// ParseFileName extracts the generation from a segment file name.
// Names that do not follow the sstable_<gen>.sst pattern report false.
func ParseFileName(name string) (uint64, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	num := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	gen, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// SSTable is a handle to a segment on disk. It holds no open file;
// every read opens its own handle, so concurrent readers do not interfere.
type SSTable struct {
	dm   diskmanager.DiskManager
	path string
	gen  uint64
}

// New returns a handle for an existing segment file.
func New(dm diskmanager.DiskManager, path string, gen uint64) *SSTable {
	return &SSTable{dm: dm, path: path, gen: gen}
}

// Path returns the file path of the segment.
func (s *SSTable) Path() string {
	return s.path
}

// Generation returns the generation number of the segment.
func (s *SSTable) Generation() uint64 {
	return s.gen
}

// Delete removes the segment file from disk.
func (s *SSTable) Delete() error {
	if err := s.dm.Delete(s.path); err != nil {
		return fmt.Errorf("failed to delete sstable %s: %w", s.path, err)
	}
	return nil
}
