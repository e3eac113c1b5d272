package sstable

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MikhailWahib/siltdb/internal/diskmanager"
	"github.com/MikhailWahib/siltdb/internal/record"
)

func (s *SSTable) open() (diskmanager.FileHandle, error) {
	file, err := s.dm.Open(s.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open sstable %s: %w", s.path, err)
	}
	return file, nil
}

// Get scans the segment for key. A missing key is not an error.
func (s *SSTable) Get(key []byte) ([]byte, bool, error) {
	file, err := s.open()
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		entry, err := record.ReadEntry(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("failed to read sstable %s: %w", s.path, err)
		}
		if bytes.Equal(entry.Key, key) {
			return entry.Value, true, nil
		}
	}
}

// Iterator walks a segment in file order. It owns its file handle
// until Close and cannot be restarted once exhausted.
type Iterator struct {
	path   string
	file   diskmanager.FileHandle
	reader *bufio.Reader
	entry  record.Entry
	err    error
	done   bool
}

// NewIterator opens a fresh handle on the segment and returns an iterator
// positioned before the first entry.
func (s *SSTable) NewIterator() (*Iterator, error) {
	file, err := s.open()
	if err != nil {
		return nil, err
	}
	return &Iterator{
		path:   s.path,
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

// Next advances to the next entry. It returns false at the end of the
// segment or on error; check Error to tell the two apart.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	entry, err := record.ReadEntry(it.reader)
	if err != nil {
		it.done = true
		it.entry = record.Entry{}
		if !errors.Is(err, io.EOF) {
			it.err = fmt.Errorf("failed to read sstable %s: %w", it.path, err)
		}
		return false
	}

	it.entry = entry
	return true
}

// Key returns the key of the current entry.
func (it *Iterator) Key() []byte {
	return it.entry.Key
}

// Value returns the value of the current entry.
func (it *Iterator) Value() []byte {
	return it.entry.Value
}

// Error returns the error that stopped iteration, if any.
func (it *Iterator) Error() error {
	return it.err
}

// Close releases the file handle. It is safe to call more than once.
func (it *Iterator) Close() error {
	it.done = true
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file = nil
	return err
}
