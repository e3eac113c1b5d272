package sstable

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/MikhailWahib/siltdb/internal/diskmanager"
	"github.com/MikhailWahib/siltdb/internal/record"
)

// Source yields entries in ascending key order.
type Source interface {
	Range(fn func(key, value []byte) bool)
}

// Create writes every entry of src to a new segment at path, then flushes
// and syncs the file. A partially written file is removed on failure.
func Create(dm diskmanager.DiskManager, path string, gen uint64, src Source) (*SSTable, error) {
	file, err := dm.Open(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create sstable %s: %w", path, err)
	}

	if err := writeAll(file, src); err != nil {
		_ = file.Close()
		if derr := dm.Delete(path); derr != nil {
			err = errors.Join(err, fmt.Errorf("failed to remove partial sstable: %w", derr))
		}
		return nil, fmt.Errorf("failed to write sstable %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close sstable %s: %w", path, err)
	}

	return New(dm, path, gen), nil
}

func writeAll(file diskmanager.FileHandle, src Source) error {
	writer := bufio.NewWriter(file)

	var werr error
	src.Range(func(key, value []byte) bool {
		_, werr = record.WriteEntry(writer, key, value)
		return werr == nil
	})
	if werr != nil {
		return werr
	}

	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Sync()
}
