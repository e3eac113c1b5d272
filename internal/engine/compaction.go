// Package engine implements the core storage engine, including compaction.
package engine

import (
	"errors"
	"fmt"

	"github.com/MikhailWahib/siltdb/internal/memtable"
	"github.com/MikhailWahib/siltdb/internal/sstable"
	"go.uber.org/zap"
)

// CompactAll merges every segment into one new segment. Newer segments
// win on key collisions, matching read precedence. The segment list is
// switched to the new segment before the old files are removed; delete
// failures are returned but leave the new segment authoritative.
// With fewer than two segments there is nothing to merge.
func (e *Engine) CompactAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return ErrClosed
	}
	if len(e.sstables) < 2 {
		return nil
	}

	merged := memtable.New()
	for _, sst := range e.sstables {
		if err := mergeInto(merged, sst); err != nil {
			return err
		}
	}

	output, err := e.createSSTable(merged)
	if err != nil {
		return fmt.Errorf("failed to write compacted sstable: %w", err)
	}

	inputs := e.sstables
	e.sstables = []*sstable.SSTable{output}

	var errs []error
	for _, sst := range inputs {
		if err := sst.Delete(); err != nil {
			e.logger.Warn("failed to delete compacted sstable",
				zap.String("path", sst.Path()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	e.logger.Info("compaction finished",
		zap.Int("inputs", len(inputs)),
		zap.Uint64("generation", output.Generation()),
		zap.Int("entries", merged.Size()),
	)
	return errors.Join(errs...)
}

// mergeInto reads sst fully into dst, overwriting existing keys.
func mergeInto(dst *memtable.Memtable, sst *sstable.SSTable) (err error) {
	iter, err := sst.NewIterator()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close sstable %s: %w", sst.Path(), cerr)
		}
	}()

	for iter.Next() {
		dst.Put(iter.Key(), iter.Value())
	}
	return iter.Error()
}
