// Package wal implements Write-Ahead Logging for durability
package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MikhailWahib/siltdb/internal/diskmanager"
	"github.com/MikhailWahib/siltdb/internal/record"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed WAL.
var ErrClosed = errors.New("wal: closed")

// WAL manages the write-ahead log file.
// Every record is flushed and synced before Append returns.
type WAL struct {
	mu sync.Mutex

	dm     diskmanager.DiskManager
	path   string
	file   diskmanager.FileHandle
	writer *bufio.Writer
	logger *zap.Logger

	// size is the length of the log covered by the last successful sync
	size int64
	// err is set when a failed append could not be rolled back. Bytes past
	// size are then still on disk and must be cut before the log is used.
	err error
}

// Open opens or creates the log at path in append mode.
// It does not replay; call Replay explicitly.
func Open(dm diskmanager.DiskManager, path string, logger *zap.Logger) (*WAL, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &WAL{
		dm:     dm,
		path:   path,
		logger: logger,
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}

	stat, err := w.file.Stat()
	if err != nil {
		_ = w.file.Close()
		return nil, fmt.Errorf("failed to stat WAL file: %w", err)
	}
	w.size = stat.Size()

	return w, nil
}

func (w *WAL) openFile() error {
	file, err := w.dm.Open(w.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open WAL file: %w", err)
	}
	w.file = file
	w.writer = bufio.NewWriter(file)
	return nil
}

// Append writes a put record, flushes it and syncs the file.
// On failure the record is not durable and the log is rolled back
// to its previous length.
func (w *WAL) Append(key, value []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return ErrClosed
	}
	if err := w.repair(); err != nil {
		return err
	}

	n, err := record.WriteEntry(w.writer, key, value)
	if err != nil {
		return w.rollback(fmt.Errorf("failed to write WAL entry: %w", err))
	}

	if err := w.writer.Flush(); err != nil {
		return w.rollback(fmt.Errorf("failed to flush WAL: %w", err))
	}

	if err := w.file.Sync(); err != nil {
		return w.rollback(fmt.Errorf("failed to sync WAL: %w", err))
	}

	w.size += int64(n)
	return nil
}

// rollback drops buffered bytes and cuts the file back to the last synced
// length so a failed append never resurfaces during replay. If the cut
// fails the WAL refuses further use until repair succeeds.
func (w *WAL) rollback(cause error) error {
	w.writer.Reset(w.file)
	if err := w.file.Truncate(w.size); err != nil {
		w.logger.Error("failed to roll back WAL after append failure",
			zap.String("path", w.path),
			zap.Int64("size", w.size),
			zap.Error(err),
		)
		w.err = fmt.Errorf("failed to roll back WAL: %w", err)
		return errors.Join(cause, w.err)
	}
	return cause
}

// repair retries a failed rollback. It returns the pending error while
// the undurable tail is still on disk.
func (w *WAL) repair() error {
	if w.err == nil {
		return nil
	}
	if err := w.file.Truncate(w.size); err != nil {
		return errors.Join(w.err, err)
	}
	w.logger.Info("WAL rolled back after earlier failure",
		zap.String("path", w.path),
		zap.Int64("size", w.size),
	)
	w.err = nil
	return nil
}

// Replay reads every record from the start of the log in write order.
// A corrupt or truncated record aborts the replay.
func (w *WAL) Replay() ([]record.Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil, ErrClosed
	}
	if err := w.repair(); err != nil {
		return nil, err
	}

	if err := w.writer.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush WAL before replay: %w", err)
	}

	file, err := w.dm.Open(w.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAL for reading: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			w.logger.Warn("failed to close WAL read file", zap.Error(cerr))
		}
	}()

	reader := bufio.NewReader(file)

	var entries []record.Entry
	for {
		entry, err := record.ReadEntry(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read WAL entry %d: %w", len(entries), err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Purge truncates the log to zero length in place; appends continue on
// the same handle. Only call it once the logged writes are durable elsewhere.
// On failure the log keeps its contents and stays usable.
func (w *WAL) Purge() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return ErrClosed
	}

	w.writer.Reset(w.file)
	if err := w.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate WAL: %w", err)
	}
	w.size = 0
	// an empty log has no undurable tail left
	w.err = nil

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync truncated WAL: %w", err)
	}

	w.logger.Debug("WAL purged", zap.String("path", w.path))
	return nil
}

// Size returns the number of durable bytes in the log.
func (w *WAL) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Path returns the location of the log file.
func (w *WAL) Path() string {
	return w.path
}

// Close flushes, syncs and closes the WAL file
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return ErrClosed
	}

	repairErr := w.repair()
	file := w.file
	w.file = nil

	if repairErr != nil {
		_ = file.Close()
		return fmt.Errorf("closing WAL with undurable tail: %w", repairErr)
	}
	if err := w.writer.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush WAL on close: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync WAL on close: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close WAL file: %w", err)
	}
	return nil
}
