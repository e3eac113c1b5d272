package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/MikhailWahib/siltdb/internal/config"
	"github.com/MikhailWahib/siltdb/internal/diskmanager"
	"github.com/MikhailWahib/siltdb/internal/memtable"
	"github.com/MikhailWahib/siltdb/internal/record"
	"github.com/MikhailWahib/siltdb/internal/sstable"
	"github.com/MikhailWahib/siltdb/internal/wal"
	"go.uber.org/zap"
)

const walFileName = "wal.log"

var (
	// ErrClosed is returned by operations on an engine that is closed or was never opened.
	ErrClosed = errors.New("engine: closed")

	// ErrEntryTooLarge is returned by Put when the key or value exceeds the configured bound.
	ErrEntryTooLarge = record.ErrEntryTooLarge
)

// Option configures an Engine.
type Option func(*Engine)

// WithDiskManager replaces the os-backed disk manager.
func WithDiskManager(dm diskmanager.DiskManager) Option {
	return func(e *Engine) {
		e.dm = dm
	}
}

// Engine is an LSM tree over a single directory: a WAL-backed memtable
// in front of a list of immutable segments. All state is guarded by one
// mutex, so an Engine is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg    config.Config
	dm     diskmanager.DiskManager
	logger *zap.Logger

	dataDir  string
	wal      *wal.WAL
	memtable *memtable.Memtable
	// sstables is ordered oldest first
	sstables []*sstable.SSTable
	nextGen  uint64
}

// Stats is a point-in-time summary of engine state.
type Stats struct {
	Segments        int
	Generations     []uint64
	MemtableEntries int
	MemtableBytes   int
	NextGeneration  uint64
}

// NewEngine creates an engine with the given config. Call OpenDB before use.
// A nil config means DefaultConfig; zero fields are filled with defaults.
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := *cfg
	c.FillDefaults()

	e := &Engine{
		cfg:    c,
		dm:     diskmanager.NewDiskManager(),
		logger: c.Logger.With(zap.String("component", "engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenDB opens or creates the database in dataDir. It replays the WAL
// into a fresh memtable and loads existing segments ordered by generation.
func (e *Engine) OpenDB(dataDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal != nil {
		return fmt.Errorf("engine already open at %s", e.dataDir)
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if err := e.dm.MkdirAll(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	e.dataDir = dataDir
	if err := e.loadSSTables(); err != nil {
		return err
	}

	w, err := wal.Open(e.dm, filepath.Join(dataDir, walFileName), e.cfg.Logger.With(zap.String("component", "wal")))
	if err != nil {
		return err
	}

	entries, err := w.Replay()
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to replay WAL: %w", err)
	}

	mt := memtable.New()
	for _, entry := range entries {
		mt.Put(entry.Key, entry.Value)
	}

	e.wal = w
	e.memtable = mt

	e.logger.Info("database opened",
		zap.String("dir", dataDir),
		zap.String("wal", w.Path()),
		zap.Int("replayed", len(entries)),
		zap.Int("segments", len(e.sstables)),
		zap.Uint64("next_generation", e.nextGen),
	)
	return nil
}

// loadSSTables scans the data directory for segment files and sets the
// generation counter past the newest one. Unrelated files are ignored.
func (e *Engine) loadSSTables() error {
	files, err := e.dm.List(e.dataDir, ".sst")
	if err != nil {
		return fmt.Errorf("failed to list data directory: %w", err)
	}

	var sstables []*sstable.SSTable
	for _, name := range files {
		gen, ok := sstable.ParseFileName(name)
		if !ok {
			continue
		}
		sstables = append(sstables, sstable.New(e.dm, filepath.Join(e.dataDir, name), gen))
	}

	slices.SortFunc(sstables, func(a, b *sstable.SSTable) int {
		switch {
		case a.Generation() < b.Generation():
			return -1
		case a.Generation() > b.Generation():
			return 1
		}
		return 0
	})

	e.sstables = sstables
	e.nextGen = 0
	if n := len(sstables); n > 0 {
		e.nextGen = sstables[n-1].Generation() + 1
	}
	return nil
}

// Put stores value under key. The write is durable in the WAL before it
// becomes visible. If the memtable grows past the configured size it is
// flushed before Put returns; a flush error is returned even though the
// write itself was applied.
func (e *Engine) Put(key, value []byte) error {
	if len(key) > e.cfg.MaxEntrySize || len(value) > e.cfg.MaxEntrySize {
		return fmt.Errorf("%w: key=%d value=%d limit=%d",
			ErrEntryTooLarge, len(key), len(value), e.cfg.MaxEntrySize)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return ErrClosed
	}

	if err := e.wal.Append(key, value); err != nil {
		return err
	}
	e.memtable.Put(key, value)

	if e.memtable.TotalBytes() > e.cfg.MaxMemtableSize {
		if err := e.flushLocked(); err != nil {
			return fmt.Errorf("failed to flush memtable: %w", err)
		}
	}
	return nil
}

// Get returns the newest value for key, checking the memtable and then
// segments from newest to oldest. A missing key yields (nil, false, nil).
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return nil, false, ErrClosed
	}

	if val, ok := e.memtable.Get(key); ok {
		return append([]byte{}, val...), true, nil
	}

	for i := len(e.sstables) - 1; i >= 0; i-- {
		val, ok, err := e.sstables[i].Get(key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return val, true, nil
		}
	}
	return nil, false, nil
}

// Flush writes the memtable to a new segment and purges the WAL.
// It is a no-op when the memtable is empty.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return ErrClosed
	}
	return e.flushLocked()
}

func (e *Engine) flushLocked() error {
	if e.memtable.IsEmpty() {
		return nil
	}

	sst, err := e.createSSTable(e.memtable)
	if err != nil {
		return err
	}
	e.sstables = append(e.sstables, sst)

	entries, size := e.memtable.Size(), e.memtable.TotalBytes()
	e.memtable.Clear()

	// the segment is synced, so the logged writes are durable elsewhere
	if err := e.wal.Purge(); err != nil {
		return err
	}

	e.logger.Info("memtable flushed",
		zap.Uint64("generation", sst.Generation()),
		zap.Int("entries", entries),
		zap.Int("bytes", size),
	)
	return nil
}

// createSSTable writes src to a segment at the next generation.
// The generation is consumed even if the write fails.
func (e *Engine) createSSTable(src sstable.Source) (*sstable.SSTable, error) {
	gen := e.nextGen
	e.nextGen++
	path := filepath.Join(e.dataDir, sstable.FileName(gen))
	return sstable.Create(e.dm, path, gen, src)
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return Stats{}, ErrClosed
	}

	gens := make([]uint64, len(e.sstables))
	for i, sst := range e.sstables {
		gens[i] = sst.Generation()
	}
	return Stats{
		Segments:        len(e.sstables),
		Generations:     gens,
		MemtableEntries: e.memtable.Size(),
		MemtableBytes:   e.memtable.TotalBytes(),
		NextGeneration:  e.nextGen,
	}, nil
}

// Close syncs and releases the WAL. The memtable is not flushed;
// its contents are recovered from the WAL on the next open.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return ErrClosed
	}

	err := e.wal.Close()
	e.wal = nil
	e.memtable = nil
	e.sstables = nil

	e.logger.Info("database closed", zap.String("dir", e.dataDir))
	return err
}
