// Package siltdb is a small embedded key-value store based on an LSM tree.
//
// Writes go to a write-ahead log and an in-memory sorted table. When the
// table grows past its configured size it is written out as an immutable
// sorted segment file and the log is reset. Reads check the memtable and
// then segments from newest to oldest. CompactAll merges every segment
// into one.
//
// Example usage:
//
//	db, err := siltdb.Open("/path/to/database", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Put([]byte("key"), []byte("value")); err != nil {
//		log.Printf("Put failed: %v", err)
//	}
//
//	value, found, err := db.Get([]byte("key"))
//	if err != nil {
//		log.Printf("Get failed: %v", err)
//	} else if found {
//		fmt.Printf("Value: %s\n", value)
//	}
package siltdb

import (
	"github.com/MikhailWahib/siltdb/internal/config"
	"github.com/MikhailWahib/siltdb/internal/engine"
	"github.com/MikhailWahib/siltdb/internal/record"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// Stats is an alias for engine.Stats.
type Stats = engine.Stats

// DefaultConfig returns a Config struct populated with default values. Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// LoadConfig reads a YAML config file. A missing file yields the defaults,
// reported on logger. The returned Config uses logger for engine events.
var LoadConfig = config.Load

var (
	// ErrCorrupt reports a truncated or malformed record in the WAL or a segment.
	ErrCorrupt = record.ErrCorrupt
	// ErrEntryTooLarge reports a key or value over the configured size limit.
	ErrEntryTooLarge = engine.ErrEntryTooLarge
	// ErrClosed is returned by every method after Close.
	ErrClosed = engine.ErrClosed
	// ErrInvalidConfig reports a Config that fails validation.
	ErrInvalidConfig = config.ErrInvalidConfig
)

// DB represents a thread-safe SiltDB instance.
type DB struct {
	engine *engine.Engine
}

// Open opens or creates a SiltDB database at the specified path.
//
// The directory will be created if it doesn't exist. If the database exists,
// writes not yet flushed to a segment are recovered from the log.
// A nil cfg uses DefaultConfig.
func Open(path string, cfg *Config) (*DB, error) {
	e := engine.NewEngine(cfg)
	if err := e.OpenDB(path); err != nil {
		return nil, err
	}
	return &DB{engine: e}, nil
}

// Put writes a key-value pair to the database, overwriting any previous value.
// The write is durable when Put returns nil.
func (db *DB) Put(key, value []byte) error {
	return db.engine.Put(key, value)
}

// Get retrieves the value for a given key.
// A missing key returns nil, false and a nil error.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	return db.engine.Get(key)
}

// Flush persists the in-memory table as a new segment and resets the log.
// It does nothing when there are no unflushed writes.
func (db *DB) Flush() error {
	return db.engine.Flush()
}

// CompactAll merges all segments into a single segment and removes the old files.
func (db *DB) CompactAll() error {
	return db.engine.CompactAll()
}

// Stats returns segment and memtable counters.
func (db *DB) Stats() (Stats, error) {
	return db.engine.Stats()
}

// Close syncs the log and releases its file. Unflushed writes stay in the
// log and are replayed by the next Open. After Close every method returns ErrClosed.
func (db *DB) Close() error {
	return db.engine.Close()
}
