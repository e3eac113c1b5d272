// Package memtable implements an in-memory table structure for the database,
// holding recent writes in key order until they are flushed to a segment.
package memtable

import (
	"bytes"

	"github.com/zhangyunhao116/skipmap"
)

type orderedMap = skipmap.FuncMap[[]byte, []byte]

func newOrderedMap() *orderedMap {
	return skipmap.NewFunc[[]byte, []byte](func(a, b []byte) bool {
		return bytes.Compare(a, b) < 0
	})
}

// Memtable is a sorted map from key to value ordered by bytes.Compare.
// Lookups may run concurrently; writes must be serialized by the caller.
type Memtable struct {
	m          *orderedMap
	totalBytes int
}

// New creates an empty Memtable.
func New() *Memtable {
	return &Memtable{m: newOrderedMap()}
}

// Put inserts or overwrites the value for key.
// Key and value are copied, so callers may reuse their buffers.
func (mt *Memtable) Put(key, value []byte) {
	k := append([]byte{}, key...)
	v := append([]byte{}, value...)

	if old, ok := mt.m.Load(k); ok {
		mt.totalBytes -= len(k) + len(old)
	}
	mt.m.Store(k, v)
	mt.totalBytes += len(k) + len(v)
}

// Get returns the value stored for key.
func (mt *Memtable) Get(key []byte) ([]byte, bool) {
	return mt.m.Load(key)
}

// Range calls fn for every entry in ascending key order until fn returns false.
func (mt *Memtable) Range(fn func(key, value []byte) bool) {
	mt.m.Range(fn)
}

// Size returns the number of entries.
func (mt *Memtable) Size() int {
	return mt.m.Len()
}

// TotalBytes returns the sum of key and value lengths across all entries.
func (mt *Memtable) TotalBytes() int {
	return mt.totalBytes
}

// IsEmpty reports whether the memtable holds no entries.
func (mt *Memtable) IsEmpty() bool {
	return mt.m.Len() == 0
}

// Clear drops all entries.
func (mt *Memtable) Clear() {
	mt.m = newOrderedMap()
	mt.totalBytes = 0
}
