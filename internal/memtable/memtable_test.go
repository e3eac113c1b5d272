package memtable_test

import (
	"fmt"
	"testing"

	"github.com/MikhailWahib/siltdb/internal/memtable"
	"github.com/MikhailWahib/siltdb/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(mt *memtable.Memtable) []record.Entry {
	var entries []record.Entry
	mt.Range(func(key, value []byte) bool {
		entries = append(entries, record.Entry{Key: key, Value: value})
		return true
	})
	return entries
}

func TestMemtable_PutAndGet(t *testing.T) {
	mt := memtable.New()

	mt.Put([]byte("key1"), []byte("value1"))

	val, ok := mt.Get([]byte("key1"))
	assert.True(t, ok, "expected key1 to exist")
	assert.Equal(t, []byte("value1"), val)

	_, ok = mt.Get([]byte("missing"))
	assert.False(t, ok, "expected missing key to be absent")
}

func TestMemtable_Overwrite(t *testing.T) {
	mt := memtable.New()

	mt.Put([]byte("key1"), []byte("v1"))
	mt.Put([]byte("key1"), []byte("value2"))

	val, ok := mt.Get([]byte("key1"))
	require.True(t, ok)
	assert.Equal(t, []byte("value2"), val)
	assert.Equal(t, 1, mt.Size(), "overwrite must not add an entry")
	assert.Equal(t, len("key1")+len("value2"), mt.TotalBytes())
}

func TestMemtable_CopiesInput(t *testing.T) {
	mt := memtable.New()

	key := []byte("key")
	value := []byte("value")
	mt.Put(key, value)

	key[0] = 'x'
	value[0] = 'x'

	val, ok := mt.Get([]byte("key"))
	require.True(t, ok, "mutating the caller's key must not affect the table")
	assert.Equal(t, []byte("value"), val)
}

func TestMemtable_SizeAndTotalBytes(t *testing.T) {
	mt := memtable.New()
	assert.True(t, mt.IsEmpty())
	assert.Zero(t, mt.TotalBytes())

	mt.Put([]byte("a"), []byte("1"))
	mt.Put([]byte("bb"), []byte("22"))
	mt.Put([]byte("ccc"), []byte{})

	assert.False(t, mt.IsEmpty())
	assert.Equal(t, 3, mt.Size(), "expected size 3")
	assert.Equal(t, 2+4+3, mt.TotalBytes())
}

func TestMemtable_Ordering(t *testing.T) {
	mt := memtable.New()

	for _, k := range []string{"delta", "alpha", "charlie", "bravo", "a", "\x00", "\xff"} {
		mt.Put([]byte(k), []byte("v_"+k))
	}

	keys := []string{"\x00", "a", "alpha", "bravo", "charlie", "delta", "\xff"}

	entries := collect(mt)
	require.Len(t, entries, len(keys))
	for i, e := range entries {
		assert.Equal(t, keys[i], string(e.Key))
		assert.Equal(t, "v_"+keys[i], string(e.Value))
	}
}

func TestMemtable_RangeStopsEarly(t *testing.T) {
	mt := memtable.New()
	for i := range 10 {
		mt.Put(fmt.Appendf(nil, "key_%02d", i), []byte("v"))
	}

	visited := 0
	mt.Range(func(key, value []byte) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

func TestMemtable_Clear(t *testing.T) {
	mt := memtable.New()
	mt.Put([]byte("a"), []byte("1"))
	mt.Put([]byte("b"), []byte("2"))

	snapshot := collect(mt)
	mt.Clear()

	assert.True(t, mt.IsEmpty())
	assert.Zero(t, mt.Size())
	assert.Zero(t, mt.TotalBytes())
	_, ok := mt.Get([]byte("a"))
	assert.False(t, ok)
	assert.Empty(t, collect(mt))

	assert.Equal(t, []record.Entry{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}, snapshot, "entries taken before Clear stay intact")
}
