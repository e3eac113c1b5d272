package bench

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/MikhailWahib/siltdb"
)

var writeCfg = &siltdb.Config{
	MaxMemtableSize: 4 * 1024 * 1024,
}

var readCfg = &siltdb.Config{
	MaxMemtableSize: 1024 * 1024,
}

func setupBenchDB(b *testing.B, cfg *siltdb.Config) (*siltdb.DB, func()) {
	db, err := siltdb.Open(b.TempDir(), cfg)
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

func generateKey(i int) []byte {
	return fmt.Appendf(nil, "key_%010d", i)
}

func generateValue(size int) []byte {
	value := make([]byte, size)
	for i := range value {
		value[i] = byte(rand.Intn(256))
	}
	return value
}

// populate writes numKeys entries and flushes so reads hit segments.
func populate(b *testing.B, db *siltdb.DB, numKeys int) {
	value := generateValue(1024)
	for i := 0; i < numKeys; i++ {
		if err := db.Put(generateKey(i), value); err != nil {
			b.Fatalf("Pre-populate put failed: %v", err)
		}
	}
	if err := db.Flush(); err != nil {
		b.Fatalf("Pre-populate flush failed: %v", err)
	}
}

func BenchmarkWrite(b *testing.B) {
	db, cleanup := setupBenchDB(b, writeCfg)
	defer cleanup()

	value := generateValue(1024)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := generateKey(i)
		err := db.Put(key, value)
		if err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func BenchmarkReadMemtable(b *testing.B) {
	db, cleanup := setupBenchDB(b, writeCfg)
	defer cleanup()

	value := generateValue(128)
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		if err := db.Put(generateKey(i), value); err != nil {
			b.Fatalf("Pre-populate put failed: %v", err)
		}
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, found, err := db.Get(generateKey(i % numKeys))
		if err != nil || !found {
			b.Fatalf("key not found: %v", err)
		}
	}
}

func BenchmarkRandomRead(b *testing.B) {
	db, cleanup := setupBenchDB(b, readCfg)
	defer cleanup()

	numKeys := 2000
	populate(b, db, numKeys)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := generateKey(rand.Intn(numKeys))
		_, found, err := db.Get(key)
		if err != nil || !found {
			b.Fatalf("key not found: %v", err)
		}
	}
}

func BenchmarkCompactAll(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		db, cleanup := setupBenchDB(b, readCfg)
		populate(b, db, 2000)
		// rewrite half the keys so compaction has shadowed entries to drop
		populate(b, db, 1000)
		b.StartTimer()

		if err := db.CompactAll(); err != nil {
			b.Fatalf("CompactAll failed: %v", err)
		}

		b.StopTimer()
		cleanup()
		b.StartTimer()
	}
}

func BenchmarkConcurrentWrite(b *testing.B) {
	db, cleanup := setupBenchDB(b, writeCfg)
	defer cleanup()

	value := generateValue(1024)

	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			// Use unique keys to avoid collisions across goroutines
			key := fmt.Appendf(nil, "key_%d_%d", rand.Int63(), i)
			err := db.Put(key, value)
			if err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			i++
		}
	})
}
