package record

import "errors"

var (
	// ErrCorrupt is returned when a record is truncated or its header is implausible.
	ErrCorrupt = errors.New("record: corrupt entry")

	// ErrEntryTooLarge is returned when a key or value exceeds MaxEntrySize.
	ErrEntryTooLarge = errors.New("record: entry too large")
)

// Entry represents a single key-value pair as stored on disk
type Entry struct {
	Key   []byte
	Value []byte
}

