// Package record implements the length-prefixed binary format shared by the WAL and segment files.
package record

// LengthSize is the size in bytes used to store length prefixes
const LengthSize = 4

// HeaderSize is the total size of entry metadata (key length + value length)
const HeaderSize = 2 * LengthSize // 8 bytes

// MaxEntrySize is the largest key or value length the format accepts.
// A header claiming more is treated as corruption.
const MaxEntrySize = 64 * 1024
