package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Encode serializes a key-value pair.
// Format: [4 bytes KeyLen][4 bytes ValueLen][Key][Value], lengths little-endian.
func Encode(key, value []byte) ([]byte, error) {
	if len(key) > MaxEntrySize || len(value) > MaxEntrySize {
		return nil, fmt.Errorf("%w: key=%d value=%d", ErrEntryTooLarge, len(key), len(value))
	}

	keyLen := len(key)
	buf := make([]byte, HeaderSize+keyLen+len(value))

	binary.LittleEndian.PutUint32(buf[:LengthSize], uint32(keyLen))
	binary.LittleEndian.PutUint32(buf[LengthSize:HeaderSize], uint32(len(value)))
	copy(buf[HeaderSize:], key)
	copy(buf[HeaderSize+keyLen:], value)

	return buf, nil
}

// WriteEntry encodes a key-value pair and writes it to w.
// Returns the number of bytes written.
func WriteEntry(w io.Writer, key, value []byte) (int, error) {
	buf, err := Encode(key, value)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(buf)
	if err != nil {
		return n, fmt.Errorf("failed to write entry: %w", err)
	}
	return n, nil
}

// ReadEntry reads a single entry from r.
// It returns io.EOF only when r is exhausted exactly at a record boundary.
// A partial header or body, or a header claiming more than MaxEntrySize,
// yields an error wrapping ErrCorrupt.
func ReadEntry(r io.Reader) (Entry, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, truncated(err, "header")
	}

	keyLen := binary.LittleEndian.Uint32(header[:LengthSize])
	valLen := binary.LittleEndian.Uint32(header[LengthSize:HeaderSize])

	if keyLen > MaxEntrySize || valLen > MaxEntrySize {
		return Entry{}, fmt.Errorf("%w: header claims key=%d value=%d", ErrCorrupt, keyLen, valLen)
	}

	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return Entry{}, truncated(err, "key")
	}

	value := make([]byte, valLen)
	if _, err := io.ReadFull(r, value); err != nil {
		return Entry{}, truncated(err, "value")
	}

	return Entry{Key: key, Value: value}, nil
}

// truncated maps a short read to ErrCorrupt and passes other I/O errors through.
func truncated(err error, part string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrCorrupt, part)
	}
	return fmt.Errorf("failed to read entry %s: %w", part, err)
}
