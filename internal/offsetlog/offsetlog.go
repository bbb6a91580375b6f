// Package offsetlog reads flume-style offset log files.
//
// The offset log is the append-only, tamper-evident record stream produced by
// the replication layer. This package is strictly read-only: it never writes,
// truncates, or rewrites the log.
//
// Framing per record:
//
//	[u32 big-endian length][payload][u32 big-endian length]
//
// The trailing length copy exists so other consumers can scan backwards; this
// reader verifies it as a cheap corruption check. A record's sequence number
// is the byte offset of its frame start, which makes sequences strictly
// increasing but not contiguous.
package offsetlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Entry is one record read from the log.
type Entry struct {
	// Seq is the global sequence number: the byte offset of the record.
	Seq int64
	// Data is the raw record payload.
	Data []byte
}

// Reader iterates an offset log file sequentially from a starting offset.
type Reader struct {
	f      *os.File
	offset int64
}

// Open opens the log file for sequential reading from the beginning.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open offset log: %w", err)
	}
	return &Reader{f: f}, nil
}

// OpenAt opens the log file positioned at a previously observed sequence
// number, so ingestion can resume where it left off.
func OpenAt(path string, seq int64) (*Reader, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	if seq < 0 {
		r.Close()
		return nil, fmt.Errorf("open offset log: negative seq %d", seq)
	}
	r.offset = seq
	return r, nil
}

// Next returns the next record in the log. Returns io.EOF once the end of the
// log is reached; a partially written trailing record also reads as io.EOF so
// a concurrent appender never surfaces as corruption.
func (r *Reader) Next() (Entry, error) {
	var head [4]byte
	if _, err := r.f.ReadAt(head[:], r.offset); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("offset log: read header at %d: %w", r.offset, err)
	}
	size := binary.BigEndian.Uint32(head[:])

	frame := make([]byte, int(size)+4)
	if _, err := r.f.ReadAt(frame, r.offset+4); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("offset log: read record at %d: %w", r.offset, err)
	}

	tail := binary.BigEndian.Uint32(frame[size:])
	if tail != size {
		return Entry{}, fmt.Errorf("offset log: corrupt frame at %d: length %d, trailer %d", r.offset, size, tail)
	}

	entry := Entry{Seq: r.offset, Data: frame[:size]}
	r.offset += int64(size) + 8
	return entry, nil
}

// Offset returns the byte offset the next call to Next will read from.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
