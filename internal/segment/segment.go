// Package segment is a minimal append-only commit log segment file.
//
// Records are framed as a little-endian uint32 payload length, a little-endian
// CRC32 (IEEE) of the payload, and the payload itself. Appends go through a
// buffered writer; nothing is durable until Sync returns.
package segment

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	headerSize = 8
	filePrefix = "commitlog-"
)

var (
	ErrClosed    = errors.New("segment: closed")
	ErrCorrupt   = errors.New("segment: checksum mismatch")
	ErrTruncated = errors.New("segment: truncated record")
)

// Position is where a record starts on disk.
type Position struct {
	Segment int64
	Offset  int64
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Segment, p.Offset)
}

// Segment is one commit log file open for appending.
type Segment struct {
	mu     sync.Mutex
	id     int64
	file   *os.File
	writer *bufio.Writer
	offset int64
	closed bool
}

// FileName returns the file name used for segment id.
func FileName(id int64) string {
	return fmt.Sprintf("%s%d.log", filePrefix, id)
}

// Open opens (or creates) segment id inside dir and positions it for appending
// after any records already present.
func Open(dir string, id int64) (*Segment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("segment: create directory: %w", err)
	}

	path := filepath.Join(dir, FileName(id))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", path, err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("segment: seek %s: %w", path, err)
	}

	return &Segment{
		id:     id,
		file:   file,
		writer: bufio.NewWriter(file),
		offset: offset,
	}, nil
}

// ID returns the segment id.
func (s *Segment) ID() int64 {
	return s.id
}

// Path returns the segment file path.
func (s *Segment) Path() string {
	return s.file.Name()
}

// Append buffers one record and returns the position it will occupy.
func (s *Segment) Append(payload []byte) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Position{}, ErrClosed
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(payload))

	if _, err := s.writer.Write(header[:]); err != nil {
		return Position{}, fmt.Errorf("segment: write header: %w", err)
	}
	if _, err := s.writer.Write(payload); err != nil {
		return Position{}, fmt.Errorf("segment: write payload: %w", err)
	}

	pos := Position{Segment: s.id, Offset: s.offset}
	s.offset += int64(headerSize + len(payload))
	return pos, nil
}

// Sync flushes buffered records and makes them durable.
func (s *Segment) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.syncLocked()
}

func (s *Segment) syncLocked() error {
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("segment: flush: %w", err)
	}
	if err := datasync(s.file); err != nil {
		return fmt.Errorf("segment: sync: %w", err)
	}
	return nil
}

// Size returns the number of bytes appended so far, synced or not.
func (s *Segment) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Close syncs and closes the file.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	syncErr := s.syncLocked()
	closeErr := s.file.Close()
	return errors.Join(syncErr, closeErr)
}

// ReadAll returns every complete record in the segment file at path.
//
// A torn record at the tail is reported as ErrTruncated together with the
// records before it. A checksum mismatch stops the scan with ErrCorrupt.
func ReadAll(path string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var records [][]byte
	var offset int64

	for {
		var header [headerSize]byte
		if _, err := io.ReadFull(reader, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return records, fmt.Errorf("%w at offset %d", ErrTruncated, offset)
			}
			return records, fmt.Errorf("segment: read header: %w", err)
		}

		size := binary.LittleEndian.Uint32(header[0:4])
		sum := binary.LittleEndian.Uint32(header[4:8])

		payload := make([]byte, size)
		if _, err := io.ReadFull(reader, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return records, fmt.Errorf("%w at offset %d", ErrTruncated, offset)
			}
			return records, fmt.Errorf("segment: read payload: %w", err)
		}

		if crc32.ChecksumIEEE(payload) != sum {
			return records, fmt.Errorf("%w at offset %d", ErrCorrupt, offset)
		}

		records = append(records, payload)
		offset += int64(headerSize) + int64(size)
	}
}
