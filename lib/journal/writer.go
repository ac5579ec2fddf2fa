// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// ErrClosed is returned by operations on a closed writer.
var ErrClosed = errors.New("journal: writer is closed")

const defaultSegmentBytes = 1 << 20

// Writer appends events to a journal directory. One writer owns the
// directory at a time, enforced with an advisory lock. Methods are safe
// for concurrent use.
type Writer struct {
	directory    string
	compression  CompressionTag
	segmentBytes int

	mu        sync.Mutex
	lockFile  *os.File
	file      *os.File // open tail, nil between segments
	buffered  *bufio.Writer
	sequence  uint64 // last assigned sequence number
	chain     Hash   // chain value after the last record
	seed      Hash   // chain value at the start of the open tail
	nextIndex uint64 // index the next sealed segment gets
	count     int    // records in the open tail
	bodyBytes int    // body bytes in the open tail
	failed    error  // sticky first I/O failure
	closed    bool
}

// WriterOption adjusts a Writer.
type WriterOption func(*Writer)

// WithCompression sets the algorithm used when sealing segments. The
// default is zstd. Segments that do not shrink are stored raw
// regardless of the setting.
func WithCompression(tag CompressionTag) WriterOption {
	return func(w *Writer) { w.compression = tag }
}

// WithSegmentBytes sets the body size at which the open segment is
// sealed automatically. Values below 4 KiB are raised to 4 KiB.
func WithSegmentBytes(n int) WriterOption {
	return func(w *Writer) { w.segmentBytes = n }
}

// OpenWriter opens a journal directory for appending, creating the
// directory if needed. An open tail left behind by a crash is
// recovered: a torn trailing record is discarded, everything before it
// is verified and kept.
func OpenWriter(directory string, options ...WriterOption) (*Writer, error) {
	w := &Writer{
		directory:    directory,
		compression:  CompressionZstd,
		segmentBytes: defaultSegmentBytes,
	}
	for _, option := range options {
		option(w)
	}
	if w.segmentBytes < 4096 {
		w.segmentBytes = 4096
	}

	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	lockFile, err := os.OpenFile(filepath.Join(directory, lockName), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("journal: directory %s is locked by another writer: %w", directory, err)
	}
	w.lockFile = lockFile

	if err := w.recover(); err != nil {
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
		return nil, err
	}
	return w, nil
}

// recover rebuilds the writer's chain and sequence state from the
// segments already on disk.
func (w *Writer) recover() error {
	indices, err := scanSealed(w.directory)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	w.nextIndex = 1
	if len(indices) > 0 {
		last := indices[len(indices)-1]
		w.nextIndex = last + 1
		chain, sequence, err := replaySegment(filepath.Join(w.directory, sealedName(last)))
		if err != nil {
			return err
		}
		w.chain, w.sequence = chain, sequence
	}
	w.seed = w.chain

	tailPath := filepath.Join(w.directory, tailName)
	switch _, err := os.Stat(tailPath); {
	case err == nil:
		return w.recoverTail(tailPath, len(indices) > 0)
	case os.IsNotExist(err):
		return nil
	default:
		return fmt.Errorf("journal: %w", err)
	}
}

// replaySegment verifies a sealed segment and returns the chain value
// and sequence number after its last record.
func replaySegment(path string) (Hash, uint64, error) {
	header, body, err := readSegmentFile(path)
	if err != nil {
		return Hash{}, 0, fmt.Errorf("journal: %w", err)
	}
	frames, torn, err := splitFrames(body)
	if err != nil {
		return Hash{}, 0, fmt.Errorf("journal: %s: %w", path, err)
	}
	if torn {
		return Hash{}, 0, fmt.Errorf("journal: %s: truncated record frame", path)
	}
	if len(frames) == 0 {
		return Hash{}, 0, fmt.Errorf("journal: %s: sealed segment has no records", path)
	}

	chain := header.seed
	var sequence uint64
	for i, frame := range frames {
		record, err := decodeFrame(frame)
		if err != nil {
			return Hash{}, 0, fmt.Errorf("journal: %s: %w", path, err)
		}
		if i == 0 {
			sequence = record.Sequence - 1
		}
		chain, err = verifyRecord(chain, sequence+1, record)
		if err != nil {
			return Hash{}, 0, fmt.Errorf("journal: %s: %w", path, err)
		}
		sequence = record.Sequence
	}
	return chain, sequence, nil
}

// recoverTail verifies the open tail, truncates a torn trailing frame
// and reopens the file for appending.
func (w *Writer) recoverTail(path string, haveSealed bool) error {
	header, body, err := readSegmentFile(path)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if header.compression != CompressionNone {
		return fmt.Errorf("journal: %s: open tail is compressed", path)
	}
	if haveSealed && header.seed != w.chain {
		return fmt.Errorf("journal: %s: tail does not continue the last sealed segment: %w",
			path, ErrChainBroken)
	}
	if !haveSealed {
		w.chain = header.seed
	}
	w.seed = header.seed

	frames, torn, err := splitFrames(body)
	if err != nil {
		return fmt.Errorf("journal: %s: %w", path, err)
	}
	good := 0
	for i, frame := range frames {
		record, err := decodeFrame(frame)
		if err != nil {
			// A complete frame that does not decode is corruption,
			// not a torn write: frames are written front to back, so
			// a crash can only truncate the final one.
			return fmt.Errorf("journal: %s: %w", path, err)
		}
		if i == 0 && !haveSealed {
			w.sequence = record.Sequence - 1
		}
		w.chain, err = verifyRecord(w.chain, w.sequence+1, record)
		if err != nil {
			return fmt.Errorf("journal: %s: %w", path, err)
		}
		w.sequence = record.Sequence
		good += 4 + len(frame)
	}
	if torn {
		if err := os.Truncate(path, int64(headerSize+good)); err != nil {
			return fmt.Errorf("journal: truncate torn tail: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	w.file = file
	w.buffered = bufio.NewWriter(file)
	w.count = len(frames)
	w.bodyBytes = good
	return nil
}

// Append adds one event to the journal and returns its sequence
// number. The record is buffered; call Flush to make it durable or
// Rotate to seal the segment immediately.
func (w *Writer) Append(event guardian.Event) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	if w.failed != nil {
		return 0, w.failed
	}

	sequence := w.sequence + 1
	eventBytes, err := codec.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("journal: encode event: %w", err)
	}
	chain := chainDigest(w.chain, recordDigest(sequence, eventBytes))
	frame, err := codec.Marshal(diskRecord{
		Sequence: sequence,
		Event:    event,
		Chain:    chain[:],
	})
	if err != nil {
		return 0, fmt.Errorf("journal: encode record: %w", err)
	}

	if w.file == nil {
		if err := w.createTail(); err != nil {
			return 0, err
		}
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(frame)))
	if _, err := w.buffered.Write(length[:]); err != nil {
		return 0, w.fail(err)
	}
	if _, err := w.buffered.Write(frame); err != nil {
		return 0, w.fail(err)
	}

	w.sequence = sequence
	w.chain = chain
	w.count++
	w.bodyBytes += 4 + len(frame)

	if w.bodyBytes >= w.segmentBytes {
		if err := w.rotateLocked(); err != nil {
			return 0, err
		}
	}
	return sequence, nil
}

// fail records the first I/O failure and returns it. After a failure
// the tail may hold a partial frame, so all further writes are
// refused; reopening the journal runs recovery.
func (w *Writer) fail(err error) error {
	if w.failed == nil {
		w.failed = fmt.Errorf("journal: %w", err)
	}
	return w.failed
}

func (w *Writer) createTail() error {
	path := filepath.Join(w.directory, tailName)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return w.fail(err)
	}
	header := encodeHeader(segmentHeader{compression: CompressionNone, seed: w.chain})
	if _, err := file.Write(header[:]); err != nil {
		file.Close()
		return w.fail(err)
	}
	w.file = file
	w.buffered = bufio.NewWriter(file)
	w.seed = w.chain
	w.count = 0
	w.bodyBytes = 0
	return nil
}

// Flush writes buffered records to the open tail and syncs it to
// stable storage. The segment stays open for further appends.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.failed != nil {
		return w.failed
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if w.file == nil {
		return nil
	}
	if err := w.buffered.Flush(); err != nil {
		return w.fail(err)
	}
	if err := w.file.Sync(); err != nil {
		return w.fail(err)
	}
	return nil
}

// Rotate seals the open segment: the tail body is compressed and
// written as the next numbered segment in one atomic step. A tail with
// no records is left alone. Rotation also happens automatically when
// the open segment reaches the configured size.
func (w *Writer) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.failed != nil {
		return w.failed
	}
	return w.rotateLocked()
}

func (w *Writer) rotateLocked() error {
	if w.count == 0 {
		return nil
	}
	if err := w.flushLocked(); err != nil {
		return err
	}

	tailPath := filepath.Join(w.directory, tailName)
	raw, err := os.ReadFile(tailPath)
	if err != nil {
		return w.fail(err)
	}
	body := raw[headerSize:]
	compressed, tag, err := compressBody(body, w.compression)
	if err != nil {
		return w.fail(err)
	}
	header := encodeHeader(segmentHeader{
		compression: tag,
		seed:        w.seed,
		bodySize:    uint64(len(body)),
	})

	sealedPath := filepath.Join(w.directory, sealedName(w.nextIndex))
	if err := writeFileAtomic(sealedPath, header[:], compressed); err != nil {
		return w.fail(err)
	}

	w.file.Close()
	if err := os.Remove(tailPath); err != nil {
		return w.fail(err)
	}
	if err := syncDir(w.directory); err != nil {
		return w.fail(err)
	}

	w.nextIndex++
	w.file = nil
	w.buffered = nil
	w.seed = w.chain
	w.count = 0
	w.bodyBytes = 0
	return nil
}

// Close seals any buffered records and releases the directory lock.
// Closing an already closed writer is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var first error
	if w.failed == nil {
		first = w.rotateLocked()
	} else {
		first = w.failed
		// Push buffered bytes out so recovery can salvage them.
		if w.buffered != nil {
			w.buffered.Flush()
		}
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
		w.buffered = nil
	}
	unix.Flock(int(w.lockFile.Fd()), unix.LOCK_UN)
	if err := w.lockFile.Close(); err != nil && first == nil {
		first = fmt.Errorf("journal: %w", err)
	}
	return first
}

// Sequence returns the sequence number of the most recently appended
// record, zero if the journal is empty.
func (w *Writer) Sequence() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sequence
}

// Chain returns the chain value after the most recently appended
// record. Compare it against the head reported by Verify to detect
// truncation of the on-disk journal.
func (w *Writer) Chain() Hash {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chain
}

// Emit implements guardian.Sink by appending the event. A failed
// append is sticky and surfaces on the next Append, Flush, Rotate or
// Close call.
func (w *Writer) Emit(event guardian.Event) {
	if _, err := w.Append(event); err != nil {
		w.mu.Lock()
		if w.failed == nil {
			w.failed = err
		}
		w.mu.Unlock()
	}
}

// writeFileAtomic writes parts to path through a temporary file,
// syncing before the rename so a crash never leaves a half-written
// segment under the final name.
func writeFileAtomic(path string, parts ...[]byte) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	for _, part := range parts {
		if _, err := file.Write(part); err != nil {
			file.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func syncDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	return dir.Sync()
}
