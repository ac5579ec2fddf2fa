// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrChainBroken reports that verification failed: a record's stored
// chain value does not match the recomputed one, a sequence number is
// out of order, or consecutive segments do not join.
var ErrChainBroken = errors.New("journal: hash chain broken")

// Reader iterates a journal in order, verifying the hash chain as it
// goes. It expects a quiesced journal; reading concurrently with a
// writer gives undefined results for the open tail.
type Reader struct {
	paths      []string // remaining segment files, tail last
	tail       string   // path of the open tail, "" if none
	records    []Record // verified records of the current segment
	next       int
	chain      Hash
	sequence   uint64
	started    bool
	haveRecord bool
}

// OpenReader opens a journal directory for reading. A directory with
// no segments yields io.EOF from the first Next call.
func OpenReader(directory string) (*Reader, error) {
	indices, err := scanSealed(directory)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	r := &Reader{}
	for _, index := range indices {
		r.paths = append(r.paths, filepath.Join(directory, sealedName(index)))
	}
	tailPath := filepath.Join(directory, tailName)
	switch _, err := os.Stat(tailPath); {
	case err == nil:
		r.paths = append(r.paths, tailPath)
		r.tail = tailPath
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("journal: %w", err)
	}
	return r, nil
}

// Next returns the next record. It returns io.EOF after the last
// record and an error wrapping ErrChainBroken when verification fails.
func (r *Reader) Next() (Record, error) {
	for r.next >= len(r.records) {
		if len(r.paths) == 0 {
			return Record{}, io.EOF
		}
		path := r.paths[0]
		r.paths = r.paths[1:]
		if err := r.loadSegment(path, path == r.tail); err != nil {
			return Record{}, err
		}
	}
	record := r.records[r.next]
	r.next++
	return record, nil
}

func (r *Reader) loadSegment(path string, isTail bool) error {
	header, body, err := readSegmentFile(path)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if isTail && header.compression != CompressionNone {
		return fmt.Errorf("journal: %s: open tail is compressed", path)
	}
	if !r.started {
		// The first available segment defines where verification
		// starts. Older segments may have been pruned, so the seed is
		// taken on trust; every chain value after it is checked.
		r.chain = header.seed
		r.started = true
	} else if header.seed != r.chain {
		return fmt.Errorf("journal: %s: segment does not continue the preceding chain: %w",
			path, ErrChainBroken)
	}

	frames, torn, err := splitFrames(body)
	if err != nil {
		return fmt.Errorf("journal: %s: %w", path, err)
	}
	if torn && !isTail {
		return fmt.Errorf("journal: %s: truncated record frame", path)
	}

	records := make([]Record, 0, len(frames))
	for _, frame := range frames {
		record, err := decodeFrame(frame)
		if err != nil {
			return fmt.Errorf("journal: %s: %w", path, err)
		}
		if !r.haveRecord {
			r.sequence = record.Sequence - 1
			r.haveRecord = true
		}
		chain, err := verifyRecord(r.chain, r.sequence+1, record)
		if err != nil {
			return fmt.Errorf("journal: %s: %w", path, err)
		}
		r.chain = chain
		r.sequence = record.Sequence
		records = append(records, Record{
			Sequence: record.Sequence,
			Event:    record.Event,
			Chain:    chain,
		})
	}
	r.records = records
	r.next = 0
	return nil
}

// Summary describes a verified journal.
type Summary struct {
	Records      uint64 `json:"records"`
	LastSequence uint64 `json:"last_sequence,omitempty"`
	Chain        Hash   `json:"chain"`
}

// Verify reads the whole journal and checks every record, returning
// the record count, the last sequence number and the chain head.
func Verify(directory string) (Summary, error) {
	reader, err := OpenReader(directory)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}
		if err != nil {
			return Summary{}, err
		}
		summary.Records++
		summary.LastSequence = record.Sequence
		summary.Chain = record.Chain
	}
}
