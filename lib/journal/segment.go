// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Segment file layout. The header is fixed-size and uncompressed; the
// body after it is compressed according to the header's tag.
//
//	offset 0   magic "RJNL"
//	offset 4   format version (1)
//	offset 5   compression tag
//	offset 6   chain seed, the chain value before the first record
//	offset 38  uncompressed body size, big-endian; zero in the open tail
//	offset 46  body
//
// The body is a sequence of frames: a big-endian uint32 length followed
// by that many bytes of CBOR.
const (
	segmentMagic   = "RJNL"
	segmentVersion = 1
	headerSize     = 4 + 1 + 1 + 32 + 8

	// maxFrameBytes bounds a single record frame. A length prefix
	// beyond it means the file is corrupt, not that a record is huge.
	maxFrameBytes = 1 << 20
)

// tailName is the open segment the writer appends to. Sealed segments
// are named journal-%08d.seg, numbered from 1.
const (
	tailName     = "journal.open"
	lockName     = "journal.lock"
	sealedPrefix = "journal-"
	sealedSuffix = ".seg"
)

func sealedName(index uint64) string {
	return fmt.Sprintf("%s%08d%s", sealedPrefix, index, sealedSuffix)
}

// parseSealedName extracts the index from a sealed segment file name.
func parseSealedName(name string) (uint64, bool) {
	if !strings.HasPrefix(name, sealedPrefix) || !strings.HasSuffix(name, sealedSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, sealedPrefix), sealedSuffix)
	if len(digits) < 8 {
		return 0, false
	}
	index, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || index == 0 {
		return 0, false
	}
	return index, true
}

// scanSealed returns the indices of all sealed segments in the
// directory, ascending.
func scanSealed(directory string) ([]uint64, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	var indices []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if index, ok := parseSealedName(entry.Name()); ok {
			indices = append(indices, index)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices, nil
}

type segmentHeader struct {
	compression CompressionTag
	seed        Hash
	bodySize    uint64
}

func encodeHeader(header segmentHeader) [headerSize]byte {
	var out [headerSize]byte
	copy(out[0:4], segmentMagic)
	out[4] = segmentVersion
	out[5] = byte(header.compression)
	copy(out[6:38], header.seed[:])
	binary.BigEndian.PutUint64(out[38:46], header.bodySize)
	return out
}

func parseHeader(data []byte) (segmentHeader, error) {
	if len(data) < headerSize {
		return segmentHeader{}, fmt.Errorf("segment header truncated at %d bytes", len(data))
	}
	if string(data[0:4]) != segmentMagic {
		return segmentHeader{}, fmt.Errorf("bad segment magic %q", data[0:4])
	}
	if data[4] != segmentVersion {
		return segmentHeader{}, fmt.Errorf("unsupported segment version %d", data[4])
	}
	var header segmentHeader
	header.compression = CompressionTag(data[5])
	copy(header.seed[:], data[6:38])
	header.bodySize = binary.BigEndian.Uint64(data[38:46])
	return header, nil
}

// readSegmentFile loads a segment file and returns its header and
// decompressed body.
func readSegmentFile(path string) (segmentHeader, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return segmentHeader{}, nil, err
	}
	header, err := parseHeader(raw)
	if err != nil {
		return segmentHeader{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	body, err := decompressBody(raw[headerSize:], header.compression, int(header.bodySize))
	if err != nil {
		return segmentHeader{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return header, body, nil
}

// splitFrames cuts a body into record frames. A truncated final frame
// is reported through torn rather than as an error: the open tail
// legitimately ends mid-frame after a crash.
func splitFrames(body []byte) (frames [][]byte, torn bool, err error) {
	offset := 0
	for offset < len(body) {
		remaining := len(body) - offset
		if remaining < 4 {
			return frames, true, nil
		}
		length := int(binary.BigEndian.Uint32(body[offset : offset+4]))
		if length == 0 || length > maxFrameBytes {
			return nil, false, fmt.Errorf("invalid frame length %d at body offset %d", length, offset)
		}
		if length > remaining-4 {
			return frames, true, nil
		}
		frames = append(frames, body[offset+4:offset+4+length])
		offset += 4 + length
	}
	return frames, false, nil
}
