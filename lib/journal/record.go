// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// Record is one journal entry: a registry event together with its
// position and the chain value that seals it.
type Record struct {
	Sequence uint64
	Event    guardian.Event
	Chain    Hash
}

// diskRecord is the CBOR shape written to segment bodies.
type diskRecord struct {
	Sequence uint64         `cbor:"sequence"`
	Event    guardian.Event `cbor:"event"`
	Chain    []byte         `cbor:"chain"`
}

func decodeFrame(frame []byte) (diskRecord, error) {
	var record diskRecord
	if err := codec.Unmarshal(frame, &record); err != nil {
		return diskRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if len(record.Chain) != len(Hash{}) {
		return diskRecord{}, fmt.Errorf("decode record %d: chain value is %d bytes",
			record.Sequence, len(record.Chain))
	}
	return record, nil
}

// verifyRecord checks a decoded record against the running chain and
// the expected sequence number, returning the extended chain value.
func verifyRecord(previous Hash, wantSequence uint64, record diskRecord) (Hash, error) {
	if record.Sequence != wantSequence {
		return Hash{}, fmt.Errorf("record %d: expected sequence %d: %w",
			record.Sequence, wantSequence, ErrChainBroken)
	}
	eventBytes, err := codec.Marshal(record.Event)
	if err != nil {
		return Hash{}, fmt.Errorf("record %d: re-encode event: %w", record.Sequence, err)
	}
	chain := chainDigest(previous, recordDigest(record.Sequence, eventBytes))
	if !bytes.Equal(chain[:], record.Chain) {
		return Hash{}, fmt.Errorf("record %d: %w", record.Sequence, ErrChainBroken)
	}
	return chain, nil
}
