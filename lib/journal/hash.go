// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 256-bit BLAKE3 output.
type Hash [32]byte

// Keyed-hash domains. Each use of BLAKE3 in the journal has its own
// 32-byte key (ASCII name, zero padded) so a value computed in one
// domain can never collide with a value from another.
var (
	// recordKey digests a single record: its sequence number plus the
	// deterministic CBOR encoding of its event.
	recordKey = [32]byte{
		'r', 'e', 'c', 'o', 'v', 'e', 'r', 'y', '.',
		'j', 'o', 'u', 'r', 'n', 'a', 'l', '.',
		'r', 'e', 'c', 'o', 'r', 'd',
	}

	// chainKey binds a record digest to the chain value of its
	// predecessor.
	chainKey = [32]byte{
		'r', 'e', 'c', 'o', 'v', 'e', 'r', 'y', '.',
		'j', 'o', 'u', 'r', 'n', 'a', 'l', '.',
		'c', 'h', 'a', 'i', 'n',
	}
)

// keyedHash computes the keyed BLAKE3 hash of the concatenated parts.
func keyedHash(key [32]byte, parts ...[]byte) Hash {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		// NewKeyed fails only on a wrong key length, and the keys
		// here are compile-time 32-byte constants.
		panic("journal: keyed hasher construction failed: " + err.Error())
	}
	for _, part := range parts {
		hasher.Write(part)
	}
	var out Hash
	hasher.Sum(out[:0])
	return out
}

// recordDigest hashes one record's identity: the sequence number in
// big-endian followed by the encoded event.
func recordDigest(sequence uint64, eventBytes []byte) Hash {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	return keyedHash(recordKey, seq[:], eventBytes)
}

// chainDigest extends the chain by one record.
func chainDigest(previous, record Hash) Hash {
	return keyedHash(chainKey, previous[:], record[:])
}

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses the lowercase hex form produced by String.
func ParseHash(text string) (Hash, error) {
	var h Hash
	if len(text) != hex.EncodedLen(len(h)) {
		return Hash{}, fmt.Errorf("journal: hash must be %d hex characters, got %d",
			hex.EncodedLen(len(h)), len(text))
	}
	if _, err := hex.Decode(h[:], []byte(text)); err != nil {
		return Hash{}, fmt.Errorf("journal: invalid hash: %w", err)
	}
	return h, nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
