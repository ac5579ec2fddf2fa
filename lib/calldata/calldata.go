// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package calldata

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// Selector is a 4-byte function selector: the first four bytes of the
// Keccak-256 hash of the canonical signature string.
type Selector [4]byte

// SwapOwnerSignature is the canonical signature of the owner-rotation
// function a recovery executes. The operands are (prevOwner, oldOwner,
// newOwner): the predecessor in the linked owner list, the owner being
// replaced, and its replacement.
const SwapOwnerSignature = "swapOwner(address,address,address)"

// SelectorFor derives the selector for a canonical signature string.
func SelectorFor(signature string) Selector {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	var selector Selector
	copy(selector[:], hash.Sum(nil)[:4])
	return selector
}

// SwapOwnerSelector is the fixed selector for SwapOwnerSignature.
var SwapOwnerSelector = SelectorFor(SwapOwnerSignature)

// String returns the selector as 8 hex digits with an 0x prefix.
func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// operandSize is the width of one encoded operand. Address operands
// are left-padded with zeros to this width.
const operandSize = 32

// Encode assembles a call payload: the selector followed by each
// address operand left-padded to 32 bytes. The result is the exact
// byte sequence the target account receives when the call executes.
func Encode(selector Selector, operands ...addr.Address) []byte {
	payload := make([]byte, 4+operandSize*len(operands))
	copy(payload, selector[:])
	for i, operand := range operands {
		// Left-pad: the 20 address bytes occupy the low end of the
		// 32-byte operand slot.
		offset := 4 + operandSize*i + (operandSize - addr.Length)
		copy(payload[offset:], operand.Bytes())
	}
	return payload
}

// SwapOwnerCall builds the swapOwner payload for replacing oldOwner
// with newOwner, given the resolved predecessor.
func SwapOwnerCall(prevOwner, oldOwner, newOwner addr.Address) []byte {
	return Encode(SwapOwnerSelector, prevOwner, oldOwner, newOwner)
}

// Digest is a 32-byte Keccak-256 commitment digest.
type Digest [32]byte

// DigestOf computes the Keccak-256 digest over the concatenation of
// the given byte slices. Callers are responsible for unambiguous
// framing; the recovery commitment concatenates a fixed-width address
// with a self-delimiting call payload, so no length prefixes are
// needed.
func DigestOf(parts ...[]byte) Digest {
	hash := sha3.NewLegacyKeccak256()
	for _, part := range parts {
		hash.Write(part)
	}
	var digest Digest
	copy(digest[:], hash.Sum(nil))
	return digest
}

// String returns the hex-encoded digest with an 0x prefix. This is
// the canonical format used in socket responses, the audit journal,
// and CLI output.
func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is all zeros (unset).
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(data []byte) error {
	parsed, err := ParseDigest(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest parses a 0x-prefixed 64-digit hex string into a Digest.
func ParseDigest(raw string) (Digest, error) {
	var digest Digest
	if len(raw) != 2+2*len(digest) {
		return digest, fmt.Errorf("digest %q is %d characters, want %d", raw, len(raw), 2+2*len(digest))
	}
	if raw[0] != '0' || (raw[1] != 'x' && raw[1] != 'X') {
		return digest, fmt.Errorf("digest %q missing 0x prefix", raw)
	}
	decoded, err := hex.DecodeString(raw[2:])
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	copy(digest[:], decoded)
	return digest, nil
}
