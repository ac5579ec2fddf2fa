// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package addr

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
)

// Length is the size of an address in bytes.
const Length = 20

// Address is a validated 20-byte account identifier (e.g.,
// "0x4242…4242"). The zero value is the zero address; see the package
// documentation for its semantics.
type Address struct {
	raw [Length]byte
}

// SentinelOwner is the linked-list head marker used by owner storage.
// It is never a real owner: it stands in as the predecessor when the
// owner being replaced is the first entry of the list.
var SentinelOwner = Address{raw: [Length]byte{19: 0x01}}

// Parse validates and wraps a 0x-prefixed hex address string. The hex
// digits are accepted in either case; the canonical form produced by
// String is lowercase. Returns an error if the prefix is missing, the
// length is wrong, or a digit is not hex.
func Parse(raw string) (Address, error) {
	if len(raw) != 2+2*Length {
		return Address{}, fmt.Errorf("address %q is %d characters, want %d", raw, len(raw), 2+2*Length)
	}
	if raw[0] != '0' || (raw[1] != 'x' && raw[1] != 'X') {
		return Address{}, fmt.Errorf("address %q missing 0x prefix", raw)
	}
	decoded, err := hex.DecodeString(raw[2:])
	if err != nil {
		return Address{}, fmt.Errorf("parsing address %q: %w", raw, err)
	}
	var address Address
	copy(address.raw[:], decoded)
	return address, nil
}

// MustParse is Parse for compile-time-known addresses. Panics on
// invalid input. Use in tests and package-level constants only.
func MustParse(raw string) Address {
	address, err := Parse(raw)
	if err != nil {
		panic("addr.MustParse: " + err.Error())
	}
	return address
}

// FromBytes constructs an Address from exactly 20 raw bytes.
func FromBytes(raw []byte) (Address, error) {
	if len(raw) != Length {
		return Address{}, fmt.Errorf("address is %d bytes, want %d", len(raw), Length)
	}
	var address Address
	copy(address.raw[:], raw)
	return address, nil
}

// String returns the canonical form: "0x" followed by 40 lowercase hex
// digits. The zero address renders as "0x0000…0000", not as an empty
// string — every address has exactly one canonical form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a.raw[:])
}

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool {
	return a.raw == [Length]byte{}
}

// Bytes returns a copy of the 20 raw bytes.
func (a Address) Bytes() []byte {
	raw := make([]byte, Length)
	copy(raw, a.raw[:])
	return raw
}

// Compare orders addresses bytewise. Used for deterministic
// enumeration of guardian sets.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a.raw[:], other.raw[:])
}

// MarshalText implements encoding.TextMarshaler for JSON, CBOR, and
// other text-based serialization formats.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// address format. An empty input produces the zero address, so
// omitted optional fields decode cleanly.
func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sort sorts a slice of addresses in place in bytewise order.
func Sort(addresses []Address) {
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].Compare(addresses[j]) < 0
	})
}
