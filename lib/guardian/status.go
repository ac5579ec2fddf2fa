// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import "fmt"

// Status is the lifecycle state of a guardian record.
type Status uint8

const (
	// StatusNone is the zero value, meaning no record exists. A live
	// record never carries this status; absence from the store and
	// StatusNone are the same condition.
	StatusNone Status = 0

	// StatusRequested means the guardian has been added for the
	// account but has not yet confirmed. Requested weight does not
	// count toward the accepted weight.
	StatusRequested Status = 1

	// StatusAccepted means the guardian has confirmed and its weight
	// counts toward the account's accepted weight.
	StatusAccepted Status = 2

	// StatusRevoked means the guardian's confirmation has been
	// withdrawn. The record remains live (it still counts toward
	// guardian count and total weight) but contributes nothing to the
	// accepted weight.
	StatusRevoked Status = 3
)

var statusNames = map[Status]string{
	StatusNone:      "none",
	StatusRequested: "requested",
	StatusAccepted:  "accepted",
	StatusRevoked:   "revoked",
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// ParseStatus converts a status name back to its Status value.
func ParseStatus(name string) (Status, error) {
	for status, statusName := range statusNames {
		if statusName == name {
			return status, nil
		}
	}
	return StatusNone, fmt.Errorf("unknown guardian status %q", name)
}

// MarshalText implements encoding.TextMarshaler so statuses serialize
// as their names in JSON and CBOR.
func (s Status) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown guardian status %d", uint8(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
