// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package addr_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/soloking1412/email-recovery/lib/addr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "lowercase", raw: "0x1111111111111111111111111111111111111111"},
		{name: "uppercase-digits", raw: "0xABCDEF1111111111111111111111111111111111"},
		{name: "uppercase-prefix", raw: "0X1111111111111111111111111111111111111111"},
		{name: "zero-address", raw: "0x0000000000000000000000000000000000000000"},
		{name: "empty", raw: "", wantErr: true},
		{name: "no-prefix", raw: "1111111111111111111111111111111111111111", wantErr: true},
		{name: "too-short", raw: "0x1111", wantErr: true},
		{name: "too-long", raw: "0x111111111111111111111111111111111111111111", wantErr: true},
		{name: "non-hex", raw: "0xzz11111111111111111111111111111111111111", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, err := addr.Parse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", address)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := address.String(); got != strings.ToLower(tt.raw) {
				t.Errorf("String() = %q, want canonical lowercase of %q", got, tt.raw)
			}
		})
	}
}

func TestZeroAddress(t *testing.T) {
	var zero addr.Address
	if !zero.IsZero() {
		t.Error("zero value IsZero() = false")
	}
	if zero.String() != "0x0000000000000000000000000000000000000000" {
		t.Errorf("zero String() = %q", zero.String())
	}

	// The zero address parses: rejecting it is the registry's job,
	// not the parser's.
	parsed, err := addr.Parse("0x0000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("Parse(zero): %v", err)
	}
	if !parsed.IsZero() {
		t.Error("parsed zero address IsZero() = false")
	}
}

func TestSentinelOwner(t *testing.T) {
	if addr.SentinelOwner.String() != "0x0000000000000000000000000000000000000001" {
		t.Errorf("SentinelOwner = %q", addr.SentinelOwner)
	}
	if addr.SentinelOwner.IsZero() {
		t.Error("SentinelOwner.IsZero() = true")
	}
}

func TestFromBytes(t *testing.T) {
	address := addr.MustParse("0x00112233445566778899aabbccddeeff00112233")
	round, err := addr.FromBytes(address.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if round != address {
		t.Errorf("round-trip = %v, want %v", round, address)
	}

	if _, err := addr.FromBytes(make([]byte, 19)); err == nil {
		t.Error("FromBytes(19 bytes) succeeded, want error")
	}
}

func TestTextRoundTrip(t *testing.T) {
	address := addr.MustParse("0xAbCd00000000000000000000000000000000EF99")

	data, err := json.Marshal(address)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"0xabcd00000000000000000000000000000000ef99"` {
		t.Errorf("marshal = %s", data)
	}

	var decoded addr.Address
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != address {
		t.Errorf("decoded = %v, want %v", decoded, address)
	}

	// Empty text decodes to the zero address.
	var empty addr.Address
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil): %v", err)
	}
	if !empty.IsZero() {
		t.Error("UnmarshalText(nil) did not produce the zero address")
	}
}

func TestCompareAndSort(t *testing.T) {
	low := addr.MustParse("0x0000000000000000000000000000000000000001")
	mid := addr.MustParse("0x0000000000000000000000000000000000000002")
	high := addr.MustParse("0xff00000000000000000000000000000000000000")

	if low.Compare(mid) >= 0 {
		t.Error("low >= mid")
	}
	if high.Compare(mid) <= 0 {
		t.Error("high <= mid")
	}
	if mid.Compare(mid) != 0 {
		t.Error("mid != mid")
	}

	addresses := []addr.Address{high, low, mid}
	addr.Sort(addresses)
	want := []addr.Address{low, mid, high}
	for i := range want {
		if addresses[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, addresses[i], want[i])
		}
	}
}
