// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCompressionRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte("guardian registry event record "), 200)

	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			compressed, used, err := compressBody(body, tag)
			if err != nil {
				t.Fatalf("compressBody: %v", err)
			}
			if used != tag {
				t.Fatalf("used tag %s, want %s", used, tag)
			}
			if tag != CompressionNone && len(compressed) >= len(body) {
				t.Fatalf("compression did not shrink a repetitive body")
			}

			restored, err := decompressBody(compressed, used, len(body))
			if err != nil {
				t.Fatalf("decompressBody: %v", err)
			}
			if !bytes.Equal(restored, body) {
				t.Fatalf("round trip changed the body")
			}
		})
	}
}

func TestCompressionIncompressibleFallsBack(t *testing.T) {
	body := make([]byte, 2048)
	rand.New(rand.NewSource(1)).Read(body)

	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			compressed, used, err := compressBody(body, tag)
			if err != nil {
				t.Fatalf("compressBody: %v", err)
			}
			if used != CompressionNone {
				t.Fatalf("used tag %s, want none for random bytes", used)
			}
			if !bytes.Equal(compressed, body) {
				t.Fatalf("fallback changed the body")
			}
		})
	}
}

func TestCompressionTagStrings(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompressionTag(tag.String())
		if err != nil {
			t.Fatalf("ParseCompressionTag(%s): %v", tag, err)
		}
		if parsed != tag {
			t.Fatalf("round trip changed tag %s", tag)
		}
	}

	if got := CompressionTag(9).String(); got != "unknown(9)" {
		t.Fatalf("unknown tag string = %q", got)
	}
	if _, err := ParseCompressionTag("bg4_lz4"); err == nil {
		t.Fatalf("unsupported tag name accepted")
	}
	if _, err := ParseCompressionTag(""); err == nil {
		t.Fatalf("empty tag name accepted")
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	body := bytes.Repeat([]byte("abc"), 500)
	compressed, used, err := compressBody(body, CompressionZstd)
	if err != nil {
		t.Fatalf("compressBody: %v", err)
	}
	if _, err := decompressBody(compressed, used, len(body)+1); err == nil {
		t.Fatalf("size mismatch accepted")
	}

	if _, err := decompressBody(body, CompressionNone, len(body)+1); err == nil {
		t.Fatalf("raw size mismatch accepted")
	}
}
