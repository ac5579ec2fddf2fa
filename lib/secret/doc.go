// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive material,
// in this project the age identity keys that open guardian-set
// backups.
//
// [Buffer] allocates memory outside the Go heap via
// mmap(MAP_ANONYMOUS), locks it into physical RAM with mlock so it is
// never swapped, and marks it MADV_DONTDUMP so it never appears in a
// core dump. On Close the memory is zeroed, unlocked, and unmapped.
// Because the region is invisible to the garbage collector it is never
// copied or relocated, so zeroing it actually destroys the secret.
//
// [New] allocates a zero-filled buffer, [NewFromBytes] moves existing
// bytes into protection (zeroing the source), and [ReadFromPath] loads
// a key file or stdin. Read the contents with [Buffer.Bytes]; reach
// for [Buffer.String] only at API boundaries that demand a string,
// since the string is a heap copy.
//
// Depends only on golang.org/x/sys/unix. lib/sealed builds on this
// package to hold age identity keys.
package secret
