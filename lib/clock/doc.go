// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now directly. In production, Real() provides the standard library
// behavior. In tests, Fake() provides a deterministic clock that advances
// only when Advance or Set is called, so event timestamps and journal
// record times are reproducible.
//
// # Wiring Pattern
//
// Add a Clock field to structs that read time:
//
//	type Registry struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	r := guardian.NewRegistry(store, guardian.WithClock(clock.Real()))
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	r := guardian.NewRegistry(store, guardian.WithClock(c))
//	// ... mutate ...
//	c.Advance(5 * time.Second)
package clock
