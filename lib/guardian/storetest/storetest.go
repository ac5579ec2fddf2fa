// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest runs the guardian.Store contract against an
// implementation. Every store, in-memory or durable, must pass the
// same suite: the registry's error taxonomy is built on the existence
// signals these operations return.
//
//	func TestMyStore(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T) guardian.Store {
//	        return NewMyStore(t)
//	    })
//	}
//
// The factory is called once per subtest and must return an empty
// store.
package storetest

import (
	"testing"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

func address(b byte) addr.Address {
	raw := make([]byte, addr.Length)
	raw[addr.Length-1] = b
	a, err := addr.FromBytes(raw)
	if err != nil {
		panic(err)
	}
	return a
}

var (
	account      = address(0xA0)
	otherAccount = address(0xB0)
	alice        = address(0x01)
	bob          = address(0x02)
	carol        = address(0x03)
)

// Run executes the full Store contract suite against stores built by
// factory.
func Run(t *testing.T, factory func(t *testing.T) guardian.Store) {
	t.Run("GetAbsent", func(t *testing.T) {
		store := factory(t)

		record, ok := store.Get(account, alice)
		if ok {
			t.Error("Get on empty store reported existence")
		}
		if record != (guardian.Record{}) {
			t.Errorf("Get on empty store = %+v, want zero record", record)
		}
	})

	t.Run("SetReportsExistence", func(t *testing.T) {
		store := factory(t)

		first := guardian.Record{Status: guardian.StatusRequested, Weight: 2}
		if existed := store.Set(account, alice, first); existed {
			t.Error("first Set reported prior existence")
		}
		got, ok := store.Get(account, alice)
		if !ok || got != first {
			t.Fatalf("Get after Set = %+v/%v, want %+v/true", got, ok, first)
		}

		second := guardian.Record{Status: guardian.StatusAccepted, Weight: 2}
		if existed := store.Set(account, alice, second); !existed {
			t.Error("overwriting Set did not report prior existence")
		}
		got, _ = store.Get(account, alice)
		if got != second {
			t.Errorf("Get after overwrite = %+v, want %+v", got, second)
		}
	})

	t.Run("RemoveReturnsRecord", func(t *testing.T) {
		store := factory(t)

		record := guardian.Record{Status: guardian.StatusAccepted, Weight: 7}
		store.Set(account, alice, record)

		removed, ok := store.Remove(account, alice)
		if !ok || removed != record {
			t.Fatalf("Remove = %+v/%v, want %+v/true", removed, ok, record)
		}
		if _, ok := store.Get(account, alice); ok {
			t.Error("record still present after Remove")
		}
		if _, ok := store.Remove(account, alice); ok {
			t.Error("second Remove reported existence")
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		store := factory(t)

		store.Set(account, alice, guardian.Record{Status: guardian.StatusRequested, Weight: 1})
		store.Set(account, bob, guardian.Record{Status: guardian.StatusAccepted, Weight: 2})
		store.Set(otherAccount, carol, guardian.Record{Status: guardian.StatusRequested, Weight: 3})

		if removed := store.RemoveAll(account); removed != 2 {
			t.Errorf("RemoveAll = %d, want 2", removed)
		}
		if count := store.Count(account); count != 0 {
			t.Errorf("Count after RemoveAll = %d, want 0", count)
		}
		// Other accounts are untouched.
		if _, ok := store.Get(otherAccount, carol); !ok {
			t.Error("RemoveAll leaked into another account")
		}
		if removed := store.RemoveAll(account); removed != 0 {
			t.Errorf("RemoveAll on empty account = %d, want 0", removed)
		}
	})

	t.Run("GuardiansSorted", func(t *testing.T) {
		store := factory(t)

		// Insert out of order; enumeration must come back sorted.
		store.Set(account, carol, guardian.Record{Status: guardian.StatusRequested, Weight: 1})
		store.Set(account, alice, guardian.Record{Status: guardian.StatusRequested, Weight: 1})
		store.Set(account, bob, guardian.Record{Status: guardian.StatusRequested, Weight: 1})

		guardians := store.Guardians(account)
		want := []addr.Address{alice, bob, carol}
		if len(guardians) != len(want) {
			t.Fatalf("Guardians length = %d, want %d", len(guardians), len(want))
		}
		for i := range want {
			if guardians[i] != want[i] {
				t.Errorf("Guardians[%d] = %s, want %s", i, guardians[i], want[i])
			}
		}

		if guardians := store.Guardians(otherAccount); len(guardians) != 0 {
			t.Errorf("Guardians for untouched account = %v, want empty", guardians)
		}
	})

	t.Run("Count", func(t *testing.T) {
		store := factory(t)

		if count := store.Count(account); count != 0 {
			t.Errorf("Count on empty = %d, want 0", count)
		}
		store.Set(account, alice, guardian.Record{Status: guardian.StatusRequested, Weight: 1})
		store.Set(account, bob, guardian.Record{Status: guardian.StatusRequested, Weight: 1})
		store.Set(account, alice, guardian.Record{Status: guardian.StatusRevoked, Weight: 1})
		if count := store.Count(account); count != 2 {
			t.Errorf("Count after two inserts and an overwrite = %d, want 2", count)
		}
	})

	t.Run("ConfigRoundTrip", func(t *testing.T) {
		store := factory(t)

		if _, ok := store.Config(account); ok {
			t.Error("Config on empty store reported existence")
		}

		config := guardian.Config{GuardianCount: 3, TotalWeight: 6, AcceptedWeight: 4, Threshold: 5}
		store.SetConfig(account, config)
		got, ok := store.Config(account)
		if !ok || got != config {
			t.Fatalf("Config = %+v/%v, want %+v/true", got, ok, config)
		}

		// The zero config is absence.
		store.SetConfig(account, guardian.Config{})
		if got, ok := store.Config(account); ok || got != (guardian.Config{}) {
			t.Errorf("Config after zero SetConfig = %+v/%v, want zero/false", got, ok)
		}
	})

	t.Run("AccountIsolation", func(t *testing.T) {
		store := factory(t)

		store.Set(account, alice, guardian.Record{Status: guardian.StatusAccepted, Weight: 1})
		store.Set(otherAccount, alice, guardian.Record{Status: guardian.StatusRequested, Weight: 9})
		store.SetConfig(account, guardian.Config{Threshold: 1, TotalWeight: 1})

		got, _ := store.Get(otherAccount, alice)
		if got.Weight != 9 || got.Status != guardian.StatusRequested {
			t.Errorf("otherAccount record = %+v, want requested weight 9", got)
		}
		if _, ok := store.Config(otherAccount); ok {
			t.Error("config leaked across accounts")
		}

		store.Remove(account, alice)
		if _, ok := store.Get(otherAccount, alice); !ok {
			t.Error("Remove leaked across accounts")
		}
	})
}
