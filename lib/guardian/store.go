// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import (
	"sync"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// Store is the per-account container the registry drives. It holds
// guardian records keyed by (account, guardian) and the per-account
// aggregate config, with no semantics of its own: every existence
// signal (the booleans on Get, Set, and Remove) feeds the registry's
// error taxonomy, and all invariant enforcement stays in the registry.
//
// Implementations must be safe for concurrent use. The registry
// serializes mutations per account but issues operations on distinct
// accounts concurrently.
type Store interface {
	// Get returns the record for (account, guardian) and whether it
	// exists.
	Get(account, guardian addr.Address) (Record, bool)

	// Set inserts or overwrites the record for (account, guardian).
	// Returns whether a record already existed.
	Set(account, guardian addr.Address, record Record) bool

	// Remove deletes the record for (account, guardian), returning the
	// removed record and whether it existed.
	Remove(account, guardian addr.Address) (Record, bool)

	// RemoveAll deletes every record for the account, returning how
	// many were removed. The account's config is untouched.
	RemoveAll(account addr.Address) int

	// Guardians returns the account's guardian addresses in a
	// deterministic (sorted) order. The slice is the caller's to keep.
	Guardians(account addr.Address) []addr.Address

	// Count returns the number of live records for the account.
	Count(account addr.Address) int

	// Config returns the account's aggregate config and whether one
	// has been stored.
	Config(account addr.Address) (Config, bool)

	// SetConfig stores the account's aggregate config. Storing the
	// zero Config clears the entry, so a subsequent Config reports
	// absence: the zero config and "never set up" are the same state.
	SetConfig(account addr.Address, config Config)
}

// MemoryStore is the in-memory Store: a map of per-account guardian
// maps plus a config map. Reads take a read lock; mutations take a
// write lock.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[addr.Address]map[addr.Address]Record
	configs map[addr.Address]Config
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[addr.Address]map[addr.Address]Record),
		configs: make(map[addr.Address]Config),
	}
}

// Get returns the record for (account, guardian).
func (s *MemoryStore) Get(account, guardian addr.Address) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[account][guardian]
	return record, ok
}

// Set inserts or overwrites a record, reporting prior existence.
func (s *MemoryStore) Set(account, guardian addr.Address, record Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountRecords, ok := s.records[account]
	if !ok {
		accountRecords = make(map[addr.Address]Record)
		s.records[account] = accountRecords
	}
	_, existed := accountRecords[guardian]
	accountRecords[guardian] = record
	return existed
}

// Remove deletes a record, returning it and whether it existed.
func (s *MemoryStore) Remove(account, guardian addr.Address) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountRecords, ok := s.records[account]
	if !ok {
		return Record{}, false
	}
	record, existed := accountRecords[guardian]
	if !existed {
		return Record{}, false
	}
	delete(accountRecords, guardian)
	if len(accountRecords) == 0 {
		delete(s.records, account)
	}
	return record, true
}

// RemoveAll deletes every record for the account.
func (s *MemoryStore) RemoveAll(account addr.Address) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.records[account])
	delete(s.records, account)
	return removed
}

// Guardians returns the account's guardian addresses, sorted.
func (s *MemoryStore) Guardians(account addr.Address) []addr.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountRecords := s.records[account]
	if len(accountRecords) == 0 {
		return nil
	}
	guardians := make([]addr.Address, 0, len(accountRecords))
	for guardian := range accountRecords {
		guardians = append(guardians, guardian)
	}
	addr.Sort(guardians)
	return guardians
}

// Count returns the number of live records for the account.
func (s *MemoryStore) Count(account addr.Address) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records[account])
}

// Config returns the account's stored config.
func (s *MemoryStore) Config(account addr.Address) (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[account]
	return config, ok
}

// SetConfig stores the account's config. The zero Config deletes the
// entry so absent and never-set-up stay indistinguishable.
func (s *MemoryStore) SetConfig(account addr.Address, config Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if config == (Config{}) {
		delete(s.configs, account)
		return
	}
	s.configs[account] = config
}
