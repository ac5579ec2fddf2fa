// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import (
	"sync"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/clock"
)

// Registry owns all mutation of guardian records and per-account
// aggregate config, and enforces the core invariants:
//
//   - threshold == 0 exactly when setup has never completed
//   - threshold <= totalWeight whenever threshold != 0
//   - acceptedWeight is the sum of accepted record weights
//   - totalWeight is the sum of all live record weights
//   - a guardian is never the zero address or the account it guards
//   - one live record per (account, guardian)
//
// Every operation takes the account as its first argument: state is
// strictly partitioned per account, one logical algorithm multiplexed
// over all of them. Mutations on the same account serialize through a
// per-account lock; operations on distinct accounts do not contend.
// Each operation reads, validates against the pre-mutation snapshot,
// and only then writes, so a failed operation leaves no trace and
// sequential composition cannot violate an invariant.
//
// The registry trusts its caller to have authenticated the account.
// Absence of a record doubles as "not authorized" in the error
// taxonomy; there is no separate ACL at this layer.
type Registry struct {
	store Store
	sink  Sink
	clock clock.Clock

	// mu guards locks. Per-account locks are created on first use and
	// never removed; the map grows with the set of accounts touched.
	mu    sync.Mutex
	locks map[addr.Address]*sync.Mutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSink sets the event sink. Without one, events are dropped.
func WithSink(sink Sink) RegistryOption {
	return func(r *Registry) {
		r.sink = sink
	}
}

// WithClock sets the clock used for event timestamps. The default is
// clock.Real(). Tests inject clock.Fake() for deterministic times.
func WithClock(c clock.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

// NewRegistry creates a registry over the given store. While a
// registry drives a store, all access must go through the registry;
// direct store access bypasses per-account serialization.
func NewRegistry(store Store, options ...RegistryOption) *Registry {
	registry := &Registry{
		store: store,
		clock: clock.Real(),
		locks: make(map[addr.Address]*sync.Mutex),
	}
	for _, option := range options {
		option(registry)
	}
	return registry
}

// lockAccount acquires the account's lock, creating it on first use.
// Returns the unlock function.
func (r *Registry) lockAccount(account addr.Address) func() {
	r.mu.Lock()
	lock, ok := r.locks[account]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[account] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (r *Registry) emit(event Event) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(event)
}

// SetupGuardians installs an account's initial guardian set: it adds
// each guardian in input order with status requested, then commits the
// threshold. Returns the number of guardians added by this call and
// the account's total weight after the additions.
//
// The whole batch validates against the pre-call snapshot before
// anything is written, so a failure (mismatched slice lengths, zero
// threshold, an invalid entry, a duplicate within the batch or against
// live records, or a threshold above the resulting total weight)
// leaves the account untouched. Emits one AddedGuardian per entry, in
// input order.
//
// Setup is meant to run once per account: the threshold stays zero
// until it succeeds. Re-invocation is not blocked here, but duplicate
// guardians are rejected, which limits the damage of an accidental
// overlapping re-run. Callers wanting a clean slate use ResetAccount
// first.
func (r *Registry) SetupGuardians(account addr.Address, guardians []addr.Address, weights []uint64, threshold uint64) (count, totalWeight uint64, err error) {
	if len(guardians) != len(weights) {
		return 0, 0, &Error{
			Kind:    KindIncorrectNumberOfWeights,
			Account: account,
			Got:     len(weights),
			Want:    len(guardians),
		}
	}
	if threshold == 0 {
		return 0, 0, &Error{Kind: KindThresholdCannotBeZero, Account: account}
	}

	unlock := r.lockAccount(account)
	defer unlock()

	config, _ := r.store.Config(account)

	batch := make(map[addr.Address]struct{}, len(guardians))
	newTotal := config.TotalWeight
	for i, guardian := range guardians {
		if guardian.IsZero() || guardian == account {
			return 0, 0, &Error{Kind: KindInvalidGuardianAddress, Account: account, Guardian: guardian}
		}
		if weights[i] == 0 {
			return 0, 0, &Error{Kind: KindInvalidGuardianWeight, Account: account, Guardian: guardian}
		}
		if _, exists := r.store.Get(account, guardian); exists {
			return 0, 0, &Error{Kind: KindAddressAlreadyGuardian, Account: account, Guardian: guardian}
		}
		if _, seen := batch[guardian]; seen {
			return 0, 0, &Error{Kind: KindAddressAlreadyGuardian, Account: account, Guardian: guardian}
		}
		batch[guardian] = struct{}{}
		newTotal += weights[i]
	}
	if threshold > newTotal {
		return 0, 0, &Error{
			Kind:        KindThresholdExceedsTotalWeight,
			Account:     account,
			Threshold:   threshold,
			TotalWeight: newTotal,
		}
	}

	now := r.clock.Now()
	for i, guardian := range guardians {
		r.store.Set(account, guardian, Record{Status: StatusRequested, Weight: weights[i]})
	}
	config.GuardianCount += uint64(len(guardians))
	config.TotalWeight = newTotal
	config.Threshold = threshold
	r.store.SetConfig(account, config)

	for i, guardian := range guardians {
		r.emit(Event{
			Type:     EventAddedGuardian,
			Account:  account,
			Guardian: guardian,
			Weight:   weights[i],
			Time:     now,
		})
	}
	return uint64(len(guardians)), config.TotalWeight, nil
}

// AddGuardian inserts a guardian with status requested and the given
// weight, growing the account's count and total weight. The new weight
// does not count toward the accepted weight until the guardian accepts.
// Emits AddedGuardian.
func (r *Registry) AddGuardian(account, guardian addr.Address, weight uint64) error {
	unlock := r.lockAccount(account)
	defer unlock()

	if guardian.IsZero() || guardian == account {
		return &Error{Kind: KindInvalidGuardianAddress, Account: account, Guardian: guardian}
	}
	if weight == 0 {
		return &Error{Kind: KindInvalidGuardianWeight, Account: account, Guardian: guardian}
	}
	if _, exists := r.store.Get(account, guardian); exists {
		return &Error{Kind: KindAddressAlreadyGuardian, Account: account, Guardian: guardian}
	}

	r.store.Set(account, guardian, Record{Status: StatusRequested, Weight: weight})
	config, _ := r.store.Config(account)
	config.GuardianCount++
	config.TotalWeight += weight
	r.store.SetConfig(account, config)

	r.emit(Event{
		Type:     EventAddedGuardian,
		Account:  account,
		Guardian: guardian,
		Weight:   weight,
		Time:     r.clock.Now(),
	})
	return nil
}

// setStatusLocked validates and applies a status overwrite, returning
// the prior record. Weight is unchanged. The caller holds the account
// lock and emits after all of its state changes have applied.
func (r *Registry) setStatusLocked(account, guardian addr.Address, newStatus Status) (Record, error) {
	record, ok := r.store.Get(account, guardian)
	if !ok {
		return Record{}, &Error{Kind: KindGuardianNotFound, Account: account, Guardian: guardian}
	}
	if record.Status == newStatus {
		return Record{}, &Error{
			Kind:     KindStatusCannotBeTheSame,
			Account:  account,
			Guardian: guardian,
			Status:   newStatus,
		}
	}
	r.store.Set(account, guardian, Record{Status: newStatus, Weight: record.Weight})
	return record, nil
}

// UpdateGuardianStatus overwrites a guardian's status. The guardian
// must exist and the new status must differ from the current one.
// Emits GuardianStatusUpdated.
//
// This primitive does not adjust the accepted weight: it is generic
// over all transitions, and weight bookkeeping for accepted-related
// transitions is the caller's responsibility. Callers that do not want
// to carry that responsibility use AcceptGuardian and RevokeGuardian,
// which reconcile the accepted weight inline.
func (r *Registry) UpdateGuardianStatus(account, guardian addr.Address, newStatus Status) error {
	unlock := r.lockAccount(account)
	defer unlock()

	if _, err := r.setStatusLocked(account, guardian, newStatus); err != nil {
		return err
	}
	r.emit(Event{
		Type:     EventGuardianStatusUpdated,
		Account:  account,
		Guardian: guardian,
		Status:   newStatus,
		Time:     r.clock.Now(),
	})
	return nil
}

// AcceptGuardian transitions a requested guardian to accepted and adds
// its weight to the account's accepted weight. Fails with
// KindUnexpectedGuardianStatus unless the current status is requested.
// Emits GuardianStatusUpdated.
func (r *Registry) AcceptGuardian(account, guardian addr.Address) error {
	unlock := r.lockAccount(account)
	defer unlock()

	record, ok := r.store.Get(account, guardian)
	if !ok {
		return &Error{Kind: KindGuardianNotFound, Account: account, Guardian: guardian}
	}
	if record.Status != StatusRequested {
		return &Error{
			Kind:       KindUnexpectedGuardianStatus,
			Account:    account,
			Guardian:   guardian,
			Status:     record.Status,
			WantStatus: StatusRequested,
		}
	}

	if _, err := r.setStatusLocked(account, guardian, StatusAccepted); err != nil {
		return err
	}
	config, _ := r.store.Config(account)
	config.AcceptedWeight += record.Weight
	r.store.SetConfig(account, config)

	r.emit(Event{
		Type:     EventGuardianStatusUpdated,
		Account:  account,
		Guardian: guardian,
		Status:   StatusAccepted,
		Time:     r.clock.Now(),
	})
	return nil
}

// RevokeGuardian transitions a guardian to revoked. When the current
// status is accepted, the guardian's weight is retracted from the
// accepted weight; from requested there is nothing to retract. A
// guardian already revoked fails with KindStatusCannotBeTheSame.
// Emits GuardianStatusUpdated.
func (r *Registry) RevokeGuardian(account, guardian addr.Address) error {
	unlock := r.lockAccount(account)
	defer unlock()

	record, err := r.setStatusLocked(account, guardian, StatusRevoked)
	if err != nil {
		return err
	}
	if record.Status == StatusAccepted {
		config, _ := r.store.Config(account)
		config.AcceptedWeight -= record.Weight
		r.store.SetConfig(account, config)
	}

	r.emit(Event{
		Type:     EventGuardianStatusUpdated,
		Account:  account,
		Guardian: guardian,
		Status:   StatusRevoked,
		Time:     r.clock.Now(),
	})
	return nil
}

// RemoveGuardian deletes a guardian record and shrinks the account's
// aggregates. The central safety check runs on the pre-mutation
// snapshot: a removal that would leave the total weight below the
// threshold is rejected with KindThresholdExceedsTotalWeight, because
// it would make the threshold permanently unreachable. An absent
// guardian fails with KindAddressNotGuardianForAccount. Emits
// RemovedGuardian.
func (r *Registry) RemoveGuardian(account, guardian addr.Address) error {
	unlock := r.lockAccount(account)
	defer unlock()

	record, ok := r.store.Get(account, guardian)
	if !ok {
		return &Error{Kind: KindAddressNotGuardianForAccount, Account: account, Guardian: guardian}
	}
	config, _ := r.store.Config(account)
	if config.TotalWeight-record.Weight < config.Threshold {
		return &Error{
			Kind:        KindThresholdExceedsTotalWeight,
			Account:     account,
			Guardian:    guardian,
			Threshold:   config.Threshold,
			TotalWeight: config.TotalWeight - record.Weight,
		}
	}

	removed, _ := r.store.Remove(account, guardian)
	config.GuardianCount--
	config.TotalWeight -= removed.Weight
	if removed.Status == StatusAccepted {
		config.AcceptedWeight -= removed.Weight
	}
	r.store.SetConfig(account, config)

	r.emit(Event{
		Type:     EventRemovedGuardian,
		Account:  account,
		Guardian: guardian,
		Weight:   removed.Weight,
		Time:     r.clock.Now(),
	})
	return nil
}

// RemoveAllGuardians empties the account's guardian map, returning how
// many records were removed. The aggregate config is deliberately left
// untouched so a caller re-running setup can reuse it; without a
// matching config reset the aggregates go stale relative to the empty
// map. Callers wanting the combined step use ResetAccount. No events
// are emitted.
func (r *Registry) RemoveAllGuardians(account addr.Address) int {
	unlock := r.lockAccount(account)
	defer unlock()

	return r.store.RemoveAll(account)
}

// ResetConfig zeroes the account's aggregate config, returning it to
// the never-set-up state. Guardian records are untouched.
func (r *Registry) ResetConfig(account addr.Address) {
	unlock := r.lockAccount(account)
	defer unlock()

	r.store.SetConfig(account, Config{})
}

// ResetAccount removes every guardian record for the account and
// zeroes its config in one serialized step, returning the number of
// records removed. This is the clean-slate form of the
// RemoveAllGuardians + ResetConfig pair.
func (r *Registry) ResetAccount(account addr.Address) int {
	unlock := r.lockAccount(account)
	defer unlock()

	removed := r.store.RemoveAll(account)
	r.store.SetConfig(account, Config{})
	return removed
}

// ChangeThreshold overwrites the account's threshold. Requires a
// completed setup (KindSetupNotCalled otherwise), a new threshold no
// greater than the total weight (KindThresholdExceedsTotalWeight), and
// a nonzero new threshold (KindThresholdCannotBeZero). Emits
// ChangedThreshold.
func (r *Registry) ChangeThreshold(account addr.Address, newThreshold uint64) error {
	unlock := r.lockAccount(account)
	defer unlock()

	config, _ := r.store.Config(account)
	if config.Threshold == 0 {
		return &Error{Kind: KindSetupNotCalled, Account: account}
	}
	if newThreshold > config.TotalWeight {
		return &Error{
			Kind:        KindThresholdExceedsTotalWeight,
			Account:     account,
			Threshold:   newThreshold,
			TotalWeight: config.TotalWeight,
		}
	}
	if newThreshold == 0 {
		return &Error{Kind: KindThresholdCannotBeZero, Account: account}
	}

	config.Threshold = newThreshold
	r.store.SetConfig(account, config)

	r.emit(Event{
		Type:      EventChangedThreshold,
		Account:   account,
		Threshold: newThreshold,
		Time:      r.clock.Now(),
	})
	return nil
}

// Guardian returns the record for (account, guardian), or
// KindGuardianNotFound.
func (r *Registry) Guardian(account, guardian addr.Address) (Record, error) {
	unlock := r.lockAccount(account)
	defer unlock()

	record, ok := r.store.Get(account, guardian)
	if !ok {
		return Record{}, &Error{Kind: KindGuardianNotFound, Account: account, Guardian: guardian}
	}
	return record, nil
}

// Config returns the account's aggregate config. The zero Config means
// setup has never completed.
func (r *Registry) Config(account addr.Address) Config {
	unlock := r.lockAccount(account)
	defer unlock()

	config, _ := r.store.Config(account)
	return config
}

// GuardianAddresses returns the account's guardian addresses in sorted
// order.
func (r *Registry) GuardianAddresses(account addr.Address) []addr.Address {
	unlock := r.lockAccount(account)
	defer unlock()

	return r.store.Guardians(account)
}

// Entry pairs a guardian address with its record, for enumeration.
type Entry struct {
	Address addr.Address `json:"address"`
	Record
}

// Entries returns the account's config and guardian records as one
// consistent view taken under the account lock, addresses sorted.
// Listing and export build on this instead of separate accessor calls,
// which could interleave with a mutation.
func (r *Registry) Entries(account addr.Address) (Config, []Entry) {
	unlock := r.lockAccount(account)
	defer unlock()

	config, _ := r.store.Config(account)
	addresses := r.store.Guardians(account)
	entries := make([]Entry, 0, len(addresses))
	for _, address := range addresses {
		record, _ := r.store.Get(account, address)
		entries = append(entries, Entry{Address: address, Record: record})
	}
	return config, entries
}

// ThresholdMet reports whether the account's accepted weight has
// reached its threshold. This is a pure aggregate read; deciding when
// a recovery may execute stays with the caller.
func (r *Registry) ThresholdMet(account addr.Address) bool {
	return r.Config(account).ThresholdMet()
}
