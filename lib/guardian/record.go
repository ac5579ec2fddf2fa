// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

// Record is the per-(account, guardian) state: the guardian's
// lifecycle status and its voting weight for that account. A guardian
// identity is scoped strictly to one account; the same address may be
// a guardian for many accounts with independent records.
type Record struct {
	Status Status `json:"status"`
	Weight uint64 `json:"weight"`
}

// Config is the per-account aggregate over the account's live records.
// The registry maintains it incrementally; it is never recomputed by
// scanning.
type Config struct {
	// GuardianCount is the number of live records.
	GuardianCount uint64 `json:"guardian_count"`

	// TotalWeight is the sum of Weight over all live records.
	TotalWeight uint64 `json:"total_weight"`

	// AcceptedWeight is the sum of Weight over records with
	// StatusAccepted. Always <= TotalWeight.
	AcceptedWeight uint64 `json:"accepted_weight"`

	// Threshold is the minimum accepted weight required to authorize a
	// recovery. Zero means setup has never completed for this account;
	// it is a sentinel, not a legal operating value.
	Threshold uint64 `json:"threshold"`
}

// SetUp reports whether setup has completed for this config.
func (c Config) SetUp() bool { return c.Threshold != 0 }

// ThresholdMet reports whether the accepted weight has reached the
// threshold. False when setup has never completed.
func (c Config) ThresholdMet() bool {
	return c.Threshold != 0 && c.AcceptedWeight >= c.Threshold
}
