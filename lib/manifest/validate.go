// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// Validate checks the manifest against the registry's setup
// preconditions. Returns a list of human-readable issue descriptions;
// an empty list means the manifest is valid. Reporting every issue at
// once (rather than stopping at the first) lets an author fix a file
// in one pass.
func Validate(m *Manifest) []string {
	var issues []string

	account, err := addr.Parse(m.Account)
	switch {
	case m.Account == "":
		issues = append(issues, "account is required")
	case err != nil:
		issues = append(issues, fmt.Sprintf("account: %v", err))
	case account.IsZero():
		issues = append(issues, "account must not be the zero address")
	}

	if len(m.Guardians) == 0 {
		issues = append(issues, "at least one guardian is required")
	}
	if m.Threshold == 0 {
		issues = append(issues, "threshold must be positive (zero means setup never ran)")
	}

	seen := make(map[addr.Address]int, len(m.Guardians))
	var totalWeight uint64
	for index, entry := range m.Guardians {
		prefix := fmt.Sprintf("guardians[%d]", index)

		guardian, err := addr.Parse(entry.Address)
		switch {
		case entry.Address == "":
			issues = append(issues, fmt.Sprintf("%s: address is required", prefix))
			continue
		case err != nil:
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
			continue
		}
		prefix = fmt.Sprintf("%s %s", prefix, entry.Address)

		if guardian.IsZero() {
			issues = append(issues, fmt.Sprintf("%s: guardian must not be the zero address", prefix))
		}
		if guardian == account && !account.IsZero() {
			issues = append(issues, fmt.Sprintf("%s: the account cannot be its own guardian", prefix))
		}
		if entry.Weight == 0 {
			issues = append(issues, fmt.Sprintf("%s: weight must be positive", prefix))
		}
		if firstIndex, duplicate := seen[guardian]; duplicate {
			issues = append(issues, fmt.Sprintf("%s: duplicate address (first used at guardians[%d])", prefix, firstIndex))
		} else {
			seen[guardian] = index
		}
		totalWeight += entry.Weight
	}

	if m.Threshold > totalWeight && len(m.Guardians) > 0 {
		issues = append(issues, fmt.Sprintf(
			"threshold %d exceeds the total guardian weight %d (the threshold could never be met)",
			m.Threshold, totalWeight,
		))
	}

	return issues
}

// Setup is a validated manifest with everything parsed, in the shape
// the registry's setup operation takes.
type Setup struct {
	Account   addr.Address
	Guardians []addr.Address
	Weights   []uint64
	Threshold uint64
}

// Resolve validates the manifest and returns its typed form. All
// issues are folded into the error, one per line.
func (m *Manifest) Resolve() (Setup, error) {
	if issues := Validate(m); len(issues) > 0 {
		message := "invalid manifest:"
		for _, issue := range issues {
			message += "\n  " + issue
		}
		return Setup{}, fmt.Errorf("%s", message)
	}

	setup := Setup{
		Account:   addr.MustParse(m.Account),
		Guardians: make([]addr.Address, len(m.Guardians)),
		Weights:   make([]uint64, len(m.Guardians)),
		Threshold: m.Threshold,
	}
	for i, entry := range m.Guardians {
		setup.Guardians[i] = addr.MustParse(entry.Address)
		setup.Weights[i] = entry.Weight
	}
	return setup, nil
}
