// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/soloking1412/email-recovery/lib/guardian"
)

// Styled output keeps the plain text inside any escape sequences, so
// these assert on substrings rather than exact equality; the tests
// hold under any color profile.

func TestStatusCell(t *testing.T) {
	t.Parallel()

	for _, status := range []guardian.Status{
		guardian.StatusRequested,
		guardian.StatusAccepted,
		guardian.StatusRevoked,
		guardian.StatusNone,
	} {
		if cell := statusCell(status); !strings.Contains(cell, status.String()) {
			t.Errorf("statusCell(%s) = %q, does not contain status name", status, cell)
		}
	}
}

func TestConfigLine(t *testing.T) {
	t.Parallel()

	if line := configLine(guardian.Config{}); !strings.Contains(line, "no guardian setup") {
		t.Errorf("zero config line = %q", line)
	}

	met := guardian.Config{GuardianCount: 3, TotalWeight: 4, AcceptedWeight: 3, Threshold: 3}
	line := configLine(met)
	for _, want := range []string{"3 guardians", "3/4", "threshold 3"} {
		if !strings.Contains(line, want) {
			t.Errorf("met config line = %q, missing %q", line, want)
		}
	}
	if strings.Contains(line, "not met") {
		t.Errorf("met config line = %q, claims not met", line)
	}

	unmet := guardian.Config{GuardianCount: 3, TotalWeight: 4, AcceptedWeight: 2, Threshold: 3}
	if line := configLine(unmet); !strings.Contains(line, "not met") {
		t.Errorf("unmet config line = %q, missing not met", line)
	}
}

func TestEventDetail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		event guardian.Event
		want  string
	}{
		{guardian.Event{Type: guardian.EventAddedGuardian, Weight: 2}, "weight 2"},
		{guardian.Event{Type: guardian.EventGuardianStatusUpdated, Status: guardian.StatusAccepted}, "accepted"},
		{guardian.Event{Type: guardian.EventRemovedGuardian, Weight: 1}, "weight 1"},
		{guardian.Event{Type: guardian.EventChangedThreshold, Threshold: 4}, "threshold 4"},
	}

	for _, testCase := range cases {
		if detail := eventDetail(testCase.event); !strings.Contains(detail, testCase.want) {
			t.Errorf("eventDetail(%s) = %q, want substring %q", testCase.event.Type, detail, testCase.want)
		}
	}
}
