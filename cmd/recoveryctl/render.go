// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/soloking1412/email-recovery/lib/guardian"
)

// Status colors, ANSI 256 for broad terminal compatibility. lipgloss
// degrades these to plain text when stdout is not a terminal, so
// piped output stays clean.
var (
	styleRequested = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // amber
	styleAccepted  = lipgloss.NewStyle().Foreground(lipgloss.Color("114")) // green
	styleRevoked   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleFaint     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
)

// statusCell renders a guardian status for table output. Styled cells
// go in the last column only: the escape sequences would throw off
// tabwriter's column widths anywhere else.
func statusCell(status guardian.Status) string {
	switch status {
	case guardian.StatusRequested:
		return styleRequested.Render(status.String())
	case guardian.StatusAccepted:
		return styleAccepted.Render(status.String())
	case guardian.StatusRevoked:
		return styleRevoked.Render(status.String())
	default:
		return styleFaint.Render(status.String())
	}
}

// thresholdCell renders met/unmet for table and summary output.
func thresholdCell(met bool) string {
	if met {
		return styleAccepted.Render("met")
	}
	return styleRequested.Render("not met")
}

// configLine is the one-line config summary printed after mutations
// and by "threshold get".
func configLine(config guardian.Config) string {
	if !config.SetUp() {
		return styleFaint.Render("no guardian setup")
	}
	return fmt.Sprintf("%d guardians, accepted weight %d/%d, threshold %d (%s)",
		config.GuardianCount, config.AcceptedWeight, config.TotalWeight,
		config.Threshold, thresholdCell(config.ThresholdMet()))
}
