// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/sqlitestore"
)

// statusResult mirrors the daemon's status response.
type statusResult struct {
	Version         string            `json:"version"`
	BinaryHash      string            `json:"binary_hash,omitempty"`
	UptimeSeconds   float64           `json:"uptime_seconds"`
	JournalSequence uint64            `json:"journal_sequence"`
	JournalChain    string            `json:"journal_chain"`
	Store           sqlitestore.Stats `json:"store"`
	StoreError      string            `json:"store_error,omitempty"`
}

type statusParams struct {
	DaemonConnection
	cli.JSONOutput
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show daemon health and store statistics",
		Usage:   "recoveryctl status [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(_ []string) error {
			ctx, cancel := callContext()
			defer cancel()

			var result statusResult
			if err := params.client().Call(ctx, "status", nil, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			uptime := time.Duration(result.UptimeSeconds * float64(time.Second)).Round(time.Second)

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "Version:\t%s\n", result.Version)
			if result.BinaryHash != "" {
				fmt.Fprintf(writer, "Binary hash:\t%s\n", result.BinaryHash)
			}
			fmt.Fprintf(writer, "Uptime:\t%s\n", uptime)
			fmt.Fprintf(writer, "Journal sequence:\t%d\n", result.JournalSequence)
			fmt.Fprintf(writer, "Journal chain:\t%s\n", result.JournalChain)
			fmt.Fprintf(writer, "Accounts:\t%d\n", result.Store.Accounts)
			fmt.Fprintf(writer, "Guardians:\t%d\n", result.Store.Guardians)
			fmt.Fprintf(writer, "Events:\t%d\n", result.Store.Events)
			fmt.Fprintf(writer, "Store size:\t%d bytes\n", result.Store.SizeBytes)
			if result.StoreError != "" {
				fmt.Fprintf(writer, "Store error:\t%s\n", styleRevoked.Render(result.StoreError))
			}
			return writer.Flush()
		},
	}
}

// --- events ---

type eventsParams struct {
	DaemonConnection
	cli.JSONOutput
	Account string `flag:"account" desc:"restrict to one account"`
	Type    string `flag:"type" desc:"restrict to one event type"`
	Limit   int    `flag:"limit" desc:"maximum rows, newest first (daemon default 100)"`
}

type eventsResult struct {
	Events []sqlitestore.StoredEvent `json:"events"`
}

// eventDetail summarizes the type-specific payload of an event for
// the table's last column.
func eventDetail(event guardian.Event) string {
	switch event.Type {
	case guardian.EventAddedGuardian:
		return fmt.Sprintf("weight %d", event.Weight)
	case guardian.EventGuardianStatusUpdated:
		return statusCell(event.Status)
	case guardian.EventRemovedGuardian:
		return fmt.Sprintf("weight %d", event.Weight)
	case guardian.EventChangedThreshold:
		return fmt.Sprintf("threshold %d", event.Threshold)
	default:
		return ""
	}
}

func eventsCommand() *cli.Command {
	var params eventsParams

	return &cli.Command{
		Name:    "events",
		Summary: "Query the registry event log",
		Description: `Query stored registry events, newest first. Filter by account, by
type (added-guardian, guardian-status-updated, removed-guardian,
changed-threshold), or both.`,
		Usage: "recoveryctl events [--account ADDR] [--type TYPE] [--limit N] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("events", &params)
		},
		Run: func(_ []string) error {
			fields := map[string]any{}
			if params.Account != "" {
				account, err := parseAddressFlag("account", params.Account)
				if err != nil {
					return err
				}
				fields["account"] = account
			}
			if params.Type != "" {
				fields["type"] = params.Type
			}
			if params.Limit > 0 {
				fields["limit"] = params.Limit
			}

			ctx, cancel := callContext()
			defer cancel()

			var result eventsResult
			if err := params.client().Call(ctx, "events", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result.Events); done {
				return err
			}

			if len(result.Events) == 0 {
				fmt.Fprintln(os.Stderr, "no events")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTIME\tTYPE\tACCOUNT\tGUARDIAN\tDETAIL")
			for _, event := range result.Events {
				guardianCell := "-"
				if !event.Guardian.IsZero() {
					guardianCell = event.Guardian.String()
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n",
					event.ID,
					event.Time.Format(time.RFC3339),
					event.Type,
					event.Account,
					guardianCell,
					eventDetail(event.Event),
				)
			}
			return writer.Flush()
		},
	}
}
