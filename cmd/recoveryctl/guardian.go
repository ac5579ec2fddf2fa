// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/manifest"
	"github.com/soloking1412/email-recovery/lib/socketapi"
)

// Daemon response shapes for guardian actions. Field names match the
// daemon's wire encoding; the types double as --json output.

type setupResult struct {
	Account       addr.Address `json:"account"`
	GuardianCount uint64       `json:"guardian_count"`
	TotalWeight   uint64       `json:"total_weight"`
	Threshold     uint64       `json:"threshold"`
}

type guardianResult struct {
	Account  addr.Address    `json:"account"`
	Guardian addr.Address    `json:"guardian"`
	Status   guardian.Status `json:"status,omitempty"`
	Weight   uint64          `json:"weight,omitempty"`
	Config   guardian.Config `json:"config"`
}

type removeAllResult struct {
	Account addr.Address    `json:"account"`
	Removed int             `json:"removed"`
	Config  guardian.Config `json:"config"`
}

type listResult struct {
	Account   addr.Address     `json:"account"`
	Config    guardian.Config  `json:"config"`
	Guardians []guardian.Entry `json:"guardians"`
}

// parseAddressFlag parses a required address-valued flag, naming the
// flag in the error so the user knows which one to fix.
func parseAddressFlag(name, value string) (addr.Address, error) {
	if value == "" {
		return addr.Address{}, fmt.Errorf("--%s is required", name)
	}
	address, err := addr.Parse(value)
	if err != nil {
		return addr.Address{}, fmt.Errorf("--%s: %w", name, err)
	}
	return address, nil
}

func guardianCommand() *cli.Command {
	return &cli.Command{
		Name:    "guardian",
		Summary: "Manage an account's guardian set",
		Subcommands: []*cli.Command{
			setupCommand(),
			addCommand(),
			acceptCommand(),
			revokeCommand(),
			removeCommand(),
			removeAllCommand(),
			updateStatusCommand(),
			getCommand(),
			listCommand(),
		},
	}
}

// --- setup ---

type setupParams struct {
	DaemonConnection
	cli.JSONOutput
	Manifest  string   `flag:"manifest,m" desc:"path to a JSONC guardian manifest"`
	Account   string   `flag:"account" desc:"account address"`
	Guardians []string `flag:"guardian" desc:"guardian address (repeatable)"`
	Weights   []string `flag:"weight" desc:"guardian weight, parallel to --guardian (repeatable)"`
	Threshold uint64   `flag:"threshold" desc:"accepted weight required to authorize a recovery"`
}

// setupFields builds the guardian/setup request, either from a
// manifest file or from the individual flags. The weight-count and
// threshold preconditions are left to the daemon; it reports them
// with the same error kinds either path would hit.
func setupFields(params *setupParams) (map[string]any, error) {
	if params.Manifest != "" {
		parsed, err := manifest.ReadFile(params.Manifest)
		if err != nil {
			return nil, err
		}
		setup, err := parsed.Resolve()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"account":   setup.Account,
			"guardians": setup.Guardians,
			"weights":   setup.Weights,
			"threshold": setup.Threshold,
		}, nil
	}

	account, err := parseAddressFlag("account", params.Account)
	if err != nil {
		return nil, err
	}
	if len(params.Guardians) == 0 {
		return nil, fmt.Errorf("--guardian is required (or use --manifest)")
	}
	guardians := make([]addr.Address, len(params.Guardians))
	for i, raw := range params.Guardians {
		parsed, err := addr.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("--guardian %q: %w", raw, err)
		}
		guardians[i] = parsed
	}
	weights := make([]uint64, len(params.Weights))
	for i, raw := range params.Weights {
		weight, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--weight %q: %w", raw, err)
		}
		weights[i] = weight
	}
	return map[string]any{
		"account":   account,
		"guardians": guardians,
		"weights":   weights,
		"threshold": params.Threshold,
	}, nil
}

func setupCommand() *cli.Command {
	var params setupParams

	return &cli.Command{
		Name:    "setup",
		Summary: "Create an account's guardian set",
		Description: `Create the guardian set for an account that has none. Every guardian
starts in the requested state; the threshold takes effect immediately
but cannot be met until guardians accept.

The guardian set comes from either a JSONC manifest file (--manifest)
or repeated --guardian/--weight pairs with --threshold. Manifests are
validated client-side before anything reaches the daemon, so a bad
file reports every issue at once.`,
		Usage: "recoveryctl guardian setup (--manifest FILE | --account ADDR --guardian ADDR --weight N ... --threshold N) [flags]",
		Examples: []cli.Example{
			{
				Description: "Set up from a manifest",
				Command:     "recoveryctl guardian setup --manifest guardians.jsonc",
			},
			{
				Description: "Set up two guardians directly",
				Command:     "recoveryctl guardian setup --account 0xa0... --guardian 0x01... --weight 2 --guardian 0x02... --weight 1 --threshold 2",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("setup", &params)
		},
		Run: func(_ []string) error {
			fields, err := setupFields(&params)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result setupResult
			if err := params.client().Call(ctx, "guardian/setup", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("guardian set created for %s: %d guardians, total weight %d, threshold %d\n",
				result.Account, result.GuardianCount, result.TotalWeight, result.Threshold)
			return nil
		},
	}
}

// --- add ---

type addParams struct {
	DaemonConnection
	cli.JSONOutput
	Account  string `flag:"account" desc:"account address"`
	Guardian string `flag:"guardian" desc:"guardian address"`
	Weight   uint64 `flag:"weight" desc:"guardian weight (must be positive)"`
}

func addCommand() *cli.Command {
	var params addParams

	return &cli.Command{
		Name:    "add",
		Summary: "Add a guardian to an existing set",
		Usage:   "recoveryctl guardian add --account ADDR --guardian ADDR --weight N [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("add", &params)
		},
		Run: func(_ []string) error {
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/add",
				params.Account, params.Guardian, map[string]any{"weight": params.Weight})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("added guardian %s (weight %d, %s)\n%s\n",
				result.Guardian, result.Weight, statusCell(result.Status), configLine(result.Config))
			return nil
		},
	}
}

// --- accept / revoke / remove ---

// targetParams is shared by the commands that name an (account,
// guardian) pair and nothing else.
type targetParams struct {
	DaemonConnection
	cli.JSONOutput
	Account  string `flag:"account" desc:"account address"`
	Guardian string `flag:"guardian" desc:"guardian address"`
}

// mutateGuardian parses the target pair, merges extra fields, and
// calls the given daemon action.
func mutateGuardian(connection *DaemonConnection, action, accountFlag, guardianFlag string, extra map[string]any) (guardianResult, error) {
	account, err := parseAddressFlag("account", accountFlag)
	if err != nil {
		return guardianResult{}, err
	}
	target, err := parseAddressFlag("guardian", guardianFlag)
	if err != nil {
		return guardianResult{}, err
	}

	fields := map[string]any{"account": account, "guardian": target}
	for key, value := range extra {
		fields[key] = value
	}

	ctx, cancel := callContext()
	defer cancel()

	var result guardianResult
	if err := connection.client().Call(ctx, action, fields, &result); err != nil {
		return guardianResult{}, err
	}
	return result, nil
}

func acceptCommand() *cli.Command {
	var params targetParams

	return &cli.Command{
		Name:    "accept",
		Summary: "Record a guardian's acceptance",
		Description: `Move a requested guardian to accepted, adding its weight to the
account's accepted total. In a full deployment this happens when the
guardian's confirmation email verifies; the command is the manual
equivalent for operators and tests.`,
		Usage: "recoveryctl guardian accept --account ADDR --guardian ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("accept", &params)
		},
		Run: func(_ []string) error {
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/accept",
				params.Account, params.Guardian, nil)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("guardian %s %s\n%s\n",
				result.Guardian, statusCell(result.Status), configLine(result.Config))
			return nil
		},
	}
}

func revokeCommand() *cli.Command {
	var params targetParams

	return &cli.Command{
		Name:    "revoke",
		Summary: "Revoke a guardian's standing",
		Description: `Move a guardian to revoked from either requested or accepted. A
revoked guardian keeps its record and weight in the total, but its
weight no longer counts toward the accepted sum.`,
		Usage: "recoveryctl guardian revoke --account ADDR --guardian ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("revoke", &params)
		},
		Run: func(_ []string) error {
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/revoke",
				params.Account, params.Guardian, nil)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("guardian %s %s\n%s\n",
				result.Guardian, statusCell(result.Status), configLine(result.Config))
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	var params targetParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove a guardian's record entirely",
		Usage:   "recoveryctl guardian remove --account ADDR --guardian ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Run: func(_ []string) error {
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/remove",
				params.Account, params.Guardian, nil)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("removed guardian %s\n%s\n", result.Guardian, configLine(result.Config))
			return nil
		},
	}
}

// --- remove-all ---

type removeAllParams struct {
	DaemonConnection
	cli.JSONOutput
	Account string `flag:"account" desc:"account address"`
	Reset   bool   `flag:"reset" desc:"also zero the account's config (clean slate for a fresh setup)"`
}

func removeAllCommand() *cli.Command {
	var params removeAllParams

	return &cli.Command{
		Name:    "remove-all",
		Summary: "Remove every guardian for an account",
		Description: `Remove all guardian records for an account. Without --reset the
aggregate config (threshold, weight sums) is left in place for a
follow-up setup; with --reset the config is zeroed too, returning the
account to the never-set-up state.`,
		Usage: "recoveryctl guardian remove-all --account ADDR [--reset] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove-all", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			fields := map[string]any{"account": account}
			if params.Reset {
				fields["reset"] = true
			}

			var result removeAllResult
			if err := params.client().Call(ctx, "guardian/remove-all", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("removed %d guardians from %s\n%s\n",
				result.Removed, result.Account, configLine(result.Config))
			return nil
		},
	}
}

// --- update-status ---

type updateStatusParams struct {
	DaemonConnection
	cli.JSONOutput
	Account  string `flag:"account" desc:"account address"`
	Guardian string `flag:"guardian" desc:"guardian address"`
	Status   string `flag:"status" desc:"new status (requested, accepted, revoked)"`
}

func updateStatusCommand() *cli.Command {
	var params updateStatusParams

	return &cli.Command{
		Name:    "update-status",
		Summary: "Force a guardian to a specific status",
		Description: `Set a guardian's status directly, bypassing the accept/revoke
transition rules. The only remaining restriction is that the new
status must differ from the current one. The account's accepted
weight is not reconciled by this command, so moving a guardian into
or out of accepted this way leaves it stale. Prefer accept and
revoke; this is the repair tool for states they cannot reach.`,
		Usage: "recoveryctl guardian update-status --account ADDR --guardian ADDR --status STATUS [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("update-status", &params)
		},
		Run: func(_ []string) error {
			if params.Status == "" {
				return fmt.Errorf("--status is required")
			}
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/update-status",
				params.Account, params.Guardian, map[string]any{"status": params.Status})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("guardian %s %s\n%s\n",
				result.Guardian, statusCell(result.Status), configLine(result.Config))
			return nil
		},
	}
}

// --- get ---

func getCommand() *cli.Command {
	var params targetParams

	return &cli.Command{
		Name:    "get",
		Summary: "Show one guardian's record",
		Description: `Show a guardian's status and weight for an account. Exits 1 without
an error message when the address is not a guardian for the account,
so scripts can probe membership.`,
		Usage: "recoveryctl guardian get --account ADDR --guardian ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("get", &params)
		},
		Run: func(_ []string) error {
			result, err := mutateGuardian(&params.DaemonConnection, "guardian/get",
				params.Account, params.Guardian, nil)
			if err != nil {
				if socketapi.HasKind(err, "guardian-not-found") {
					fmt.Fprintln(os.Stderr, err)
					return &cli.ExitError{Code: 1}
				}
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Printf("guardian %s for account %s: %s, weight %d\n",
				result.Guardian, result.Account, statusCell(result.Status), result.Weight)
			return nil
		},
	}
}

// --- list ---

type listParams struct {
	DaemonConnection
	cli.JSONOutput
	Account string `flag:"account" desc:"account address"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List an account's guardians",
		Usage:   "recoveryctl guardian list --account ADDR [flags]",
		Examples: []cli.Example{
			{
				Description: "List guardians as a table",
				Command:     "recoveryctl guardian list --account 0xa0...",
			},
			{
				Description: "List guardians for a script",
				Command:     "recoveryctl guardian list --account 0xa0... --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result listResult
			if err := params.client().Call(ctx, "guardian/list", map[string]any{"account": account}, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Println(configLine(result.Config))
			if len(result.Guardians) == 0 {
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "GUARDIAN\tWEIGHT\tSTATUS")
			for _, entry := range result.Guardians {
				fmt.Fprintf(writer, "%s\t%d\t%s\n", entry.Address, entry.Weight, statusCell(entry.Status))
			}
			return writer.Flush()
		},
	}
}
