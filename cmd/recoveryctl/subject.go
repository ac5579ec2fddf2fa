// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/calldata"
	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/subject"
)

type subjectResult struct {
	Account addr.Address `json:"account"`
}

type recoveryHashResult struct {
	Hash calldata.Digest `json:"hash"`
}

func subjectCommand() *cli.Command {
	return &cli.Command{
		Name:    "subject",
		Summary: "Validate recovery email subjects",
		Description: `Validate the parameters of the two email subject templates against
the daemon's rules, and compute the recovery data hash a valid
recovery subject commits to. The daemon checks addresses, the
owner registry, and old/new owner constraints; these commands only
shuttle parameters.`,
		Subcommands: []*cli.Command{
			subjectAcceptCommand(),
			subjectRecoverCommand(),
			subjectHashCommand(),
		},
	}
}

// --- accept ---

type subjectAcceptParams struct {
	DaemonConnection
	cli.JSONOutput
	Account       string `flag:"account" desc:"account address filling the template's slot"`
	TemplateIndex int    `flag:"template-index" desc:"template index (only 0 exists)"`
}

func subjectAcceptCommand() *cli.Command {
	var params subjectAcceptParams

	return &cli.Command{
		Name:    "accept",
		Summary: "Validate an acceptance subject's parameters",
		Usage:   "recoveryctl subject accept --account ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("accept", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			fields := map[string]any{
				"template_index": params.TemplateIndex,
				"params":         []string{account.String()},
			}
			var result subjectResult
			if err := params.client().Call(ctx, "subject/accept", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("valid: %q\n", subject.RenderAcceptance(result.Account))
			return nil
		},
	}
}

// --- recover ---

// recoverParams names the three recovery slots. Shared with the hash
// command, which takes the same parameters.
type recoverParams struct {
	DaemonConnection
	cli.JSONOutput
	Account       string `flag:"account" desc:"account address being recovered"`
	OldOwner      string `flag:"old-owner" desc:"owner being replaced"`
	NewOwner      string `flag:"new-owner" desc:"replacement owner"`
	TemplateIndex int    `flag:"template-index" desc:"template index (only 0 exists)"`
}

// resolveRecoverParams parses the three address flags into the wire
// parameter order: account, old owner, new owner.
func resolveRecoverParams(params *recoverParams) (map[string]any, []addr.Address, error) {
	account, err := parseAddressFlag("account", params.Account)
	if err != nil {
		return nil, nil, err
	}
	oldOwner, err := parseAddressFlag("old-owner", params.OldOwner)
	if err != nil {
		return nil, nil, err
	}
	newOwner, err := parseAddressFlag("new-owner", params.NewOwner)
	if err != nil {
		return nil, nil, err
	}

	addresses := []addr.Address{account, oldOwner, newOwner}
	fields := map[string]any{
		"template_index": params.TemplateIndex,
		"params":         []string{account.String(), oldOwner.String(), newOwner.String()},
	}
	return fields, addresses, nil
}

func subjectRecoverCommand() *cli.Command {
	var params recoverParams

	return &cli.Command{
		Name:    "recover",
		Summary: "Validate a recovery subject's parameters",
		Description: `Validate a recovery subject's three address parameters: the account,
the owner being replaced (which must currently be an owner), and the
replacement (which must not be). Validation only — nothing about the
account changes.`,
		Usage: "recoveryctl subject recover --account ADDR --old-owner ADDR --new-owner ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("recover", &params)
		},
		Run: func(_ []string) error {
			fields, addresses, err := resolveRecoverParams(&params)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result subjectResult
			if err := params.client().Call(ctx, "subject/recover", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("valid: %q\n", subject.RenderRecovery(addresses[0], addresses[1], addresses[2]))
			return nil
		},
	}
}

// --- hash ---

func subjectHashCommand() *cli.Command {
	var params recoverParams

	return &cli.Command{
		Name:    "hash",
		Summary: "Compute the recovery data hash for a recovery subject",
		Description: `Compute the digest of the owner-swap calldata a recovery subject
commits to. The daemon resolves the old owner's predecessor in the
account's owner list, so the hash covers the exact swap that would
execute.`,
		Usage: "recoveryctl subject hash --account ADDR --old-owner ADDR --new-owner ADDR [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("hash", &params)
		},
		Run: func(_ []string) error {
			fields, _, err := resolveRecoverParams(&params)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result recoveryHashResult
			if err := params.client().Call(ctx, "subject/recovery-hash", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Println(result.Hash)
			return nil
		},
	}
}
