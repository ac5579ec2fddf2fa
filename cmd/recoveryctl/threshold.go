// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// configResult mirrors the daemon's config/get and config/threshold
// responses.
type configResult struct {
	Account      addr.Address    `json:"account"`
	Config       guardian.Config `json:"config"`
	SetUp        bool            `json:"set_up"`
	ThresholdMet bool            `json:"threshold_met"`
}

func thresholdCommand() *cli.Command {
	return &cli.Command{
		Name:    "threshold",
		Summary: "Inspect and change an account's recovery threshold",
		Subcommands: []*cli.Command{
			thresholdGetCommand(),
			thresholdSetCommand(),
		},
	}
}

// --- get ---

type thresholdGetParams struct {
	DaemonConnection
	cli.JSONOutput
	Account string `flag:"account" desc:"account address"`
	Check   bool   `flag:"check" desc:"exit 1 when the threshold is not met"`
}

func thresholdGetCommand() *cli.Command {
	var params thresholdGetParams

	return &cli.Command{
		Name:    "get",
		Summary: "Show an account's config and threshold state",
		Description: `Show the account's aggregate config: guardian count, weight totals,
threshold, and whether the accepted weight has met it. With --check
the command exits 1 when the threshold is unmet (or setup never ran),
so scripts can gate on recovery readiness.`,
		Usage: "recoveryctl threshold get --account ADDR [--check] [flags]",
		Examples: []cli.Example{
			{
				Description: "Gate a recovery script on the threshold",
				Command:     "recoveryctl threshold get --account 0xa0... --check && initiate-recovery",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("get", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result configResult
			if err := params.client().Call(ctx, "config/get", map[string]any{"account": account}, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				if err != nil {
					return err
				}
			} else {
				fmt.Printf("account %s: %s\n", result.Account, configLine(result.Config))
			}

			if params.Check && !result.ThresholdMet {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// --- set ---

type thresholdSetParams struct {
	DaemonConnection
	cli.JSONOutput
	Account   string `flag:"account" desc:"account address"`
	Threshold uint64 `flag:"threshold" desc:"new threshold (positive, at most the total weight)"`
}

func thresholdSetCommand() *cli.Command {
	var params thresholdSetParams

	return &cli.Command{
		Name:    "set",
		Summary: "Change an account's recovery threshold",
		Usage:   "recoveryctl threshold set --account ADDR --threshold N [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("set", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			fields := map[string]any{"account": account, "threshold": params.Threshold}
			var result configResult
			if err := params.client().Call(ctx, "config/threshold", fields, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("threshold for %s now %d\n%s\n",
				result.Account, result.Config.Threshold, configLine(result.Config))
			return nil
		},
	}
}
