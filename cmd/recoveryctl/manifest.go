// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/manifest"
)

func manifestCommand() *cli.Command {
	return &cli.Command{
		Name:    "manifest",
		Summary: "Work with guardian manifest files",
		Subcommands: []*cli.Command{
			manifestValidateCommand(),
		},
	}
}

type manifestValidateParams struct {
	cli.JSONOutput
}

func manifestValidateCommand() *cli.Command {
	var params manifestValidateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Validate a guardian manifest file",
		Description: `Parse and validate a JSONC guardian manifest without contacting the
daemon. Every issue is reported at once. Exits 1 when the manifest
has issues, 0 when "guardian setup --manifest" would accept it.`,
		Usage: "recoveryctl manifest validate FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one manifest path expected")
			}

			parsed, err := manifest.ReadFile(args[0])
			if err != nil {
				return err
			}

			if issues := manifest.Validate(parsed); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "%s: %s\n", args[0], issue)
				}
				return &cli.ExitError{Code: 1}
			}

			if done, err := params.EmitJSON(parsed); done {
				return err
			}

			var totalWeight uint64
			for _, entry := range parsed.Guardians {
				totalWeight += entry.Weight
			}
			fmt.Printf("%s: valid (account %s, %d guardians, total weight %d, threshold %d)\n",
				args[0], parsed.Account, len(parsed.Guardians), totalWeight, parsed.Threshold)
			return nil
		},
	}
}
