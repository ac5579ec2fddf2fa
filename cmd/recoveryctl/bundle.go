// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/sealed"
	"github.com/soloking1412/email-recovery/lib/secret"
)

// The daemon's export action returns the plaintext bundle and its
// import action accepts one; age encryption happens here, client-side.
// The daemon host never holds sealing keys, and a backup file follows
// the operator, not the daemon.

// --- export ---

type exportParams struct {
	DaemonConnection
	Account    string   `flag:"account" desc:"account address"`
	Recipients []string `flag:"recipient,r" desc:"age public key to seal to (repeatable)"`
	Output     string   `flag:"output,o" desc:"path for the sealed backup file"`
}

func exportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Export an account's guardian set as a sealed backup",
		Description: `Snapshot an account's guardian set and config, encode it
deterministically, and encrypt it to one or more age recipients. The
resulting file restores the set via "recoveryctl import" on any
daemon whose account slate is empty.

Requires a completed setup; an account with no threshold has nothing
worth sealing.`,
		Usage: "recoveryctl export --account ADDR --recipient age1... --output FILE [flags]",
		Examples: []cli.Example{
			{
				Description: "Seal a backup to two recipients",
				Command:     "recoveryctl export --account 0xa0... -r age1abc... -r age1def... -o backup.age",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(_ []string) error {
			account, err := parseAddressFlag("account", params.Account)
			if err != nil {
				return err
			}
			if len(params.Recipients) == 0 {
				return fmt.Errorf("--recipient is required")
			}
			if params.Output == "" {
				return fmt.Errorf("--output is required")
			}
			// Catch bad recipient keys before bothering the daemon.
			for _, key := range params.Recipients {
				if err := sealed.ParsePublicKey(key); err != nil {
					return err
				}
			}

			ctx, cancel := callContext()
			defer cancel()

			var bundle sealed.Bundle
			if err := params.client().Call(ctx, "guardian/export", map[string]any{"account": account}, &bundle); err != nil {
				return err
			}

			ciphertext, err := sealed.Seal(bundle, params.Recipients)
			if err != nil {
				return err
			}
			if err := os.WriteFile(params.Output, ciphertext, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", params.Output, err)
			}

			fmt.Printf("sealed %d guardians for %s to %s (%d recipients)\n",
				len(bundle.Guardians), bundle.Account, params.Output, len(params.Recipients))
			return nil
		},
	}
}

// --- import ---

type importParams struct {
	DaemonConnection
	cli.JSONOutput
	Input    string `flag:"input,i" desc:"sealed backup file"`
	Identity string `flag:"identity" desc:"age identity file ('-' to read from stdin)"`
}

type importResult struct {
	Account   addr.Address    `json:"account"`
	Guardians int             `json:"guardians"`
	Config    guardian.Config `json:"config"`
}

func importCommand() *cli.Command {
	var params importParams

	return &cli.Command{
		Name:    "import",
		Summary: "Restore a guardian set from a sealed backup",
		Description: `Decrypt a sealed backup with an age identity and replay it into the
daemon. The target account must have no guardian state; reset it
first ("guardian remove-all --reset") if a previous set exists.`,
		Usage: "recoveryctl import --input FILE --identity FILE [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("import", &params)
		},
		Run: func(_ []string) error {
			if params.Input == "" {
				return fmt.Errorf("--input is required")
			}
			if params.Identity == "" {
				return fmt.Errorf("--identity is required")
			}

			ciphertext, err := os.ReadFile(params.Input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", params.Input, err)
			}
			identity, err := secret.ReadFromPath(params.Identity)
			if err != nil {
				return fmt.Errorf("reading identity: %w", err)
			}
			defer identity.Close()

			bundle, err := sealed.Open(ciphertext, identity)
			if err != nil {
				return err
			}

			ctx, cancel := callContext()
			defer cancel()

			var result importResult
			if err := params.client().Call(ctx, "guardian/import", map[string]any{"bundle": bundle}, &result); err != nil {
				return err
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("imported %d guardians for %s\n%s\n",
				result.Guardians, result.Account, configLine(result.Config))
			return nil
		},
	}
}

// --- keygen ---

type keygenParams struct {
	Output string `flag:"output,o" desc:"path for the new identity file"`
}

func keygenCommand() *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age keypair for sealed backups",
		Description: `Generate an age x25519 keypair. The private identity is written to
--output (mode 0600, never overwriting an existing file) and the
public key is printed to stdout for use with "export --recipient".

No daemon contact; run this wherever the backup will be stored.`,
		Usage: "recoveryctl keygen --output FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("keygen", &params)
		},
		Run: func(_ []string) error {
			if params.Output == "" {
				return fmt.Errorf("--output is required")
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			// O_EXCL: silently replacing an identity file would orphan
			// every backup sealed to the old key.
			file, err := os.OpenFile(params.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return fmt.Errorf("creating %s: %w", params.Output, err)
			}
			// Write straight from the protected buffer; appending a
			// newline first would copy the key onto the heap.
			if _, err := file.Write(keypair.PrivateKey.Bytes()); err != nil {
				file.Close()
				return fmt.Errorf("writing %s: %w", params.Output, err)
			}
			if _, err := file.Write([]byte{'\n'}); err != nil {
				file.Close()
				return fmt.Errorf("writing %s: %w", params.Output, err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", params.Output, err)
			}

			fmt.Println(keypair.PublicKey)
			return nil
		},
	}
}
