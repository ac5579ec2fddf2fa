// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/subject"
)

// ownersFile is the YAML shape of the owners file: account addresses
// mapped to their ordered owner lists. Order matters; the recovery
// data hash commits to each owner's predecessor in this list.
//
//	accounts:
//	  "0x9146...c3af":
//	    - "0x1111111111111111111111111111111111111111"
//	    - "0x2222222222222222222222222222222222222222"
type ownersFile struct {
	Accounts map[string][]string `yaml:"accounts"`
}

// loadOwners reads the static owner sets the validator queries during
// recovery checks. An empty path means no owners are configured and
// returns an empty provider.
func loadOwners(path string) (subject.StaticOwners, error) {
	owners := subject.StaticOwners{}
	if path == "" {
		return owners, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file ownersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for rawAccount, rawOwners := range file.Accounts {
		account, err := addr.Parse(rawAccount)
		if err != nil {
			return nil, fmt.Errorf("%s: account %q: %w", path, rawAccount, err)
		}
		if account.IsZero() {
			return nil, fmt.Errorf("%s: the zero address cannot have owners", path)
		}
		if len(rawOwners) == 0 {
			return nil, fmt.Errorf("%s: account %s has no owners", path, account)
		}

		list := make([]addr.Address, 0, len(rawOwners))
		seen := make(map[addr.Address]struct{}, len(rawOwners))
		for i, rawOwner := range rawOwners {
			owner, err := addr.Parse(rawOwner)
			if err != nil {
				return nil, fmt.Errorf("%s: account %s: owners[%d]: %w", path, account, i, err)
			}
			if owner.IsZero() {
				return nil, fmt.Errorf("%s: account %s: owners[%d] is the zero address", path, account, i)
			}
			if _, dup := seen[owner]; dup {
				return nil, fmt.Errorf("%s: account %s: owners[%d] duplicates %s", path, account, i, owner)
			}
			seen[owner] = struct{}{}
			list = append(list, owner)
		}
		owners[account] = list
	}
	return owners, nil
}
