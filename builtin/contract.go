// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/firofarm/chef/farm"
)

type contract struct {
	name    string
	Address farm.Address
}

func newContract(name string) *contract {
	return &contract{
		name,
		farm.BytesToAddress([]byte(name)),
	}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}
