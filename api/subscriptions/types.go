// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
)

// eventFilter selects streamed events. Empty fields match everything.
type eventFilter struct {
	contract *farm.Address
	account  *farm.Address
	names    map[string]bool
}

func parseAddressParam(values url.Values, key string) (*farm.Address, error) {
	s := values.Get(key)
	if s == "" {
		return nil, nil
	}
	addr, err := farm.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return &addr, nil
}

func parseEventFilter(values url.Values) (*eventFilter, error) {
	contract, err := parseAddressParam(values, "contract")
	if err != nil {
		return nil, err
	}
	account, err := parseAddressParam(values, "account")
	if err != nil {
		return nil, err
	}
	f := &eventFilter{contract: contract, account: account}
	for _, name := range values["name"] {
		if f.names == nil {
			f.names = make(map[string]bool)
		}
		f.names[name] = true
	}
	return f, nil
}

func (f *eventFilter) match(ev *eventdb.Event) bool {
	if f.contract != nil && *f.contract != ev.Contract {
		return false
	}
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	if f.names != nil && !f.names[ev.Name] {
		return false
	}
	return true
}
