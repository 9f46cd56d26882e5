// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/xenv"
)

// Event is a stored contract event.
type Event struct {
	ID       int64             `json:"id"`
	Number   uint64            `json:"number"`
	Time     uint64            `json:"time"`
	Op       string            `json:"op"`
	Caller   farm.Address      `json:"caller"`
	Contract farm.Address      `json:"contract"`
	Name     string            `json:"name"`
	Account  farm.Address      `json:"account"`
	Args     map[string]string `json:"args"`
}

// NewEvent converts an event emitted by a call into its stored form.
func NewEvent(op string, caller farm.Address, ev *xenv.Event) *Event {
	return &Event{
		Number:   ev.Number,
		Time:     ev.Time,
		Op:       op,
		Caller:   caller,
		Contract: ev.Contract,
		Name:     ev.Name,
		Account:  ev.Account,
		Args:     ev.Args,
	}
}

type RangeType string

const (
	Number RangeType = "number"
	Time   RangeType = "time"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	Contract *farm.Address `json:"contract"`
	Account  *farm.Address `json:"account"`
	Names    []string      `json:"names"`
	Order    OrderType     `json:"order"` // default asc
	Range    *Range        `json:"range"`
	Options  *Options      `json:"options"`
}
