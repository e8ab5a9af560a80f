// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/lsd"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range selects events by epoch, inclusive. A To below From is open-ended.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects journaled events. Every set field narrows the result.
type Filter struct {
	Kinds   []events.Kind `json:"kinds"`
	State   *lsd.Address  `json:"state"`
	Account *lsd.Address  `json:"account"`
	Range   *Range        `json:"range"`
	Order   Order         `json:"order"` // default asc
	Options *Options      `json:"options"`
}

// Record is a journaled event.
type Record struct {
	Seq     uint64       `json:"seq"`
	Kind    events.Kind  `json:"kind"`
	State   lsd.Address  `json:"state"`
	Epoch   uint64       `json:"epoch"`
	Account *lsd.Address `json:"account,omitempty"`
	Event   events.Event `json:"event"`
}

// accountOf returns the account an event is about, the one filtered on by
// Filter.Account.
func accountOf(ev events.Event) *lsd.Address {
	var addr lsd.Address
	switch e := ev.(type) {
	case *events.Deposit:
		addr = e.SolOwner
	case *events.LiquidUnstake:
		addr = e.TokenOwner
	case *events.OrderUnstake:
		addr = e.Beneficiary
	case *events.Claim:
		addr = e.Beneficiary
	case *events.UpdateDeactivated:
		addr = e.StakeAccount
	default:
		return nil
	}
	return &addr
}
