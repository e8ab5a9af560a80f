// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/stakehouse/lsd/log"
)

var logger = log.WithContext("pkg", "events")

// Sink receives events of committed operations. Emit must not fail the caller:
// a sink that cannot handle an event drops it.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Noop drops every event.
var Noop Sink = SinkFunc(func(Event) {})

// Multi fans events out to several sinks, in order.
type Multi []Sink

func (m Multi) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// LogSink logs every event at debug level, with the fields operators usually
// look for at info level.
type LogSink struct{}

func (LogSink) Emit(ev Event) {
	h := ev.Meta()
	ctx := []any{"kind", ev.Kind(), "state", h.State, "epoch", h.Epoch}
	switch e := ev.(type) {
	case *Deposit:
		ctx = append(ctx, "owner", e.SolOwner, "deposited", e.SolDeposited, "swapped", e.SolSwapped, "minted", e.TokenMinted)
	case *LiquidUnstake:
		ctx = append(ctx, "owner", e.TokenOwner, "tokens", e.TokenAmount, "fee", e.TokenFee, "lamports", e.SolAmount)
	case *OrderUnstake:
		ctx = append(ctx, "ticket", e.Ticket, "burned", e.BurnedTokenAmount, "lamports", e.SolAmount, "ticketEpoch", e.TicketEpoch)
	case *Claim:
		ctx = append(ctx, "ticket", e.Ticket, "beneficiary", e.Beneficiary, "lamports", e.Amount)
	case *UpdateDeactivated:
		ctx = append(ctx, "stake", e.StakeAccount, "index", e.StakeIndex, "price", e.PriceChange.New)
		if e.TokenFees != nil {
			ctx = append(ctx, "fees", *e.TokenFees)
		}
	case *Pause, *Resume, *ConfigStader, *ConfigLp:
		logger.Info("admin event", ctx...)
		return
	}
	logger.Debug("event", ctx...)
}
