// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/stakehouse/lsd/crank"
	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/state"
	"github.com/stakehouse/lsd/ticket"
)

// Deposit exchanges lamports of from for derivative tokens credited to mintTo.
func (e *Engine) Deposit(from, mintTo lsd.Address, lamports uint64) (*events.Deposit, error) {
	ev, err := e.run("deposit", func() (events.Event, error) {
		return liqpool.Deposit(e.st, e.pool, e.ledger, from, mintTo, lamports)
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.Deposit), nil
}

// LiquidUnstake swaps tokens of source for lamports paid to solTo through the
// liquidity pool.
func (e *Engine) LiquidUnstake(source, authority, solTo lsd.Address, amount uint64) (*events.LiquidUnstake, error) {
	ev, err := e.run("liquid_unstake", func() (events.Event, error) {
		return liqpool.LiquidUnstake(e.st, e.pool, e.ledger, source, authority, solTo, amount)
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.LiquidUnstake), nil
}

// OrderUnstake burns tokens of source and issues a delayed-unstake ticket to its
// owner.
func (e *Engine) OrderUnstake(source, authority lsd.Address, amount uint64) (*events.OrderUnstake, error) {
	ev, err := e.run("order_unstake", func() (events.Event, error) {
		addr := ticket.Address(e.st.Address, e.nonce)
		t, ev, err := ticket.OrderUnstake(e.st, e.ledger, source, authority, amount, addr)
		if err != nil {
			return nil, err
		}
		e.nonce++
		e.tickets[addr] = t
		return ev, nil
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.OrderUnstake), nil
}

// Claim pays out the ticket at addr.
func (e *Engine) Claim(addr lsd.Address) (*events.Claim, error) {
	ev, err := e.run("claim", func() (events.Event, error) {
		t, ok := e.tickets[addr]
		if !ok {
			return nil, ErrTicketNotFound
		}
		return ticket.Claim(e.st, e.ledger, t)
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.Claim), nil
}

// UpdateDeactivated reconciles the deactivated stake at index.
func (e *Engine) UpdateDeactivated(index uint32, stakeAccount lsd.Address) (*events.UpdateDeactivated, error) {
	ev, err := e.run("update_deactivated", func() (events.Event, error) {
		return crank.UpdateDeactivated(e.st, e.list, e.ledger, index, stakeAccount)
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.UpdateDeactivated), nil
}

// Pause halts user operations.
func (e *Engine) Pause() (*events.Pause, error) {
	ev, err := e.run("pause", func() (events.Event, error) {
		if err := e.st.Pause(); err != nil {
			return nil, err
		}
		return &events.Pause{Header: e.header()}, nil
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.Pause), nil
}

// Resume re-enables user operations.
func (e *Engine) Resume() (*events.Resume, error) {
	ev, err := e.run("resume", func() (events.Event, error) {
		if err := e.st.Resume(); err != nil {
			return nil, err
		}
		return &events.Resume{Header: e.header()}, nil
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.Resume), nil
}

// ConfigStader updates the pool configuration. The event lists the fields that
// were set.
func (e *Engine) ConfigStader(p state.ConfigParams) (*events.ConfigStader, error) {
	ev, err := e.run("config_stader", func() (events.Event, error) {
		old := *e.st
		if err := e.st.Configure(p); err != nil {
			return nil, err
		}
		ev := &events.ConfigStader{Header: e.header()}
		if p.RewardFee != nil {
			ev.RewardFee = &events.FeeChange{Old: old.RewardFee, New: e.st.RewardFee}
		}
		if p.DelayedUnstakeFee != nil {
			ev.DelayedUnstakeFee = &events.FeeChange{Old: old.DelayedUnstakeFee, New: e.st.DelayedUnstakeFee}
		}
		if p.MinDeposit != nil {
			ev.MinDeposit = &state.ValueChange{Old: old.MinDeposit, New: e.st.MinDeposit}
		}
		if p.MinWithdraw != nil {
			ev.MinWithdraw = &state.ValueChange{Old: old.MinWithdraw, New: e.st.MinWithdraw}
		}
		if p.StakingCap != nil {
			ev.StakingCap = &state.ValueChange{Old: old.StakingCap, New: e.st.StakingCap}
		}
		return ev, nil
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.ConfigStader), nil
}

// ConfigLp updates the liquidity pool configuration. The event lists the fields
// that were set.
func (e *Engine) ConfigLp(p liqpool.ConfigParams) (*events.ConfigLp, error) {
	ev, err := e.run("config_lp", func() (events.Event, error) {
		old := *e.pool
		if err := e.pool.Configure(p); err != nil {
			return nil, err
		}
		ev := &events.ConfigLp{Header: e.header()}
		if p.MinFee != nil {
			ev.MinFee = feeChange(old.MinFee, e.pool.MinFee)
		}
		if p.MaxFee != nil {
			ev.MaxFee = feeChange(old.MaxFee, e.pool.MaxFee)
		}
		if p.LiquidityTarget != nil {
			ev.LiquidityTarget = &state.ValueChange{Old: old.LiquidityTarget, New: e.pool.LiquidityTarget}
		}
		if p.TreasuryCut != nil {
			ev.TreasuryCut = feeChange(old.TreasuryCut, e.pool.TreasuryCut)
		}
		return ev, nil
	})
	if err != nil {
		return nil, err
	}
	return ev.(*events.ConfigLp), nil
}

func (e *Engine) header() events.Header {
	return events.Header{State: e.st.Address, Epoch: e.ledger.Epoch()}
}

func feeChange(from, to fee.Fee) *events.FeeChange {
	return &events.FeeChange{Old: from, New: to}
}
