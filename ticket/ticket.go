// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ticket issues and pays out delayed-unstake tickets.
//
// A ticket is a claim on the reserve for a fixed lamport amount. The derivative
// tokens are burned when the ticket is issued; the lamports stay counted in the
// pool until the claim, but are excluded from the exchange rate through the
// circulating ticket balance.
package ticket

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/state"
)

var logger = log.WithContext("pkg", "ticket")

var ticketSeed = []byte("ticket")

// Ticket is a delayed-unstake claim.
type Ticket struct {
	Address        lsd.Address `json:"address"`
	StateAddress   lsd.Address `json:"stateAddress"`
	Beneficiary    lsd.Address `json:"beneficiary"`
	LamportsAmount uint64      `json:"lamportsAmount"`
	CreatedEpoch   uint64      `json:"createdEpoch"`
	Claimed        bool        `json:"claimed"`
}

// Address derives the address of the nonce-th ticket of a pool.
func Address(stateAddr lsd.Address, nonce uint64) lsd.Address {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], nonce)
	return lsd.DeriveAddress(stateAddr, ticketSeed, b[:])
}

// DueEpoch is the first epoch the ticket can be claimed in.
func (t *Ticket) DueEpoch() uint64 {
	return t.CreatedEpoch + 1
}

// OrderUnstake burns amount derivative tokens from source and issues a ticket at
// ticketAddr for their lamport value minus the delayed-unstake fee. The
// beneficiary is the owner of source.
func OrderUnstake(
	st *state.State,
	svc ledger.Services,
	source, authority lsd.Address,
	amount uint64,
	ticketAddr lsd.Address,
) (*Ticket, *events.OrderUnstake, error) {
	if err := st.RequireNotPaused(); err != nil {
		return nil, nil, err
	}

	from, err := svc.Tokens().Account(source)
	if err != nil {
		return nil, nil, reverts.External("load token source", err)
	}
	if from.Mint != st.Mint {
		return nil, nil, errors.Wrapf(reverts.ErrInvalidMint, "token source %s holds %s", source, from.Mint)
	}
	if err := ledger.CheckTokenSource(from, authority, amount); err != nil {
		return nil, nil, err
	}

	totalVirtual := st.TotalVirtualStakedLamports()
	supply := st.TokenSupply

	value, err := st.TokenToLamports(amount)
	if err != nil {
		return nil, nil, err
	}
	// the fee is burned with the tokens but not paid out, which slightly raises
	// the value of every remaining token
	lamports := value - st.DelayedUnstakeFee.Apply(value)
	if lamports < st.MinWithdraw {
		return nil, nil, errors.Wrapf(reverts.ErrWithdrawAmountIsTooLow, "%d lamports below minimum %d", lamports, st.MinWithdraw)
	}

	ticketBalance := st.CirculatingTicketBalance
	ticketCount := st.CirculatingTicketCount
	if ticketBalance+lamports < ticketBalance {
		return nil, nil, reverts.ErrArithmeticOverflow
	}
	st.CirculatingTicketBalance += lamports
	st.CirculatingTicketCount++

	if err := svc.Tokens().Burn(st.Mint, source, authority, amount); err != nil {
		return nil, nil, reverts.External("burn derivative tokens", err)
	}
	if err := st.OnBurn(amount); err != nil {
		return nil, nil, err
	}

	epoch := svc.Epoch()
	created := epoch
	// stake moved in this epoch is not cooling down yet
	if epoch == st.LastStakeDeltaEpoch {
		created++
	}

	t := &Ticket{
		Address:        ticketAddr,
		StateAddress:   st.Address,
		Beneficiary:    from.Owner,
		LamportsAmount: lamports,
		CreatedEpoch:   created,
	}
	logger.Debug("ticket issued", "ticket", ticketAddr, "lamports", lamports, "createdEpoch", created)

	return t, &events.OrderUnstake{
		Header:                     events.Header{State: st.Address, Epoch: epoch},
		TicketEpoch:                created,
		Ticket:                     ticketAddr,
		Beneficiary:                from.Owner,
		CirculatingTicketBalance:   ticketBalance,
		CirculatingTicketCount:     ticketCount,
		UserTokenBalance:           from.Amount,
		BurnedTokenAmount:          amount,
		SolAmount:                  lamports,
		FeeBpCents:                 st.DelayedUnstakeFee.BpCents,
		TotalVirtualStakedLamports: totalVirtual,
		TokenSupply:                supply,
	}, nil
}

// Claim pays a due ticket out of the reserve to its beneficiary and marks it
// claimed.
func Claim(st *state.State, svc ledger.Services, t *Ticket) (*events.Claim, error) {
	if err := st.RequireNotPaused(); err != nil {
		return nil, err
	}
	if t.StateAddress != st.Address {
		return nil, errors.Wrapf(reverts.ErrWrongState, "ticket %s belongs to %s", t.Address, t.StateAddress)
	}
	if t.Claimed {
		return nil, errors.Wrapf(reverts.ErrTicketAlreadyClaimed, "ticket %s", t.Address)
	}
	epoch := svc.Epoch()
	if epoch < t.DueEpoch() {
		return nil, errors.Wrapf(reverts.ErrTicketNotDue, "ticket %s due at epoch %d, now %d", t.Address, t.DueEpoch(), epoch)
	}
	if t.LamportsAmount > st.AvailableReserveBalance {
		return nil, errors.Wrapf(reverts.ErrNotEnoughReserve, "reserve holds %d, ticket %d", st.AvailableReserveBalance, t.LamportsAmount)
	}
	if t.LamportsAmount > st.CirculatingTicketBalance || st.CirculatingTicketCount == 0 {
		return nil, errors.Wrap(reverts.ErrArithmeticOverflow, "ticket not accounted in circulating tickets")
	}

	userBalance, err := svc.Balance(t.Beneficiary)
	if err != nil {
		return nil, reverts.External("balance of beneficiary", err)
	}
	ev := &events.Claim{
		Header:                   events.Header{State: st.Address, Epoch: epoch},
		Ticket:                   t.Address,
		Beneficiary:              t.Beneficiary,
		CirculatingTicketBalance: st.CirculatingTicketBalance,
		CirculatingTicketCount:   st.CirculatingTicketCount,
		ReserveBalance:           st.AvailableReserveBalance,
		UserBalance:              userBalance,
		Amount:                   t.LamportsAmount,
	}

	if err := svc.Transfer(st.Reserve, t.Beneficiary, t.LamportsAmount); err != nil {
		return nil, reverts.External("transfer ticket payout", err)
	}
	st.OnTransferFromReserve(t.LamportsAmount)
	st.CirculatingTicketBalance -= t.LamportsAmount
	st.CirculatingTicketCount--
	t.Claimed = true

	logger.Debug("ticket claimed", "ticket", t.Address, "lamports", t.LamportsAmount)
	return ev, nil
}
