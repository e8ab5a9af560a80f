// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ticket

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/state"
)

const tokenRent = 2_000

var (
	user     = lsd.NamedAddress("user")
	userTok  = lsd.NamedAddress("user-token")
	delegate = lsd.NamedAddress("delegate")
)

func newPool(t *testing.T) (*state.State, *memledger.Ledger) {
	st, err := state.New(state.Params{
		Address:               lsd.NamedAddress("state"),
		Mint:                  lsd.NamedAddress("mint"),
		TreasuryAccount:       lsd.NamedAddress("treasury"),
		OperationalAccount:    lsd.NamedAddress("operational"),
		DelayedUnstakeFee:     fee.FromBpCents(1_000),
		MinDeposit:            1,
		MinWithdraw:           1_000,
		StakingCap:            math.MaxUint64,
		RentExemptForTokenAcc: tokenRent,
	})
	require.NoError(t, err)

	l, err := memledger.New(memledger.Options{Epoch: 5})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	require.NoError(t, l.CreateMint(st.Mint, st.MintAuthority))
	require.NoError(t, l.CreateTokenAccount(userTok, st.Mint, user, 0))
	require.NoError(t, l.Tokens().MintTo(st.Mint, userTok, st.MintAuthority, 1_000_000))
	require.NoError(t, l.Airdrop(st.Reserve, tokenRent+1_000_000))
	st.TokenSupply = 1_000_000
	st.AvailableReserveBalance = 1_000_000
	return st, l
}

func TestAddressIsUnique(t *testing.T) {
	s := lsd.NamedAddress("state")
	assert.NotEqual(t, Address(s, 1), Address(s, 2))
	assert.NotEqual(t, Address(s, 1), Address(lsd.NamedAddress("other"), 1))
	assert.Equal(t, Address(s, 1), Address(s, 1))
}

func TestOrderUnstake(t *testing.T) {
	st, l := newPool(t)
	addr := Address(st.Address, 0)

	tk, ev, err := OrderUnstake(st, l, userTok, user, 100_000, addr)
	require.NoError(t, err)

	assert.Equal(t, &Ticket{
		Address:        addr,
		StateAddress:   st.Address,
		Beneficiary:    user,
		LamportsAmount: 99_900,
		CreatedEpoch:   5,
	}, tk)

	assert.Equal(t, uint64(0), ev.CirculatingTicketBalance, "pre-increment")
	assert.Equal(t, uint64(0), ev.CirculatingTicketCount, "pre-increment")
	assert.Equal(t, uint64(1_000_000), ev.UserTokenBalance)
	assert.Equal(t, uint64(100_000), ev.BurnedTokenAmount)
	assert.Equal(t, uint64(99_900), ev.SolAmount)
	assert.Equal(t, uint32(1_000), ev.FeeBpCents)
	assert.Equal(t, uint64(1_000_000), ev.TotalVirtualStakedLamports)
	assert.Equal(t, uint64(1_000_000), ev.TokenSupply)

	assert.Equal(t, uint64(99_900), st.CirculatingTicketBalance)
	assert.Equal(t, uint64(1), st.CirculatingTicketCount)
	assert.Equal(t, uint64(900_000), st.TokenSupply)
	assert.Equal(t, uint64(900_100), st.TotalVirtualStakedLamports(), "the fee stays in the pool")

	mint, err := l.Tokens().Mint(st.Mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(900_000), mint.Supply)
}

func TestOrderUnstakeEpochRule(t *testing.T) {
	tests := []struct {
		name      string
		lastDelta uint64
		want      uint64
	}{
		{"stake moved this epoch", 5, 6},
		{"stake moved earlier", 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, l := newPool(t)
			st.LastStakeDeltaEpoch = tt.lastDelta
			tk, ev, err := OrderUnstake(st, l, userTok, user, 10_000, Address(st.Address, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tk.CreatedEpoch)
			assert.Equal(t, tt.want, ev.TicketEpoch)
			assert.Equal(t, tt.want+1, tk.DueEpoch())
		})
	}
}

func TestOrderUnstakeRejects(t *testing.T) {
	st, l := newPool(t)
	addr := Address(st.Address, 0)

	_, _, err := OrderUnstake(st, l, userTok, user, 1_000, addr)
	assert.True(t, errors.Is(err, reverts.ErrWithdrawAmountIsTooLow), "999 lamports after fee")

	_, _, err = OrderUnstake(st, l, userTok, delegate, 10_000, addr)
	assert.True(t, errors.Is(err, reverts.ErrAuthorityMismatch))

	_, _, err = OrderUnstake(st, l, userTok, user, 1_000_001, addr)
	assert.True(t, errors.Is(err, reverts.ErrInsufficientTokenBalance))

	require.NoError(t, l.Approve(userTok, user, delegate, 5_000))
	_, _, err = OrderUnstake(st, l, userTok, delegate, 10_000, addr)
	assert.True(t, errors.Is(err, reverts.ErrInsufficientDelegatedToken))

	other := lsd.NamedAddress("other-mint")
	otherTok := lsd.NamedAddress("other-token")
	require.NoError(t, l.CreateMint(other, user))
	require.NoError(t, l.CreateTokenAccount(otherTok, other, user, 0))
	_, _, err = OrderUnstake(st, l, otherTok, user, 10_000, addr)
	assert.True(t, errors.Is(err, reverts.ErrInvalidMint))

	require.NoError(t, st.Pause())
	_, _, err = OrderUnstake(st, l, userTok, user, 10_000, addr)
	assert.Equal(t, reverts.ErrProgramIsPaused, err)

	assert.Equal(t, uint64(0), st.CirculatingTicketCount, "rejected orders change nothing")
	assert.Equal(t, uint64(1_000_000), st.TokenSupply)
}

func TestOrderUnstakeByDelegate(t *testing.T) {
	st, l := newPool(t)
	require.NoError(t, l.Approve(userTok, user, delegate, 50_000))

	tk, _, err := OrderUnstake(st, l, userTok, delegate, 50_000, Address(st.Address, 0))
	require.NoError(t, err)
	assert.Equal(t, user, tk.Beneficiary, "the owner is the beneficiary")

	acc, err := l.Tokens().Account(userTok)
	require.NoError(t, err)
	assert.Equal(t, uint64(950_000), acc.Amount)
	assert.Zero(t, acc.DelegatedAmount)
}

func TestClaim(t *testing.T) {
	st, l := newPool(t)
	st.LastStakeDeltaEpoch = 5
	tk, _, err := OrderUnstake(st, l, userTok, user, 100_000, Address(st.Address, 0))
	require.NoError(t, err)

	l.AdvanceEpoch(1)
	_, err = Claim(st, l, tk)
	assert.True(t, errors.Is(err, reverts.ErrTicketNotDue))
	assert.True(t, reverts.IsRetryable(err))

	l.AdvanceEpoch(1)
	ev, err := Claim(st, l, tk)
	require.NoError(t, err)

	assert.Equal(t, uint64(99_900), ev.Amount)
	assert.Equal(t, uint64(99_900), ev.CirculatingTicketBalance)
	assert.Equal(t, uint64(1), ev.CirculatingTicketCount)
	assert.Equal(t, uint64(1_000_000), ev.ReserveBalance)
	assert.Equal(t, uint64(0), ev.UserBalance)
	assert.Equal(t, uint64(7), ev.Epoch)

	assert.True(t, tk.Claimed)
	assert.Equal(t, uint64(0), st.CirculatingTicketBalance)
	assert.Equal(t, uint64(0), st.CirculatingTicketCount)
	assert.Equal(t, uint64(900_100), st.AvailableReserveBalance)

	balance, _ := l.Balance(user)
	assert.Equal(t, uint64(99_900), balance)

	_, err = Claim(st, l, tk)
	assert.True(t, errors.Is(err, reverts.ErrTicketAlreadyClaimed))
}

func TestClaimRejects(t *testing.T) {
	st, l := newPool(t)
	tk, _, err := OrderUnstake(st, l, userTok, user, 100_000, Address(st.Address, 0))
	require.NoError(t, err)
	l.AdvanceEpoch(1)

	st.AvailableReserveBalance = 99_899
	_, err = Claim(st, l, tk)
	assert.True(t, errors.Is(err, reverts.ErrNotEnoughReserve))
	kind, _ := reverts.KindOf(err)
	assert.Equal(t, reverts.InsufficientFunds, kind)
	st.AvailableReserveBalance = 1_000_000

	foreign := *tk
	foreign.StateAddress = lsd.NamedAddress("other-state")
	_, err = Claim(st, l, &foreign)
	assert.True(t, errors.Is(err, reverts.ErrWrongState))

	require.NoError(t, st.Pause())
	_, err = Claim(st, l, tk)
	assert.Equal(t, reverts.ErrProgramIsPaused, err)
	assert.False(t, tk.Claimed)
}
