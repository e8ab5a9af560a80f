// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

func newTestState(t *testing.T) *State {
	s, err := New(Params{
		Address:               lsd.NamedAddress("state"),
		Mint:                  lsd.NamedAddress("mint"),
		TreasuryAccount:       lsd.NamedAddress("treasury"),
		OperationalAccount:    lsd.NamedAddress("operational"),
		RewardFee:             fee.FromBasisPoints(1_000),
		DelayedUnstakeFee:     fee.FromBpCents(0),
		MinDeposit:            1,
		MinWithdraw:           1,
		StakingCap:            math.MaxUint64,
		RentExemptForTokenAcc: 2_039_280,
	})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, lsd.PriceDenominator, s.Price)
	assert.Equal(t, lsd.DeriveAddress(s.Address, lsd.ReserveSeed), s.Reserve)
	assert.Equal(t, lsd.DeriveAddress(s.Address, lsd.MintAuthoritySeed), s.MintAuthority)

	_, err := New(Params{Address: lsd.NamedAddress("state")})
	assert.True(t, errors.Is(err, reverts.ErrInvalidMint))

	_, err = New(Params{
		Address:   lsd.NamedAddress("state"),
		Mint:      lsd.NamedAddress("mint"),
		RewardFee: fee.FromBasisPoints(1_001),
	})
	assert.True(t, errors.Is(err, reverts.ErrFeeTooHigh))

	_, err = New(Params{
		Address:           lsd.NamedAddress("state"),
		Mint:              lsd.NamedAddress("mint"),
		DelayedUnstakeFee: fee.FromBpCents(2_001),
	})
	assert.True(t, errors.Is(err, reverts.ErrFeeTooHigh))
}

func TestTotalVirtualStakedLamports(t *testing.T) {
	s := newTestState(t)
	s.ActiveBalance = 1000
	s.DelayedUnstakeCoolingDown = 200
	s.EmergencyCoolingDown = 50
	s.AvailableReserveBalance = 300
	s.CirculatingTicketBalance = 150

	assert.Equal(t, uint64(1550), s.TotalLamportsUnderControl())
	assert.Equal(t, uint64(1400), s.TotalVirtualStakedLamports())

	s.CirculatingTicketBalance = 5000
	assert.Equal(t, uint64(0), s.TotalVirtualStakedLamports(), "never negative")
}

func TestConversions(t *testing.T) {
	s := newTestState(t)

	// bootstrap rate is 1:1
	v, err := s.TokenToLamports(123)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), v)
	v, err = s.LamportsToToken(123)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), v)

	s.TokenSupply = 1000
	s.AvailableReserveBalance = 1500
	v, err = s.TokenToLamports(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v, "floor(3*1500/1000)")
	v, err = s.LamportsToToken(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v, "floor(4*1000/1500)")

	s.TokenSupply = 1
	s.AvailableReserveBalance = math.MaxUint64
	_, err = s.TokenToLamports(2)
	assert.True(t, errors.Is(err, reverts.ErrArithmeticOverflow))
}

func TestRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 1000 {
		var supply, extra, x uint32
		f.Fuzz(&supply)
		f.Fuzz(&extra)
		f.Fuzz(&x)
		if supply == 0 {
			supply = 1
		}

		s := newTestState(t)
		s.TokenSupply = uint64(supply)
		s.AvailableReserveBalance = uint64(supply) + uint64(extra)

		lamports, err := s.TokenToLamports(uint64(x))
		require.NoError(t, err)
		back, err := s.LamportsToToken(lamports)
		require.NoError(t, err)

		assert.LessOrEqual(t, back, uint64(x))
		assert.LessOrEqual(t, uint64(x)-back, uint64(1), "supply=%d total=%d x=%d", supply, s.TotalVirtualStakedLamports(), x)
	}
}

func TestUpdatePrice(t *testing.T) {
	s := newTestState(t)
	s.TokenSupply = 1000
	s.AvailableReserveBalance = 1000

	change, err := s.UpdatePrice()
	require.NoError(t, err)
	assert.Equal(t, ValueChange{Old: lsd.PriceDenominator, New: lsd.PriceDenominator}, change)

	s.AvailableReserveBalance = 1100
	change, err = s.UpdatePrice()
	require.NoError(t, err)
	assert.Equal(t, lsd.PriceDenominator*11/10, change.New)
	assert.Equal(t, change.New, s.Price)
}

func TestCheckStakingCap(t *testing.T) {
	s := newTestState(t)
	s.StakingCap = 1000
	s.AvailableReserveBalance = 600
	s.CirculatingTicketBalance = 500

	assert.NoError(t, s.CheckStakingCap(400))
	assert.True(t, errors.Is(s.CheckStakingCap(401), reverts.ErrStakingIsCapped), "tickets still count against the cap")

	s.StakingCap = math.MaxUint64
	assert.True(t, errors.Is(s.CheckStakingCap(math.MaxUint64), reverts.ErrArithmeticOverflow))
}

func TestAccounting(t *testing.T) {
	s := newTestState(t)

	require.NoError(t, s.OnTransferToReserve(100))
	s.OnTransferFromReserve(30)
	assert.Equal(t, uint64(70), s.AvailableReserveBalance)
	s.OnTransferFromReserve(1000)
	assert.Equal(t, uint64(0), s.AvailableReserveBalance, "saturates at zero")

	s.AvailableReserveBalance = math.MaxUint64
	assert.True(t, errors.Is(s.OnTransferToReserve(1), reverts.ErrArithmeticOverflow))

	require.NoError(t, s.OnMint(10))
	require.NoError(t, s.OnBurn(4))
	assert.Equal(t, uint64(6), s.TokenSupply)
	assert.True(t, errors.Is(s.OnBurn(7), reverts.ErrArithmeticOverflow))

	s.DelayedUnstakeCoolingDown = 50
	s.EmergencyCoolingDown = 20
	require.NoError(t, s.OnCoolingDownWithdrawn(50, false))
	require.NoError(t, s.OnCoolingDownWithdrawn(5, true))
	assert.Equal(t, uint64(0), s.DelayedUnstakeCoolingDown)
	assert.Equal(t, uint64(15), s.EmergencyCoolingDown)
	assert.Error(t, s.OnCoolingDownWithdrawn(16, true))
}

func TestReconcile(t *testing.T) {
	s := newTestState(t)
	s.AvailableReserveBalance = 500

	s.ReconcileReserve(s.RentExemptForTokenAcc + 650)
	assert.Equal(t, uint64(650), s.AvailableReserveBalance)
	s.ReconcileReserve(10)
	assert.Equal(t, uint64(0), s.AvailableReserveBalance)

	s.TokenSupply = 100
	s.StakingCap = 1000
	assert.False(t, s.ReconcileSupply(100))
	assert.Equal(t, uint64(1000), s.StakingCap)

	assert.True(t, s.ReconcileSupply(120))
	assert.Equal(t, uint64(120), s.TokenSupply)
	assert.Equal(t, uint64(0), s.StakingCap, "over-mint freezes the cap")
}

type fakeTokens struct {
	ledger.Tokens
	accounts map[lsd.Address]*ledger.TokenAccount
}

func (f *fakeTokens) Account(addr lsd.Address) (*ledger.TokenAccount, error) {
	if acc, ok := f.accounts[addr]; ok {
		return acc, nil
	}
	return nil, ledger.ErrAccountNotFound
}

func TestTreasuryBalance(t *testing.T) {
	s := newTestState(t)
	tokens := &fakeTokens{accounts: map[lsd.Address]*ledger.TokenAccount{}}

	_, ok := s.TreasuryBalance(tokens)
	assert.False(t, ok)

	tokens.accounts[s.TreasuryAccount] = &ledger.TokenAccount{Mint: lsd.NamedAddress("other"), Amount: 5}
	_, ok = s.TreasuryBalance(tokens)
	assert.False(t, ok)

	tokens.accounts[s.TreasuryAccount] = &ledger.TokenAccount{Mint: s.Mint, Amount: 5}
	balance, ok := s.TreasuryBalance(tokens)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), balance)
}

func TestPauseResume(t *testing.T) {
	s := newTestState(t)
	assert.NoError(t, s.RequireNotPaused())
	assert.Equal(t, reverts.ErrNotPaused, s.Resume())

	require.NoError(t, s.Pause())
	assert.Equal(t, reverts.ErrProgramIsPaused, s.RequireNotPaused())
	assert.Equal(t, reverts.ErrAlreadyPaused, s.Pause())

	require.NoError(t, s.Resume())
	assert.False(t, s.Paused)
}

func TestConfigure(t *testing.T) {
	s := newTestState(t)
	reward := fee.FromBasisPoints(500)
	minDeposit := uint64(42)

	require.NoError(t, s.Configure(ConfigParams{RewardFee: &reward, MinDeposit: &minDeposit}))
	assert.Equal(t, reward, s.RewardFee)
	assert.Equal(t, minDeposit, s.MinDeposit)

	tooHigh := fee.FromBpCents(5_000)
	stakingCap := uint64(7)
	err := s.Configure(ConfigParams{DelayedUnstakeFee: &tooHigh, StakingCap: &stakingCap})
	assert.True(t, errors.Is(err, reverts.ErrFeeTooHigh))
	assert.Equal(t, uint64(math.MaxUint64), s.StakingCap, "nothing applied on failure")
}

func TestClone(t *testing.T) {
	s := newTestState(t)
	cpy := s.Clone()
	cpy.TokenSupply = 99
	assert.Equal(t, uint64(0), s.TokenSupply)
}
