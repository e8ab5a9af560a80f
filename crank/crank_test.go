// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package crank

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
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
)

const (
	tokenRent = 2_000
	stakeRent = 100
)

var (
	holder   = lsd.NamedAddress("holder")
	stakeOne = lsd.NamedAddress("stake-1")
	stakeTwo = lsd.NamedAddress("stake-2")
	voter    = lsd.NamedAddress("voter")
)

type fixture struct {
	st     *state.State
	list   *stakelist.List
	ledger *memledger.Ledger
}

// newFixture creates a pool at a 1:1 rate: 1000 tokens backed by 500 lamports
// in the reserve and 500 cooling down.
func newFixture(t *testing.T) *fixture {
	st, err := state.New(state.Params{
		Address:               lsd.NamedAddress("state"),
		Mint:                  lsd.NamedAddress("mint"),
		TreasuryAccount:       lsd.NamedAddress("treasury"),
		OperationalAccount:    lsd.NamedAddress("operational"),
		RewardFee:             fee.FromBasisPoints(1_000),
		MinDeposit:            1,
		MinWithdraw:           1,
		StakingCap:            math.MaxUint64,
		RentExemptForTokenAcc: tokenRent,
	})
	require.NoError(t, err)

	l, err := memledger.New(memledger.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	require.NoError(t, l.CreateMint(st.Mint, st.MintAuthority))
	require.NoError(t, l.CreateTokenAccount(st.TreasuryAccount, st.Mint, lsd.NamedAddress("treasury-owner"), 0))
	holderTok := lsd.NamedAddress("holder-token")
	require.NoError(t, l.CreateTokenAccount(holderTok, st.Mint, holder, 0))
	require.NoError(t, l.Tokens().MintTo(st.Mint, holderTok, st.MintAuthority, 1_000))
	require.NoError(t, l.Airdrop(st.Reserve, tokenRent+500))

	st.TokenSupply = 1_000
	st.AvailableReserveBalance = 500
	st.DelayedUnstakeCoolingDown = 500

	return &fixture{st: st, list: stakelist.New(8), ledger: l}
}

// addStake creates a delegated stake account holding lamports above rent and
// tracks it with the given baseline.
func (f *fixture) addStake(t *testing.T, addr lsd.Address, lamports, baseline uint64, emergency bool) uint32 {
	require.NoError(t, f.ledger.CreateStakeAccount(addr, stakeRent+lamports, stakeRent, f.st.StakeWithdrawAuthority))
	require.NoError(t, f.ledger.Delegate(addr, voter))
	idx, err := f.list.Append(stakelist.Record{
		StakeAccount:                addr,
		LastUpdateDelegatedLamports: baseline,
		IsEmergencyUnstaking:        emergency,
	})
	require.NoError(t, err)
	return idx
}

func (f *fixture) deactivate(t *testing.T, addr lsd.Address) {
	require.NoError(t, f.ledger.Deactivate(addr))
	f.ledger.AdvanceEpoch(1)
}

func TestUpdateDeactivatedReward(t *testing.T) {
	f := newFixture(t)
	idx := f.addStake(t, stakeOne, 520, 500, false)
	f.deactivate(t, stakeOne)

	ev, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)

	require.NotNil(t, ev.TokenFees)
	assert.Equal(t, uint64(2), *ev.TokenFees, "10% of 20 lamports of rewards at 1:1")
	assert.Equal(t, uint64(520), ev.BalanceWithoutRentExempt)
	assert.Equal(t, uint64(500), ev.LastUpdateDelegatedLamports)
	assert.Equal(t, uint64(1_000), ev.TotalVirtualStakedLamports, "pre-call aggregates")
	assert.Equal(t, uint64(1_000), ev.TokenSupply)
	assert.Equal(t, uint64(0), ev.OperationalSolBalance)
	assert.Equal(t, uint64(1), ev.Epoch)
	assert.Equal(t, fee.FromBasisPoints(1_000), ev.RewardFeeUsed)

	assert.Equal(t, uint64(1_020), f.st.AvailableReserveBalance)
	assert.Equal(t, uint64(0), f.st.DelayedUnstakeCoolingDown)
	assert.Equal(t, uint64(1_002), f.st.TokenSupply)
	assert.Equal(t, lsd.PriceDenominator, ev.PriceChange.Old)
	assert.Equal(t, lsd.PriceDenominator*1_020/1_002, ev.PriceChange.New)
	assert.Equal(t, f.st.Price, ev.PriceChange.New)
	assert.Equal(t, uint32(0), f.list.Len())

	treasury, err := f.ledger.Tokens().Account(f.st.TreasuryAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), treasury.Amount)

	operational, _ := f.ledger.Balance(f.st.OperationalAccount)
	assert.Equal(t, uint64(stakeRent), operational)
	reserve, _ := f.ledger.Balance(f.st.Reserve)
	assert.Equal(t, uint64(tokenRent+1_020), reserve)

	_, err = f.ledger.Stakes().StakeAccount(stakeOne)
	assert.Error(t, err, "stake account is closed")
}

func TestUpdateDeactivatedSlash(t *testing.T) {
	f := newFixture(t)
	idx := f.addStake(t, stakeOne, 480, 500, false)
	f.deactivate(t, stakeOne)

	ev, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)

	require.NotNil(t, ev.TokenFees)
	assert.Equal(t, uint64(0), *ev.TokenFees)
	assert.Equal(t, uint64(980), f.st.AvailableReserveBalance)
	assert.Equal(t, uint64(1_000), f.st.TokenSupply, "nothing burned")
	assert.Equal(t, lsd.PriceDenominator*980/1_000, f.st.Price)
}

func TestUpdateDeactivatedTreasuryUnavailable(t *testing.T) {
	f := newFixture(t)
	f.st.TreasuryAccount = lsd.NamedAddress("missing-treasury")
	idx := f.addStake(t, stakeOne, 520, 500, false)
	f.deactivate(t, stakeOne)

	ev, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)
	assert.Nil(t, ev.TokenFees)
	assert.Equal(t, uint64(1_000), f.st.TokenSupply)
	assert.Equal(t, uint64(1_020), f.st.AvailableReserveBalance)
}

func TestUpdateDeactivatedEmergency(t *testing.T) {
	f := newFixture(t)
	f.st.DelayedUnstakeCoolingDown = 0
	f.st.EmergencyCoolingDown = 500
	idx := f.addStake(t, stakeOne, 500, 500, true)
	f.deactivate(t, stakeOne)

	_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.st.EmergencyCoolingDown)
}

func TestUpdateDeactivatedZeroBaseline(t *testing.T) {
	f := newFixture(t)
	idx := f.addStake(t, stakeOne, 30, 0, false)
	f.deactivate(t, stakeOne)

	ev, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), *ev.TokenFees)
	assert.Equal(t, uint64(500), f.st.DelayedUnstakeCoolingDown, "counters untouched")
	assert.Equal(t, uint64(530), f.st.AvailableReserveBalance)
}

func TestUpdateDeactivatedSwapRemove(t *testing.T) {
	f := newFixture(t)
	f.st.DelayedUnstakeCoolingDown = 1_000
	first := f.addStake(t, stakeOne, 500, 500, false)
	f.addStake(t, stakeTwo, 500, 500, false)
	f.deactivate(t, stakeOne)

	_, err := UpdateDeactivated(f.st, f.list, f.ledger, first, stakeOne)
	require.NoError(t, err)

	r, err := f.list.Get(0)
	require.NoError(t, err)
	assert.Equal(t, stakeTwo, r.StakeAccount, "last record moved into the freed slot")
}

func TestUpdateDeactivatedRejects(t *testing.T) {
	t.Run("paused", func(t *testing.T) {
		f := newFixture(t)
		idx := f.addStake(t, stakeOne, 500, 500, false)
		require.NoError(t, f.st.Pause())
		_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
		assert.Equal(t, reverts.ErrProgramIsPaused, err)
	})

	t.Run("identity", func(t *testing.T) {
		f := newFixture(t)
		idx := f.addStake(t, stakeOne, 500, 500, false)
		_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeTwo)
		assert.True(t, errors.Is(err, reverts.ErrStakeIndexMismatch))
		_, err = UpdateDeactivated(f.st, f.list, f.ledger, idx+1, stakeOne)
		assert.True(t, errors.Is(err, reverts.ErrStakeIndexOutOfRange))
	})

	t.Run("active", func(t *testing.T) {
		f := newFixture(t)
		idx := f.addStake(t, stakeOne, 500, 500, false)
		_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
		assert.True(t, errors.Is(err, reverts.ErrRequiredDeactivatingStake))
	})

	t.Run("undelegated", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ledger.CreateStakeAccount(stakeOne, stakeRent+500, stakeRent, f.st.StakeWithdrawAuthority))
		idx, err := f.list.Append(stakelist.Record{StakeAccount: stakeOne})
		require.NoError(t, err)
		_, err = UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
		assert.True(t, errors.Is(err, reverts.ErrRequiredDelegatedStake))
	})

	t.Run("cooling down", func(t *testing.T) {
		f := newFixture(t)
		idx := f.addStake(t, stakeOne, 500, 500, false)
		require.NoError(t, f.ledger.Deactivate(stakeOne))
		_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
		kind, ok := reverts.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, reverts.ExternalService, kind)
	})
}

func TestUpdateDeactivatedReconciles(t *testing.T) {
	f := newFixture(t)
	idx := f.addStake(t, stakeOne, 500, 500, false)
	f.deactivate(t, stakeOne)

	// tokens minted outside of the pool and a reserve shortfall
	outsider := lsd.NamedAddress("outsider-token")
	require.NoError(t, f.ledger.CreateTokenAccount(outsider, f.st.Mint, holder, 0))
	require.NoError(t, f.ledger.Tokens().MintTo(f.st.Mint, outsider, f.st.MintAuthority, 10))
	f.st.AvailableReserveBalance = 700

	_, err := UpdateDeactivated(f.st, f.list, f.ledger, idx, stakeOne)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.st.StakingCap, "cap frozen")
	assert.Equal(t, uint64(1_010), f.st.TokenSupply)
	assert.Equal(t, uint64(1_000), f.st.AvailableReserveBalance, "reserve taken from the vault")
}
