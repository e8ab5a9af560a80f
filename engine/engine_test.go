// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
	"github.com/stakehouse/lsd/ticket"
)

const (
	tokenRent = 2_000
	sol       = lsd.LamportsPerSol
)

var (
	user    = lsd.NamedAddress("user")
	userTok = lsd.NamedAddress("user-token")
)

type collector struct {
	events []events.Event
}

func (c *collector) Emit(ev events.Event) { c.events = append(c.events, ev) }

func (c *collector) kinds() []events.Kind {
	var out []events.Kind
	for _, ev := range c.events {
		out = append(out, ev.Kind())
	}
	return out
}

func newEngine(t *testing.T) (*Engine, *memledger.Ledger, *collector) {
	st, err := state.New(state.Params{
		Address:               lsd.NamedAddress("state"),
		Mint:                  lsd.NamedAddress("mint"),
		TreasuryAccount:       lsd.NamedAddress("treasury"),
		OperationalAccount:    lsd.NamedAddress("operational"),
		MinDeposit:            1,
		MinWithdraw:           1,
		StakingCap:            math.MaxUint64,
		RentExemptForTokenAcc: tokenRent,
	})
	require.NoError(t, err)
	pool, err := liqpool.New(st.Address, liqpool.Params{
		MinFee:          fee.FromBpCents(3_000),
		MaxFee:          fee.FromBpCents(30_000),
		LiquidityTarget: 100 * sol,
		TreasuryCut:     fee.FromBpCents(250_000),
	})
	require.NoError(t, err)

	l, err := memledger.New(memledger.Options{Epoch: 3})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	require.NoError(t, l.CreateMint(st.Mint, st.MintAuthority))
	require.NoError(t, l.CreateTokenAccount(userTok, st.Mint, user, tokenRent))
	require.NoError(t, l.CreateTokenAccount(pool.TokenLeg, st.Mint, pool.TokenLegAuthority, tokenRent))
	require.NoError(t, l.Airdrop(user, 1_000*sol))
	require.NoError(t, l.Airdrop(pool.SolLeg, tokenRent))
	require.NoError(t, l.Airdrop(st.Reserve, tokenRent))

	c := &collector{}
	return New(st, stakelist.New(16), pool, l, c), l, c
}

func TestDepositAndCopies(t *testing.T) {
	e, l, c := newEngine(t)

	ev, err := e.Deposit(user, userTok, 100*sol)
	require.NoError(t, err)
	assert.Equal(t, 100*sol, ev.TokenMinted)
	assert.Equal(t, []events.Kind{events.KindDeposit}, c.kinds())

	st := e.State()
	assert.Equal(t, 100*sol, st.TokenSupply)
	st.TokenSupply = 0
	assert.Equal(t, 100*sol, e.State().TokenSupply, "accessors return copies")

	p := e.Pool()
	p.LiquidityTarget = 0
	assert.Equal(t, 100*sol, e.Pool().LiquidityTarget)

	b, err := l.Balance(user)
	require.NoError(t, err)
	assert.Equal(t, 900*sol, b)
}

func TestFailedOperationChangesNothing(t *testing.T) {
	e, l, c := newEngine(t)
	_, err := e.Deposit(user, userTok, 100*sol)
	require.NoError(t, err)
	before := e.State()

	boom := errors.New("boom")
	err = e.ApplyExternal(func(st *state.State, list *stakelist.List) error {
		st.ActiveBalance += 5 * sol
		st.Paused = true
		if _, err := list.Append(stakelist.Record{StakeAccount: lsd.NamedAddress("stake")}); err != nil {
			return err
		}
		if err := l.Transfer(user, lsd.NamedAddress("sink"), sol); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	assert.Equal(t, before, e.State())
	assert.Empty(t, e.Stakes())
	b, err := l.Balance(user)
	require.NoError(t, err)
	assert.Equal(t, 900*sol, b, "ledger rolled back with the records")
	assert.Len(t, c.events, 1, "no event for failed operations")

	// a failed ticket order does not consume the ticket nonce
	_, err = e.OrderUnstake(userTok, user, 101*sol)
	assert.True(t, errors.Is(err, reverts.ErrInsufficientTokenBalance))
	ev, err := e.OrderUnstake(userTok, user, 10*sol)
	require.NoError(t, err)
	assert.Equal(t, ticket.Address(before.Address, 0), ev.Ticket)
}

func TestTicketLifecycle(t *testing.T) {
	e, l, c := newEngine(t)
	_, err := e.Deposit(user, userTok, 100*sol)
	require.NoError(t, err)

	order, err := e.OrderUnstake(userTok, user, 10*sol)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), order.TicketEpoch)

	tk, err := e.Ticket(order.Ticket)
	require.NoError(t, err)
	assert.Equal(t, 10*sol, tk.LamportsAmount)
	assert.Equal(t, []ticket.Ticket{*tk}, e.Tickets(&user))
	other := lsd.NamedAddress("other")
	assert.Empty(t, e.Tickets(&other))

	_, err = e.Claim(order.Ticket)
	assert.True(t, errors.Is(err, reverts.ErrTicketNotDue))
	assert.True(t, reverts.IsRetryable(err))

	l.AdvanceEpoch(1)
	claim, err := e.Claim(order.Ticket)
	require.NoError(t, err)
	assert.Equal(t, 10*sol, claim.Amount)
	assert.Equal(t, 900*sol, claim.UserBalance)

	tk, err = e.Ticket(order.Ticket)
	require.NoError(t, err)
	assert.True(t, tk.Claimed)
	_, err = e.Claim(order.Ticket)
	assert.True(t, errors.Is(err, reverts.ErrTicketAlreadyClaimed))

	_, err = e.Claim(lsd.NamedAddress("missing"))
	assert.True(t, errors.Is(err, ErrTicketNotFound))
	_, err = e.Ticket(lsd.NamedAddress("missing"))
	assert.True(t, errors.Is(err, ErrTicketNotFound))

	st := e.State()
	assert.Zero(t, st.CirculatingTicketBalance)
	assert.Zero(t, st.CirculatingTicketCount)
	assert.Equal(t, 90*sol, st.AvailableReserveBalance)
	b, err := l.Balance(user)
	require.NoError(t, err)
	assert.Equal(t, 910*sol, b)

	assert.Equal(t, []events.Kind{events.KindDeposit, events.KindOrderUnstake, events.KindClaim}, c.kinds())
}

func TestPauseResume(t *testing.T) {
	e, _, c := newEngine(t)

	_, err := e.Pause()
	require.NoError(t, err)
	_, err = e.Pause()
	assert.True(t, errors.Is(err, reverts.ErrAlreadyPaused))

	_, err = e.Deposit(user, userTok, sol)
	assert.True(t, errors.Is(err, reverts.ErrProgramIsPaused))

	ev, err := e.Resume()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ev.Epoch)
	_, err = e.Deposit(user, userTok, sol)
	assert.NoError(t, err)

	assert.Equal(t, []events.Kind{events.KindPause, events.KindResume, events.KindDeposit}, c.kinds())
}

func TestConfig(t *testing.T) {
	e, _, _ := newEngine(t)

	rewardFee := fee.FromBasisPoints(500)
	minDeposit := uint64(42)
	ev, err := e.ConfigStader(state.ConfigParams{RewardFee: &rewardFee, MinDeposit: &minDeposit})
	require.NoError(t, err)
	assert.Equal(t, &events.FeeChange{Old: fee.Fee{}, New: rewardFee}, ev.RewardFee)
	assert.Equal(t, &state.ValueChange{Old: 1, New: 42}, ev.MinDeposit)
	assert.Nil(t, ev.StakingCap)
	assert.Equal(t, rewardFee, e.State().RewardFee)

	tooHigh := fee.FromBasisPoints(1_001)
	_, err = e.ConfigStader(state.ConfigParams{RewardFee: &tooHigh})
	assert.True(t, errors.Is(err, reverts.ErrFeeTooHigh))
	assert.Equal(t, rewardFee, e.State().RewardFee)

	target := 80 * sol
	lp, err := e.ConfigLp(liqpool.ConfigParams{LiquidityTarget: &target})
	require.NoError(t, err)
	assert.Equal(t, &state.ValueChange{Old: 100 * sol, New: 80 * sol}, lp.LiquidityTarget)
	assert.Nil(t, lp.MinFee)

	low := uint64(1)
	_, err = e.ConfigLp(liqpool.ConfigParams{LiquidityTarget: &low})
	assert.True(t, errors.Is(err, reverts.ErrLiquidityTargetTooLow))
	assert.Equal(t, 80*sol, e.Pool().LiquidityTarget)
}
