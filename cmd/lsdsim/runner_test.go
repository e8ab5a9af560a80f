// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/lsd/eventdb"
	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

func TestBasicScenario(t *testing.T) {
	sc, err := loadScenario(filepath.Join("scenarios", "basic.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "basic", sc.Name)

	l, err := memledger.New(memledger.Options{})
	require.NoError(t, err)
	defer l.Close()
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	s, err := newSim(sc, l, db)
	require.NoError(t, err)
	steps := 0
	require.NoError(t, s.run(context.Background(), func() { steps++ }))
	assert.Equal(t, len(sc.Steps), steps)

	st := s.eng.State()
	assert.Empty(t, s.eng.Stakes(), "the cranked stake is removed")
	assert.Zero(t, st.DelayedUnstakeCoolingDown)
	assert.Zero(t, st.CirculatingTicketCount)
	assert.Equal(t, fee.FromBasisPoints(500), st.RewardFee)
	assert.Equal(t, uint64(1000), st.MinDeposit)
	assert.Equal(t, fee.FromBasisPoints(50), s.eng.Pool().MinFee)
	value, err := st.TokenToLamports(lsd.PriceDenominator)
	require.NoError(t, err)
	assert.Greater(t, value, lsd.PriceDenominator, "rewards raised the price")

	treasury, ok := st.TreasuryBalance(l.Tokens())
	require.True(t, ok)
	assert.Greater(t, treasury, uint64(0), "reward fees and liquid unstake cut")

	records, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	counts := make(map[events.Kind]int)
	for _, r := range records {
		counts[r.Kind]++
	}
	assert.Equal(t, map[events.Kind]int{
		events.KindDeposit:           3,
		events.KindUpdateDeactivated: 1,
		events.KindLiquidUnstake:     1,
		events.KindOrderUnstake:      1,
		events.KindClaim:             1,
		events.KindPause:             1,
		events.KindResume:            1,
		events.KindConfigStader:      1,
		events.KindConfigLp:          1,
	}, counts)

	var swap *events.Deposit
	for _, r := range records {
		if d, ok := r.Event.(*events.Deposit); ok {
			swap = d
		}
	}
	require.NotNil(t, swap)
	assert.Zero(t, swap.TokenMinted, "the second deposit of bob is filled by the pool")
	assert.NotZero(t, swap.TokenSwapped)

	assert.Contains(t, s.summary(), "basic")
}

func TestExpect(t *testing.T) {
	paused := errors.Wrap(reverts.ErrProgramIsPaused, "deposit")
	tests := []struct {
		name   string
		expect string
		err    error
		ok     bool
	}{
		{"success", "", nil, true},
		{"unexpected failure", "", paused, false},
		{"unexpected success", "paused", nil, false},
		{"kind", "paused", paused, true},
		{"fragment", "is paused", paused, true},
		{"mismatch", "insufficient-funds", paused, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := expect(Step{Expect: tt.expect}, tt.err)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadScenarioRejects(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	_, err := loadScenario(write("op.yaml", "steps: [{op: teleport}]"))
	assert.ErrorContains(t, err, "unknown op")

	_, err = loadScenario(write("genesis.yaml", "genesis: {accounts: [{name: a}, {name: a}]}"))
	assert.ErrorContains(t, err, "duplicate account")

	sc, err := loadScenario(write("unnamed.yaml", "steps: [{op: pause}]"))
	require.NoError(t, err)
	assert.Equal(t, "unnamed", sc.Name)
	assert.Equal(t, "lsd", sc.Genesis.Name, "genesis defaults applied")
}

func TestUnknownAccountFails(t *testing.T) {
	sc, err := loadScenario(filepath.Join("scenarios", "basic.yaml"))
	require.NoError(t, err)
	sc.Steps = []Step{{Op: opDeposit, Account: "carol", Amount: 1}}

	l, err := memledger.New(memledger.Options{})
	require.NoError(t, err)
	defer l.Close()
	s, err := newSim(sc, l, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.run(context.Background(), func() {}), "unknown account")
}
