// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/lsd"
)

const sampleConfig = `
name: test-pool
epoch: 10
reward_fee: 5%
delayed_unstake_fee: 0.1%
min_deposit: 1000
staking_cap: 1000000
treasury_owner: dao
reserve: 10
pool:
  max_fee: 2.5%
  liquidity_target: 500
  liquidity: 200
accounts:
  - name: alice
    lamports: 100.5
    tokens: 40
  - name: bob
    lamports: 3
stakes:
  - name: stake-1
    lamports: 50
`

const sol = lsd.LamportsPerSol

func TestSol(t *testing.T) {
	tests := []struct {
		text    string
		want    Sol
		wantErr bool
	}{
		{"1", Sol(sol), false},
		{"0.000000001", 1, false},
		{"100.5", Sol(100*sol + sol/2), false},
		{"0.0000000001", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"18446744074", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var s Sol
			err := s.UnmarshalText([]byte(tt.text))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
	assert.Equal(t, "100.5", Sol(100*sol+sol/2).String())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "test-pool", cfg.Name)
	assert.Equal(t, fee.FromBasisPoints(500), cfg.RewardFee)
	assert.Equal(t, fee.FromBasisPoints(10), cfg.DelayedUnstakeFee)
	assert.Equal(t, Sol(1_000_000*sol), cfg.StakingCap)
	assert.Equal(t, fee.FromBasisPoints(250), *cfg.Pool.MaxFee)
	assert.Equal(t, fee.FromBasisPoints(30), *cfg.Pool.MinFee, "default")
	assert.Equal(t, DefaultTokenAccountRent, cfg.TokenAccountRent)
	assert.Equal(t, "voter", cfg.Stakes[0].Voter)

	cfg, err = Parse([]byte("name: x"))
	require.NoError(t, err)
	assert.Equal(t, Sol(math.MaxUint64), cfg.StakingCap, "uncapped by default")

	_, err = Parse([]byte("accounts: [{name: a}, {name: a}]"))
	assert.Error(t, err)
	_, err = Parse([]byte("stakes: [{name: s}]"))
	assert.Error(t, err)
	_, err = Parse([]byte("reward_fee: lots"))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	l, err := memledger.New(memledger.Options{Epoch: cfg.Epoch})
	require.NoError(t, err)
	defer l.Close()

	g, err := Build(cfg, l)
	require.NoError(t, err)

	st := g.State
	assert.Equal(t, lsd.NamedAddress("test-pool"), st.Address)
	assert.Equal(t, 40*sol, st.TokenSupply)
	assert.Equal(t, 50*sol, st.AvailableReserveBalance)
	assert.Equal(t, 50*sol, st.ActiveBalance)
	assert.Equal(t, 100*sol, st.TotalVirtualStakedLamports())
	assert.Equal(t, lsd.PriceDenominator*5/2, st.Price, "100 lamports of value per 40 tokens")

	alice := g.Wallets["alice"]
	assert.Equal(t, lsd.NamedAddress("alice"), alice.Address)
	acc, err := l.Tokens().Account(alice.TokenAccount)
	require.NoError(t, err)
	assert.Equal(t, 40*sol, acc.Amount)
	b, err := l.Balance(alice.Address)
	require.NoError(t, err)
	assert.Equal(t, 100*sol+sol/2, b)

	b, err = l.Balance(st.Reserve)
	require.NoError(t, err)
	assert.Equal(t, cfg.TokenAccountRent+50*sol, b)
	b, err = l.Balance(g.Pool.SolLeg)
	require.NoError(t, err)
	assert.Equal(t, cfg.TokenAccountRent+200*sol, b)

	balance, ok := st.TreasuryBalance(l.Tokens())
	assert.True(t, ok)
	assert.Zero(t, balance)

	require.Equal(t, uint32(1), g.Stakes.Len())
	rec, err := g.Stakes.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 50*sol, rec.LastUpdateDelegatedLamports)
	assert.Equal(t, uint64(10), rec.LastUpdateEpoch)
	stake, err := l.Stakes().StakeAccount(rec.StakeAccount)
	require.NoError(t, err)
	assert.Equal(t, st.StakeWithdrawAuthority, stake.Withdrawer)
	require.NotNil(t, stake.Delegation)
	assert.Equal(t, 50*sol, stake.Delegation.Stake)
}

func TestBuildTwiceFails(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	l, err := memledger.New(memledger.Options{})
	require.NoError(t, err)
	defer l.Close()

	_, err = Build(cfg, l)
	require.NoError(t, err)
	_, err = Build(cfg, l)
	assert.ErrorIs(t, err, memledger.ErrAccountExists)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Accounts, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
