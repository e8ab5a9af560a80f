// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps a pool on a fresh ledger from a Config.
package genesis

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
)

var logger = log.WithContext("pkg", "genesis")

// Wallet is a genesis account with its derivative token account.
type Wallet struct {
	Address      lsd.Address `json:"address"`
	TokenAccount lsd.Address `json:"tokenAccount"`
}

// Genesis holds the records of a bootstrapped pool.
type Genesis struct {
	State   *state.State
	Stakes  *stakelist.List
	Pool    *liqpool.Pool
	Wallets map[string]Wallet
}

// TokenAccountOf derives the token account of owner for mint.
func TokenAccountOf(owner, mint lsd.Address) lsd.Address {
	return lsd.DeriveAddress(owner, mint.Bytes())
}

// Build creates the accounts of the pool described by cfg on l, in one atomic
// unit, and returns the pool records.
func Build(cfg *Config, l *memledger.Ledger) (*Genesis, error) {
	stateAddr := lsd.NamedAddress(cfg.Name)
	st, err := state.New(state.Params{
		Address:               stateAddr,
		Mint:                  lsd.DeriveAddress(stateAddr, lsd.DerivativeMintSeed),
		TreasuryAccount:       lsd.DeriveAddress(stateAddr, lsd.TreasuryTokenAccountSeed),
		OperationalAccount:    lsd.DeriveAddress(stateAddr, lsd.OperationalSolAccountSeed),
		RewardFee:             cfg.RewardFee,
		DelayedUnstakeFee:     cfg.DelayedUnstakeFee,
		MinDeposit:            cfg.MinDeposit,
		MinWithdraw:           cfg.MinWithdraw,
		StakingCap:            cfg.StakingCap.Lamports(),
		RentExemptForTokenAcc: cfg.TokenAccountRent,
	})
	if err != nil {
		return nil, errors.Wrap(err, "state")
	}
	pool, err := liqpool.New(stateAddr, liqpool.Params{
		MinFee:          *cfg.Pool.MinFee,
		MaxFee:          *cfg.Pool.MaxFee,
		LiquidityTarget: cfg.Pool.LiquidityTarget.Lamports(),
		TreasuryCut:     *cfg.Pool.TreasuryCut,
	})
	if err != nil {
		return nil, errors.Wrap(err, "liquidity pool")
	}

	g := &Genesis{
		State:   st,
		Stakes:  stakelist.New(cfg.StakeListCapacity),
		Pool:    pool,
		Wallets: make(map[string]Wallet, len(cfg.Accounts)),
	}
	if err := l.Atomic(func() error { return g.build(cfg, l) }); err != nil {
		return nil, err
	}
	if _, err := st.UpdatePrice(); err != nil {
		return nil, err
	}
	logger.Info("pool created", "name", cfg.Name, "state", stateAddr, "supply", st.TokenSupply, "price", st.Price)
	return g, nil
}

func (g *Genesis) build(cfg *Config, l *memledger.Ledger) error {
	st := g.State
	rent := cfg.TokenAccountRent

	if err := l.CreateMint(st.Mint, st.MintAuthority); err != nil {
		return err
	}
	if err := l.Airdrop(st.Reserve, rent+cfg.Reserve.Lamports()); err != nil {
		return err
	}
	if err := st.OnTransferToReserve(cfg.Reserve.Lamports()); err != nil {
		return err
	}
	if cfg.TreasuryOwner != "" {
		if err := l.CreateTokenAccount(st.TreasuryAccount, st.Mint, lsd.NamedAddress(cfg.TreasuryOwner), rent); err != nil {
			return errors.Wrap(err, "treasury")
		}
	}

	if err := l.Airdrop(g.Pool.SolLeg, rent+cfg.Pool.Liquidity.Lamports()); err != nil {
		return err
	}
	if err := l.CreateTokenAccount(g.Pool.TokenLeg, st.Mint, g.Pool.TokenLegAuthority, rent); err != nil {
		return err
	}

	for _, a := range cfg.Accounts {
		w := Wallet{Address: lsd.NamedAddress(a.Name)}
		w.TokenAccount = TokenAccountOf(w.Address, st.Mint)
		if err := l.Airdrop(w.Address, a.Lamports.Lamports()); err != nil {
			return errors.Wrapf(err, "account %s", a.Name)
		}
		if err := l.CreateTokenAccount(w.TokenAccount, st.Mint, w.Address, rent); err != nil {
			return errors.Wrapf(err, "account %s", a.Name)
		}
		if tokens := a.Tokens.Lamports(); tokens > 0 {
			// genesis tokens are backed at par by the reserve
			if err := l.Airdrop(st.Reserve, tokens); err != nil {
				return err
			}
			if err := st.OnTransferToReserve(tokens); err != nil {
				return err
			}
			if err := l.Tokens().MintTo(st.Mint, w.TokenAccount, st.MintAuthority, tokens); err != nil {
				return errors.Wrapf(err, "account %s", a.Name)
			}
			if err := st.OnMint(tokens); err != nil {
				return err
			}
		}
		g.Wallets[a.Name] = w
	}

	for _, s := range cfg.Stakes {
		addr := lsd.NamedAddress(s.Name)
		lamports := s.Lamports.Lamports()
		if err := l.CreateStakeAccount(addr, cfg.StakeAccountRent+lamports, cfg.StakeAccountRent, st.StakeWithdrawAuthority); err != nil {
			return errors.Wrapf(err, "stake %s", s.Name)
		}
		if err := l.Delegate(addr, lsd.NamedAddress(s.Voter)); err != nil {
			return errors.Wrapf(err, "stake %s", s.Name)
		}
		if _, err := g.Stakes.Append(stakelist.Record{
			StakeAccount:                addr,
			LastUpdateDelegatedLamports: lamports,
			LastUpdateEpoch:             l.Epoch(),
		}); err != nil {
			return err
		}
		st.ActiveBalance += lamports
	}
	return nil
}
