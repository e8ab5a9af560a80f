// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/lsd"
)

// The functions below stand in for the account-creation and staking programs
// the engine does not implement. Each one is atomic.

func (l *Ledger) create(addr lsd.Address, acc *account) error {
	existing, err := l.get(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(ErrAccountExists, "%s", addr)
	}
	l.put(addr, acc)
	return nil
}

// Airdrop credits lamports to addr out of thin air. The account is created as a
// system account if it does not exist.
func (l *Ledger) Airdrop(addr lsd.Address, lamports uint64) error {
	return l.Atomic(func() error {
		return l.credit(addr, lamports)
	})
}

// CreateMint creates an empty token mint.
func (l *Ledger) CreateMint(addr, authority lsd.Address) error {
	return l.Atomic(func() error {
		return l.create(addr, &account{Kind: kindMint, Mint: &mintData{Authority: authority}})
	})
}

// CreateTokenAccount creates an empty token account of mint holding rent lamports.
func (l *Ledger) CreateTokenAccount(addr, mint, owner lsd.Address, rent uint64) error {
	return l.Atomic(func() error {
		if _, err := l.mustGet(mint, kindMint); err != nil {
			return err
		}
		return l.create(addr, &account{
			Kind:     kindToken,
			Lamports: rent,
			Token:    &tokenData{Mint: mint, Owner: owner},
		})
	})
}

// Approve lets delegate move up to amount tokens out of a token account. A zero
// amount revokes the delegate.
func (l *Ledger) Approve(addr, owner, delegate lsd.Address, amount uint64) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(addr, kindToken)
		if err != nil {
			return err
		}
		if acc.Token.Owner != owner {
			return errors.Wrapf(ErrInvalidAuthority, "%s is not the owner of %s", owner, addr)
		}
		if amount == 0 {
			acc.Token.Delegate = nil
		} else {
			acc.Token.Delegate = &delegate
		}
		acc.Token.DelegatedAmount = amount
		l.put(addr, acc)
		return nil
	})
}

// CreateStakeAccount creates an undelegated stake account.
func (l *Ledger) CreateStakeAccount(addr lsd.Address, lamports, rentExemptReserve uint64, withdrawer lsd.Address) error {
	return l.Atomic(func() error {
		if lamports < rentExemptReserve {
			return errors.Wrapf(ErrInsufficientLamports, "stake account %s below its rent exempt reserve", addr)
		}
		return l.create(addr, &account{
			Kind:     kindStake,
			Lamports: lamports,
			Stake:    &stakeData{RentExemptReserve: rentExemptReserve, Withdrawer: withdrawer},
		})
	})
}

// SetWithdrawer changes the withdraw authority of a stake account.
func (l *Ledger) SetWithdrawer(stake, withdrawer lsd.Address) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		acc.Stake.Withdrawer = withdrawer
		l.put(stake, acc)
		return nil
	})
}

// Delegate delegates every lamport above the rent exempt reserve to voter,
// starting at the current epoch.
func (l *Ledger) Delegate(stake, voter lsd.Address) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		if acc.Stake.Delegation != nil {
			return errors.Wrapf(ErrAccountExists, "%s is already delegated", stake)
		}
		acc.Stake.Delegation = &delegationData{
			Voter:             voter,
			Stake:             acc.Lamports - acc.Stake.RentExemptReserve,
			ActivationEpoch:   l.epoch,
			DeactivationEpoch: lsd.NoDeactivation,
		}
		l.put(stake, acc)
		return nil
	})
}

// Deactivate requests deactivation of a delegated stake at the current epoch.
func (l *Ledger) Deactivate(stake lsd.Address) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		d := acc.Stake.Delegation
		if d == nil {
			return errors.Wrapf(ErrStakeNotWithdrawable, "%s is not delegated", stake)
		}
		if d.DeactivationEpoch == lsd.NoDeactivation {
			d.DeactivationEpoch = l.epoch
		}
		l.put(stake, acc)
		return nil
	})
}

// Reward adds staking rewards to a stake account.
func (l *Ledger) Reward(stake lsd.Address, lamports uint64) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		if acc.Lamports+lamports < acc.Lamports {
			return errors.Wrapf(ErrOverflow, "reward %d to %s", lamports, stake)
		}
		acc.Lamports += lamports
		if d := acc.Stake.Delegation; d != nil {
			d.Stake += lamports
		}
		l.put(stake, acc)
		return nil
	})
}

// Slash removes lamports from a stake account, never below its rent exempt
// reserve.
func (l *Ledger) Slash(stake lsd.Address, lamports uint64) error {
	return l.Atomic(func() error {
		acc, err := l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		staked := acc.Lamports - acc.Stake.RentExemptReserve
		if lamports > staked {
			lamports = staked
		}
		acc.Lamports -= lamports
		if d := acc.Stake.Delegation; d != nil {
			if lamports > d.Stake {
				d.Stake = 0
			} else {
				d.Stake -= lamports
			}
		}
		l.put(stake, acc)
		return nil
	})
}
