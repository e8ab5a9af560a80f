// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
)

// stakes implements ledger.Stakes.
type stakes struct {
	l *Ledger
}

func (s stakes) StakeAccount(addr lsd.Address) (*ledger.StakeAccount, error) {
	acc, err := s.l.mustGet(addr, kindStake)
	if err != nil {
		return nil, err
	}
	return acc.toStakeAccount(addr), nil
}

// Withdraw moves lamports out of a stake account. Delegated stake becomes
// withdrawable the epoch after its deactivation epoch. A fully withdrawn stake
// account is closed.
func (s stakes) Withdraw(stake, to, authority lsd.Address, amount uint64) error {
	return s.l.Atomic(func() error {
		acc, err := s.l.mustGet(stake, kindStake)
		if err != nil {
			return err
		}
		if acc.Stake.Withdrawer != authority {
			return errors.Wrapf(ErrInvalidAuthority, "%s is not the withdrawer of %s", authority, stake)
		}
		if d := acc.Stake.Delegation; d != nil {
			if d.DeactivationEpoch == lsd.NoDeactivation || s.l.epoch <= d.DeactivationEpoch {
				return errors.Wrapf(ErrStakeNotWithdrawable, "%s is active or cooling down at epoch %d", stake, s.l.epoch)
			}
		}
		if acc.Lamports < amount {
			return errors.Wrapf(ErrInsufficientLamports, "%s holds %d, withdraw %d", stake, acc.Lamports, amount)
		}
		remaining := acc.Lamports - amount
		if remaining != 0 && remaining < acc.Stake.RentExemptReserve {
			return errors.Wrapf(ErrInsufficientLamports, "withdraw would leave %s below its rent exempt reserve", stake)
		}

		if remaining == 0 {
			s.l.put(stake, nil)
		} else {
			acc.Lamports = remaining
			s.l.put(stake, acc)
		}
		return s.l.credit(to, amount)
	})
}
