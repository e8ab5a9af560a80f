// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/reverts"
)

// OnTransferToReserve accounts lamports moved into the reserve vault.
func (s *State) OnTransferToReserve(amount uint64) error {
	balance, ok := checkedAdd(s.AvailableReserveBalance, amount)
	if !ok {
		return reverts.ErrArithmeticOverflow
	}
	s.AvailableReserveBalance = balance
	return nil
}

// OnTransferFromReserve accounts lamports moved out of the reserve vault. The
// counter floors at zero.
func (s *State) OnTransferFromReserve(amount uint64) {
	if amount > s.AvailableReserveBalance {
		s.AvailableReserveBalance = 0
		return
	}
	s.AvailableReserveBalance -= amount
}

// OnMint accounts freshly minted derivative tokens.
func (s *State) OnMint(amount uint64) error {
	supply, ok := checkedAdd(s.TokenSupply, amount)
	if !ok {
		return reverts.ErrArithmeticOverflow
	}
	s.TokenSupply = supply
	return nil
}

// OnBurn accounts burned derivative tokens.
func (s *State) OnBurn(amount uint64) error {
	if amount > s.TokenSupply {
		return errors.Wrapf(reverts.ErrArithmeticOverflow, "burn %d above supply %d", amount, s.TokenSupply)
	}
	s.TokenSupply -= amount
	return nil
}

// OnCoolingDownWithdrawn removes a withdrawn stake from the cooling-down counter
// it was accounted in.
func (s *State) OnCoolingDownWithdrawn(amount uint64, emergency bool) error {
	counter := &s.DelayedUnstakeCoolingDown
	if emergency {
		counter = &s.EmergencyCoolingDown
	}
	if amount > *counter {
		return errors.Wrapf(reverts.ErrArithmeticOverflow, "cooling down %d below withdrawn %d", *counter, amount)
	}
	*counter -= amount
	return nil
}

// ReconcileReserve replaces the tracked reserve with the balance the reserve vault
// actually holds, minus its rent-exempt floor.
func (s *State) ReconcileReserve(vaultLamports uint64) {
	expected := saturatingAdd(s.AvailableReserveBalance, s.RentExemptForTokenAcc)
	if vaultLamports < expected {
		logger.Warn("reserve below tracked balance", "expected", expected, "actual", vaultLamports)
	}
	if vaultLamports < s.RentExemptForTokenAcc {
		s.AvailableReserveBalance = 0
		return
	}
	s.AvailableReserveBalance = vaultLamports - s.RentExemptForTokenAcc
}

// ReconcileSupply replaces the tracked token supply with the mint's supply. A mint
// supply above the tracked one means tokens were minted outside of the pool: the
// staking cap is frozen to zero.
func (s *State) ReconcileSupply(mintSupply uint64) bool {
	overMinted := mintSupply > s.TokenSupply
	if overMinted {
		logger.Warn("derivative token minted outside of the pool", "excess", mintSupply-s.TokenSupply)
		s.StakingCap = 0
	}
	s.TokenSupply = mintSupply
	return overMinted
}

// TreasuryBalance returns the token balance of the treasury account. The second
// result is false if the account cannot receive tokens of the pool's mint; fees
// routed to the treasury are skipped in that case.
func (s *State) TreasuryBalance(tokens ledger.Tokens) (uint64, bool) {
	acc, err := tokens.Account(s.TreasuryAccount)
	if err != nil {
		logger.Warn("treasury token account unavailable", "account", s.TreasuryAccount, "err", err)
		return 0, false
	}
	if acc.Mint != s.Mint {
		logger.Warn("treasury token account has wrong mint", "account", s.TreasuryAccount, "mint", acc.Mint)
		return 0, false
	}
	return acc.Amount, true
}
