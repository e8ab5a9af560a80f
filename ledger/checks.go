// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

// CheckTokenSource verifies that authority may move amount out of acc: a delegate
// needs enough allowance, otherwise authority must be the owner and hold enough
// tokens.
func CheckTokenSource(acc *TokenAccount, authority lsd.Address, amount uint64) error {
	if acc.Delegate != nil && *acc.Delegate == authority {
		if acc.DelegatedAmount < amount {
			return errors.Wrapf(reverts.ErrInsufficientDelegatedToken, "delegated %d, requested %d", acc.DelegatedAmount, amount)
		}
		return nil
	}
	if acc.Owner != authority {
		return errors.Wrapf(reverts.ErrAuthorityMismatch, "%s is neither owner nor delegate of %s", authority, acc.Address)
	}
	if acc.Amount < amount {
		return errors.Wrapf(reverts.ErrInsufficientTokenBalance, "balance %d, requested %d", acc.Amount, amount)
	}
	return nil
}
