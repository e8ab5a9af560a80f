// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package liqpool

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/state"
)

// LiquidUnstake swaps amount derivative tokens from source for lamports out of
// the sol leg, paid to solTo. The fee is charged in tokens, retained by the token
// leg except for the treasury cut.
func LiquidUnstake(
	st *state.State,
	pool *Pool,
	svc ledger.Services,
	source, authority, solTo lsd.Address,
	amount uint64,
) (*events.LiquidUnstake, error) {
	if err := st.RequireNotPaused(); err != nil {
		return nil, err
	}

	tokens := svc.Tokens()
	from, err := tokens.Account(source)
	if err != nil {
		return nil, reverts.External("load token source", err)
	}
	if from.Mint != st.Mint {
		return nil, errors.Wrapf(reverts.ErrInvalidMint, "token source %s holds %s", source, from.Mint)
	}
	if err := ledger.CheckTokenSource(from, authority, amount); err != nil {
		return nil, err
	}

	userSolBalance, err := svc.Balance(solTo)
	if err != nil {
		return nil, reverts.External("balance of recipient", err)
	}
	tokenLeg, err := tokens.Account(pool.TokenLeg)
	if err != nil {
		return nil, reverts.External("load token leg", err)
	}
	solLegBalance, err := svc.Balance(pool.SolLeg)
	if err != nil {
		return nil, reverts.External("balance of sol leg", err)
	}
	var treasuryBalance *uint64
	if b, ok := st.TreasuryBalance(tokens); ok {
		treasuryBalance = &b
	}

	available := saturatingSub(solLegBalance, st.RentExemptForTokenAcc)
	remove, err := st.TokenToLamports(amount)
	if err != nil {
		return nil, err
	}
	// the fee is priced on the liquidity left after the swap
	var f fee.Fee
	if remove >= available {
		f = pool.MaxFee
	} else {
		f = pool.LinearFee(available - remove)
	}

	tokenFee := f.Apply(amount)
	working, err := st.TokenToLamports(amount - tokenFee)
	if err != nil {
		return nil, err
	}
	if working+st.RentExemptForTokenAcc < working || working+st.RentExemptForTokenAcc > solLegBalance {
		return nil, errors.Wrapf(reverts.ErrInsufficientLiquidity, "sol leg holds %d, swap needs %d", solLegBalance, working)
	}
	if working < st.MinWithdraw {
		return nil, errors.Wrapf(reverts.ErrWithdrawAmountIsTooLow, "%d lamports below minimum %d", working, st.MinWithdraw)
	}

	if working > 0 {
		if err := svc.Transfer(pool.SolLeg, solTo, working); err != nil {
			return nil, reverts.External("transfer from sol leg", err)
		}
	}

	var cut uint64
	if treasuryBalance != nil {
		cut = pool.TreasuryCut.Apply(tokenFee)
	}
	if err := tokens.Transfer(source, pool.TokenLeg, authority, amount-cut); err != nil {
		return nil, reverts.External("transfer to token leg", err)
	}
	if cut > 0 {
		if err := tokens.Transfer(source, st.TreasuryAccount, authority, cut); err != nil {
			return nil, reverts.External("transfer treasury cut", err)
		}
	}

	logger.Debug("liquid unstake", "source", source, "tokens", amount, "lamports", working, "fee", f)

	return &events.LiquidUnstake{
		Header:               events.Header{State: st.Address, Epoch: svc.Epoch()},
		TokenOwner:           from.Owner,
		TokenAmount:          amount,
		SolLegBalance:        solLegBalance,
		TokenLegBalance:      tokenLeg.Amount,
		TreasuryTokenBalance: treasuryBalance,
		UserTokenBalance:     from.Amount,
		UserSolBalance:       userSolBalance,
		TokenFee:             tokenFee,
		TreasuryTokenCut:     cut,
		SolAmount:            working,
		LiquidityTarget:      pool.LiquidityTarget,
		MaxFee:               pool.MaxFee,
		MinFee:               pool.MinFee,
		TreasuryCut:          pool.TreasuryCut,
	}, nil
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
