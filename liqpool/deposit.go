// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package liqpool

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/state"
)

// Deposit exchanges lamports from the system account from for derivative tokens
// credited to the token account mintTo. Tokens held by the pool's token leg are
// sold first, at the current exchange rate; the rest is minted against a
// deposit into the reserve.
func Deposit(
	st *state.State,
	pool *Pool,
	svc ledger.Services,
	from, mintTo lsd.Address,
	lamports uint64,
) (*events.Deposit, error) {
	if err := st.RequireNotPaused(); err != nil {
		return nil, err
	}
	if lamports < st.MinDeposit {
		return nil, errors.Wrapf(reverts.ErrDepositAmountIsTooLow, "%d lamports below minimum %d", lamports, st.MinDeposit)
	}

	userBalance, err := svc.Balance(from)
	if err != nil {
		return nil, reverts.External("balance of depositor", err)
	}
	if userBalance < lamports {
		return nil, errors.Wrapf(reverts.ErrNotEnoughUserFunds, "balance %d, deposit %d", userBalance, lamports)
	}

	tokens := svc.Tokens()
	dst, err := tokens.Account(mintTo)
	if err != nil {
		return nil, reverts.External("load token destination", err)
	}
	if dst.Mint != st.Mint {
		return nil, errors.Wrapf(reverts.ErrInvalidMint, "token destination %s holds %s", mintTo, dst.Mint)
	}
	tokenLeg, err := tokens.Account(pool.TokenLeg)
	if err != nil {
		return nil, reverts.External("load token leg", err)
	}
	solLegBalance, err := svc.Balance(pool.SolLeg)
	if err != nil {
		return nil, reverts.External("balance of sol leg", err)
	}
	reserveBalance, err := svc.Balance(st.Reserve)
	if err != nil {
		return nil, reverts.External("balance of reserve", err)
	}
	mint, err := tokens.Mint(st.Mint)
	if err != nil {
		return nil, reverts.External("load mint", err)
	}
	if mint.Supply > st.TokenSupply {
		return nil, errors.Wrapf(reverts.ErrUnregisteredMintSupply, "mint supply %d, registered %d", mint.Supply, st.TokenSupply)
	}

	totalVirtual := st.TotalVirtualStakedLamports()
	supply := st.TokenSupply

	buy, err := st.LamportsToToken(lamports)
	if err != nil {
		return nil, err
	}

	swapped := min(buy, tokenLeg.Amount)
	var solSwapped uint64
	if swapped > 0 {
		if buy == swapped {
			solSwapped = lamports
		} else if solSwapped, err = st.TokenToLamports(swapped); err != nil {
			return nil, err
		}
		solSwapped = min(solSwapped, lamports)

		if err := tokens.Transfer(pool.TokenLeg, mintTo, pool.TokenLegAuthority, swapped); err != nil {
			return nil, reverts.External("transfer from token leg", err)
		}
		if err := svc.Transfer(from, pool.SolLeg, solSwapped); err != nil {
			return nil, reverts.External("transfer to sol leg", err)
		}
	}

	deposited := lamports - solSwapped
	if deposited > 0 {
		if err := st.CheckStakingCap(deposited); err != nil {
			return nil, err
		}
		if err := svc.Transfer(from, st.Reserve, deposited); err != nil {
			return nil, reverts.External("transfer to reserve", err)
		}
		if err := st.OnTransferToReserve(deposited); err != nil {
			return nil, err
		}
	}

	minted := buy - swapped
	if minted > 0 {
		if err := tokens.MintTo(st.Mint, mintTo, st.MintAuthority, minted); err != nil {
			return nil, reverts.External("mint derivative tokens", err)
		}
		if err := st.OnMint(minted); err != nil {
			return nil, err
		}
	}

	logger.Debug("deposit", "from", from, "lamports", lamports, "swapped", swapped, "minted", minted)

	return &events.Deposit{
		Header:                     events.Header{State: st.Address, Epoch: svc.Epoch()},
		SolOwner:                   from,
		UserSolBalance:             userBalance,
		UserTokenBalance:           dst.Amount,
		SolLegBalance:              solLegBalance,
		TokenLegBalance:            tokenLeg.Amount,
		ReserveBalance:             reserveBalance,
		SolSwapped:                 solSwapped,
		TokenSwapped:               swapped,
		SolDeposited:               deposited,
		TokenMinted:                minted,
		TotalVirtualStakedLamports: totalVirtual,
		TokenSupply:                supply,
	}, nil
}
