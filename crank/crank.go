// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package crank reconciles stake accounts whose delegation was deactivated.
package crank

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
)

var logger = log.WithContext("pkg", "crank")

// UpdateDeactivated collects a deactivated stake account into the reserve:
// rewards earned since the last update are charged the reward fee, the whole
// balance is withdrawn to the reserve, the rent exempt lamports move to the
// operational account and the record is removed from the list.
//
// Losses are absorbed by every holder through the exchange rate; nothing is
// burned.
func UpdateDeactivated(
	st *state.State,
	list *stakelist.List,
	svc ledger.Services,
	stakeIndex uint32,
	stakeAccount lsd.Address,
) (*events.UpdateDeactivated, error) {
	if err := st.RequireNotPaused(); err != nil {
		return nil, err
	}

	totalVirtual := st.TotalVirtualStakedLamports()
	supply := st.TokenSupply
	operationalBalance, err := svc.Balance(st.OperationalAccount)
	if err != nil {
		return nil, reverts.External("balance of operational account", err)
	}

	treasuryReady, err := begin(st, svc)
	if err != nil {
		return nil, err
	}

	record, err := list.GetChecked(stakeIndex, stakeAccount)
	if err != nil {
		return nil, err
	}

	stake, err := svc.Stakes().StakeAccount(stakeAccount)
	if err != nil {
		return nil, reverts.External("load stake account", err)
	}
	if stake.Delegation == nil {
		return nil, errors.Wrapf(reverts.ErrRequiredDelegatedStake, "stake %s", stakeAccount)
	}
	if !stake.Delegation.IsDeactivating() {
		return nil, errors.Wrapf(reverts.ErrRequiredDeactivatingStake, "stake %s", stakeAccount)
	}

	// lamports above rent are compared with the last observed delegation instead
	// of Delegation.Stake: a redelegated account keeps its original stake there
	rent := stake.RentExemptReserve
	balance := saturatingSub(stake.Lamports, rent)

	var tokenFees *uint64
	if balance >= record.LastUpdateDelegatedLamports {
		rewards := balance - record.LastUpdateDelegatedLamports
		logger.Debug("staking rewards", "stake", stakeAccount, "rewards", rewards)
		if treasuryReady {
			fees, err := mintProtocolFees(st, svc, rewards)
			if err != nil {
				return nil, err
			}
			tokenFees = &fees
		}
	} else {
		slashed := record.LastUpdateDelegatedLamports - balance
		logger.Debug("stake slashed", "stake", stakeAccount, "slashed", slashed)
		if treasuryReady {
			zero := uint64(0)
			tokenFees = &zero
		}
	}

	if err := withdrawToReserve(st, svc, stakeAccount, stake.Lamports); err != nil {
		return nil, err
	}
	// the rent part funds the future recreation of this slot's account
	if err := svc.Transfer(st.Reserve, st.OperationalAccount, rent); err != nil {
		return nil, reverts.External("transfer rent to operational account", err)
	}
	st.OnTransferFromReserve(rent)

	if record.LastUpdateDelegatedLamports != 0 {
		if err := st.OnCoolingDownWithdrawn(record.LastUpdateDelegatedLamports, record.IsEmergencyUnstaking); err != nil {
			return nil, err
		}
	}

	// rewards received while deactivating are now in the reserve
	priceChange, err := st.UpdatePrice()
	if err != nil {
		return nil, err
	}

	if err := list.Remove(stakeIndex); err != nil {
		return nil, err
	}

	return &events.UpdateDeactivated{
		Header:                      events.Header{State: st.Address, Epoch: svc.Epoch()},
		StakeIndex:                  stakeIndex,
		StakeAccount:                stakeAccount,
		BalanceWithoutRentExempt:    balance,
		LastUpdateDelegatedLamports: record.LastUpdateDelegatedLamports,
		TokenFees:                   tokenFees,
		PriceChange:                 priceChange,
		RewardFeeUsed:               st.RewardFee,
		OperationalSolBalance:       operationalBalance,
		TotalVirtualStakedLamports:  totalVirtual,
		TokenSupply:                 supply,
	}, nil
}

// begin reconciles the tracked reserve and supply with the ledger and reports
// whether the treasury can receive fees.
func begin(st *state.State, svc ledger.Services) (bool, error) {
	_, treasuryReady := st.TreasuryBalance(svc.Tokens())

	reserve, err := svc.Balance(st.Reserve)
	if err != nil {
		return false, reverts.External("balance of reserve", err)
	}
	st.ReconcileReserve(reserve)

	mint, err := svc.Tokens().Mint(st.Mint)
	if err != nil {
		return false, reverts.External("load derivative mint", err)
	}
	st.ReconcileSupply(mint.Supply)
	return treasuryReady, nil
}

// mintProtocolFees charges the reward fee on rewards, at the price before the
// rewards are accounted, and mints it to the treasury. It returns the minted
// token amount.
func mintProtocolFees(st *state.State, svc ledger.Services, rewards uint64) (uint64, error) {
	feeLamports := st.RewardFee.Apply(rewards)
	logger.Debug("protocol rewards fee", "lamports", feeLamports)

	tokens, err := st.LamportsToToken(feeLamports)
	if err != nil {
		return 0, err
	}
	if tokens == 0 {
		return 0, nil
	}
	if err := svc.Tokens().MintTo(st.Mint, st.TreasuryAccount, st.MintAuthority, tokens); err != nil {
		return 0, reverts.External("mint protocol fees", err)
	}
	if err := st.OnMint(tokens); err != nil {
		return 0, err
	}
	return tokens, nil
}

func withdrawToReserve(st *state.State, svc ledger.Services, stakeAccount lsd.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := svc.Stakes().Withdraw(stakeAccount, st.Reserve, st.StakeWithdrawAuthority, amount); err != nil {
		return reverts.External("withdraw stake to reserve", err)
	}
	return st.OnTransferToReserve(amount)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
