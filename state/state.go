// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

var logger = log.WithContext("pkg", "state")

var (
	// MaxRewardFee caps the protocol fee taken from staking rewards.
	MaxRewardFee = fee.FromBasisPoints(1_000) // 10%
	// MaxDelayedUnstakeFee caps the anti-arbitrage fee of delayed unstake tickets.
	MaxDelayedUnstakeFee = fee.FromBpCents(2_000) // 0.2%
)

// State is the protocol state of one pool instance: aggregate counters feeding the
// exchange rate and the pool configuration.
type State struct {
	Address                lsd.Address `json:"address"`
	Mint                   lsd.Address `json:"mint"`
	MintAuthority          lsd.Address `json:"mintAuthority"`
	Reserve                lsd.Address `json:"reserve"`
	StakeWithdrawAuthority lsd.Address `json:"stakeWithdrawAuthority"`
	TreasuryAccount        lsd.Address `json:"treasuryAccount"`
	OperationalAccount     lsd.Address `json:"operationalAccount"`

	AvailableReserveBalance   uint64 `json:"availableReserveBalance"`
	ActiveBalance             uint64 `json:"activeBalance"`
	DelayedUnstakeCoolingDown uint64 `json:"delayedUnstakeCoolingDown"`
	EmergencyCoolingDown      uint64 `json:"emergencyCoolingDown"`
	TokenSupply               uint64 `json:"tokenSupply"`
	CirculatingTicketBalance  uint64 `json:"circulatingTicketBalance"`
	CirculatingTicketCount    uint64 `json:"circulatingTicketCount"`
	// Price is the derived snapshot TokenToLamports(PriceDenominator), kept for
	// observers only. Conversions always use the live counters.
	Price               uint64 `json:"price"`
	LastStakeDeltaEpoch uint64 `json:"lastStakeDeltaEpoch"`

	RewardFee             fee.Fee `json:"rewardFee"`
	DelayedUnstakeFee     fee.Fee `json:"delayedUnstakeFee"`
	MinDeposit            uint64  `json:"minDeposit"`
	MinWithdraw           uint64  `json:"minWithdraw"`
	StakingCap            uint64  `json:"stakingCap"`
	RentExemptForTokenAcc uint64  `json:"rentExemptForTokenAcc"`
	Paused                bool    `json:"paused"`
}

// Params are the initialization parameters of a pool.
type Params struct {
	Address               lsd.Address
	Mint                  lsd.Address
	TreasuryAccount       lsd.Address
	OperationalAccount    lsd.Address
	RewardFee             fee.Fee
	DelayedUnstakeFee     fee.Fee
	MinDeposit            uint64
	MinWithdraw           uint64
	StakingCap            uint64
	RentExemptForTokenAcc uint64
}

// New creates the state of a fresh pool. Vault and authority addresses are derived
// from the state address.
func New(p Params) (*State, error) {
	if p.Address.IsZero() {
		return nil, errors.New("state address is required")
	}
	if p.Mint.IsZero() {
		return nil, reverts.ErrInvalidMint
	}
	if err := checkRewardFee(p.RewardFee); err != nil {
		return nil, err
	}
	if err := checkDelayedUnstakeFee(p.DelayedUnstakeFee); err != nil {
		return nil, err
	}

	return &State{
		Address:                p.Address,
		Mint:                   p.Mint,
		MintAuthority:          lsd.DeriveAddress(p.Address, lsd.MintAuthoritySeed),
		Reserve:                lsd.DeriveAddress(p.Address, lsd.ReserveSeed),
		StakeWithdrawAuthority: lsd.DeriveAddress(p.Address, lsd.StakeWithdrawSeed),
		TreasuryAccount:        p.TreasuryAccount,
		OperationalAccount:     p.OperationalAccount,

		Price: lsd.PriceDenominator,

		RewardFee:             p.RewardFee,
		DelayedUnstakeFee:     p.DelayedUnstakeFee,
		MinDeposit:            p.MinDeposit,
		MinWithdraw:           p.MinWithdraw,
		StakingCap:            p.StakingCap,
		RentExemptForTokenAcc: p.RentExemptForTokenAcc,
	}, nil
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	cpy := *s
	return &cpy
}

// RequireNotPaused fails with ErrProgramIsPaused while the pool is paused.
func (s *State) RequireNotPaused() error {
	if s.Paused {
		return reverts.ErrProgramIsPaused
	}
	return nil
}

func checkRewardFee(f fee.Fee) error {
	if err := f.Check(); err != nil {
		return err
	}
	if f.Cmp(MaxRewardFee) > 0 {
		return errors.Wrapf(reverts.ErrFeeTooHigh, "reward fee %s above %s", f, MaxRewardFee)
	}
	return nil
}

func checkDelayedUnstakeFee(f fee.Fee) error {
	if err := f.Check(); err != nil {
		return err
	}
	if f.Cmp(MaxDelayedUnstakeFee) > 0 {
		return errors.Wrapf(reverts.ErrFeeTooHigh, "delayed unstake fee %s above %s", f, MaxDelayedUnstakeFee)
	}
	return nil
}
