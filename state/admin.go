// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/reverts"
)

// Pause stops every user and crank operation. Authorization of the caller happens
// before the engine runs.
func (s *State) Pause() error {
	if s.Paused {
		return reverts.ErrAlreadyPaused
	}
	s.Paused = true
	return nil
}

// Resume re-enables operations after Pause.
func (s *State) Resume() error {
	if !s.Paused {
		return reverts.ErrNotPaused
	}
	s.Paused = false
	return nil
}

// ConfigParams holds optional updates of the pool configuration. Nil fields are
// left unchanged.
type ConfigParams struct {
	RewardFee         *fee.Fee `json:"rewardFee,omitempty" yaml:"reward_fee"`
	DelayedUnstakeFee *fee.Fee `json:"delayedUnstakeFee,omitempty" yaml:"delayed_unstake_fee"`
	MinDeposit        *uint64  `json:"minDeposit,omitempty" yaml:"min_deposit"`
	MinWithdraw       *uint64  `json:"minWithdraw,omitempty" yaml:"min_withdraw"`
	StakingCap        *uint64  `json:"stakingCap,omitempty" yaml:"staking_cap"`
}

// Configure validates and applies p. Nothing is applied if any field is invalid.
func (s *State) Configure(p ConfigParams) error {
	if p.RewardFee != nil {
		if err := checkRewardFee(*p.RewardFee); err != nil {
			return err
		}
	}
	if p.DelayedUnstakeFee != nil {
		if err := checkDelayedUnstakeFee(*p.DelayedUnstakeFee); err != nil {
			return err
		}
	}

	if p.RewardFee != nil {
		s.RewardFee = *p.RewardFee
	}
	if p.DelayedUnstakeFee != nil {
		s.DelayedUnstakeFee = *p.DelayedUnstakeFee
	}
	if p.MinDeposit != nil {
		s.MinDeposit = *p.MinDeposit
	}
	if p.MinWithdraw != nil {
		s.MinWithdraw = *p.MinWithdraw
	}
	if p.StakingCap != nil {
		s.StakingCap = *p.StakingCap
	}
	return nil
}
