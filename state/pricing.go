// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

// ValueChange is an old/new pair of a counter.
type ValueChange struct {
	Old uint64 `json:"old"`
	New uint64 `json:"new"`
}

// Proportional returns floor(amount * numerator / denominator) computed in 256 bits.
// A zero denominator returns amount unchanged.
func Proportional(amount, numerator, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return amount, nil
	}
	res, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(amount),
		uint256.NewInt(numerator),
		uint256.NewInt(denominator),
	)
	if overflow || !res.IsUint64() {
		return 0, reverts.ErrArithmeticOverflow
	}
	return res.Uint64(), nil
}

// TotalCoolingDown is the stake being deactivated, ordinary and emergency.
func (s *State) TotalCoolingDown() uint64 {
	return saturatingAdd(s.DelayedUnstakeCoolingDown, s.EmergencyCoolingDown)
}

// TotalLamportsUnderControl is every lamport the pool manages, including what is
// promised to ticket holders.
func (s *State) TotalLamportsUnderControl() uint64 {
	return saturatingAdd(saturatingAdd(s.ActiveBalance, s.TotalCoolingDown()), s.AvailableReserveBalance)
}

// TotalVirtualStakedLamports is the backing of the derivative token: everything
// under control minus the lamports owed to circulating tickets.
func (s *State) TotalVirtualStakedLamports() uint64 {
	total := s.TotalLamportsUnderControl()
	if total < s.CirculatingTicketBalance {
		return 0
	}
	return total - s.CirculatingTicketBalance
}

// TokenToLamports converts a derivative token amount into lamports at the live rate.
func (s *State) TokenToLamports(amount uint64) (uint64, error) {
	if s.TokenSupply == 0 {
		return amount, nil
	}
	return Proportional(amount, s.TotalVirtualStakedLamports(), s.TokenSupply)
}

// LamportsToToken converts lamports into a derivative token amount at the live rate.
func (s *State) LamportsToToken(lamports uint64) (uint64, error) {
	if s.TokenSupply == 0 {
		return lamports, nil
	}
	return Proportional(lamports, s.TokenSupply, s.TotalVirtualStakedLamports())
}

// UpdatePrice recomputes and stores the price snapshot.
func (s *State) UpdatePrice() (ValueChange, error) {
	price, err := s.TokenToLamports(lsd.PriceDenominator)
	if err != nil {
		return ValueChange{}, err
	}
	change := ValueChange{Old: s.Price, New: price}
	s.Price = price
	return change, nil
}

// CheckStakingCap fails if adding amount would take the pool above its staking cap.
func (s *State) CheckStakingCap(amount uint64) error {
	total, ok := checkedAdd(s.TotalLamportsUnderControl(), amount)
	if !ok {
		return reverts.ErrArithmeticOverflow
	}
	if total > s.StakingCap {
		return reverts.ErrStakingIsCapped
	}
	return nil
}

func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

func saturatingAdd(a, b uint64) uint64 {
	if sum, ok := checkedAdd(a, b); ok {
		return sum
	}
	return ^uint64(0)
}
