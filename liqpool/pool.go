// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package liqpool implements the liquidity pool: deposits are first filled from
// the pool's derivative token leg, and holders can swap tokens for lamports
// immediately against the pool's lamport leg for a liquidity-dependent fee.
package liqpool

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/state"
)

var logger = log.WithContext("pkg", "liqpool")

var (
	// MaxFee caps the liquid unstake fee.
	MaxFee = fee.FromBpCents(100_000) // 10%
	// MaxTreasuryCut caps the share of liquid unstake fees sent to the treasury.
	MaxTreasuryCut = fee.FromBpCents(750_000) // 75%
)

// MinLiquidityTarget is the lowest accepted liquidity target.
const MinLiquidityTarget = 50 * lsd.LamportsPerSol

// Pool is the liquidity pool of a state.
type Pool struct {
	SolLeg            lsd.Address `json:"solLeg"`
	TokenLeg          lsd.Address `json:"tokenLeg"`
	TokenLegAuthority lsd.Address `json:"tokenLegAuthority"`

	MinFee          fee.Fee `json:"minFee"`
	MaxFee          fee.Fee `json:"maxFee"`
	LiquidityTarget uint64  `json:"liquidityTarget"`
	TreasuryCut     fee.Fee `json:"treasuryCut"`
}

// Params are the fee parameters of a pool.
type Params struct {
	MinFee          fee.Fee
	MaxFee          fee.Fee
	LiquidityTarget uint64
	TreasuryCut     fee.Fee
}

// New creates the pool of the state at stateAddr. Leg addresses are derived from
// it.
func New(stateAddr lsd.Address, p Params) (*Pool, error) {
	pool := &Pool{
		SolLeg:            lsd.DeriveAddress(stateAddr, lsd.SolLegSeed),
		TokenLeg:          lsd.DeriveAddress(stateAddr, lsd.TokenLegSeed),
		TokenLegAuthority: lsd.DeriveAddress(stateAddr, lsd.TokenLegAuthoritySeed),
		MinFee:            p.MinFee,
		MaxFee:            p.MaxFee,
		LiquidityTarget:   p.LiquidityTarget,
		TreasuryCut:       p.TreasuryCut,
	}
	if err := pool.validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	cpy := *p
	return &cpy
}

func (p *Pool) validate() error {
	for _, f := range []fee.Fee{p.MinFee, p.MaxFee, p.TreasuryCut} {
		if err := f.Check(); err != nil {
			return err
		}
	}
	if p.MinFee.Cmp(p.MaxFee) > 0 {
		return errors.Wrapf(reverts.ErrInvalidFee, "min fee %s above max fee %s", p.MinFee, p.MaxFee)
	}
	if p.MaxFee.Cmp(MaxFee) > 0 {
		return errors.Wrapf(reverts.ErrFeeTooHigh, "max fee %s above %s", p.MaxFee, MaxFee)
	}
	if p.LiquidityTarget < MinLiquidityTarget {
		return errors.Wrapf(reverts.ErrLiquidityTargetTooLow, "target %d below %d", p.LiquidityTarget, MinLiquidityTarget)
	}
	if p.TreasuryCut.Cmp(MaxTreasuryCut) > 0 {
		return errors.Wrapf(reverts.ErrFeeTooHigh, "treasury cut %s above %s", p.TreasuryCut, MaxTreasuryCut)
	}
	return nil
}

// LinearFee returns the liquid unstake fee when lamports of liquidity remain in
// the pool: the max fee for an empty pool, falling linearly to the min fee at
// the liquidity target and beyond.
func (p *Pool) LinearFee(lamports uint64) fee.Fee {
	if lamports >= p.LiquidityTarget {
		return p.MinFee
	}
	delta := uint64(p.MaxFee.BpCents - p.MinFee.BpCents)
	// lamports < target, so the proportion is below delta and fits in uint32
	cut, _ := state.Proportional(delta, lamports, p.LiquidityTarget)
	return fee.FromBpCents(p.MaxFee.BpCents - uint32(cut))
}

// ConfigParams holds optional updates of the pool configuration. Nil fields are
// left unchanged.
type ConfigParams struct {
	MinFee          *fee.Fee `json:"minFee,omitempty" yaml:"min_fee"`
	MaxFee          *fee.Fee `json:"maxFee,omitempty" yaml:"max_fee"`
	LiquidityTarget *uint64  `json:"liquidityTarget,omitempty" yaml:"liquidity_target"`
	TreasuryCut     *fee.Fee `json:"treasuryCut,omitempty" yaml:"treasury_cut"`
}

// Configure validates and applies c. Nothing is applied if the resulting
// configuration is invalid.
func (p *Pool) Configure(c ConfigParams) error {
	next := p.Clone()
	if c.MinFee != nil {
		next.MinFee = *c.MinFee
	}
	if c.MaxFee != nil {
		next.MaxFee = *c.MaxFee
	}
	if c.LiquidityTarget != nil {
		next.LiquidityTarget = *c.LiquidityTarget
	}
	if c.TreasuryCut != nil {
		next.TreasuryCut = *c.TreasuryCut
	}
	if err := next.validate(); err != nil {
		return err
	}
	*p = *next
	return nil
}
