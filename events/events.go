// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the records emitted after successful operations. Events
// carry the balances and parameters an operation used, for off-chain
// reconciliation.
package events

import (
	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/state"
)

// Kind identifies an event type.
type Kind string

const (
	KindDeposit           Kind = "deposit"
	KindLiquidUnstake     Kind = "liquid_unstake"
	KindOrderUnstake      Kind = "order_unstake"
	KindClaim             Kind = "claim"
	KindUpdateDeactivated Kind = "update_deactivated"
	KindPause             Kind = "pause"
	KindResume            Kind = "resume"
	KindConfigStader      Kind = "config_stader"
	KindConfigLp          Kind = "config_lp"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindDeposit,
	KindLiquidUnstake,
	KindOrderUnstake,
	KindClaim,
	KindUpdateDeactivated,
	KindPause,
	KindResume,
	KindConfigStader,
	KindConfigLp,
}

// Event is implemented by every event record.
type Event interface {
	Kind() Kind
	Meta() Header
}

// Header is common to every event.
type Header struct {
	State lsd.Address `json:"state"`
	Epoch uint64      `json:"epoch"`
}

// Deposit is emitted when base currency is exchanged for derivative tokens.
type Deposit struct {
	Header
	SolOwner                   lsd.Address `json:"solOwner"`
	UserSolBalance             uint64      `json:"userSolBalance"`
	UserTokenBalance           uint64      `json:"userTokenBalance"`
	SolLegBalance              uint64      `json:"solLegBalance"`
	TokenLegBalance            uint64      `json:"tokenLegBalance"`
	ReserveBalance             uint64      `json:"reserveBalance"`
	SolSwapped                 uint64      `json:"solSwapped"`
	TokenSwapped               uint64      `json:"tokenSwapped"`
	SolDeposited               uint64      `json:"solDeposited"`
	TokenMinted                uint64      `json:"tokenMinted"`
	TotalVirtualStakedLamports uint64      `json:"totalVirtualStakedLamports"`
	TokenSupply                uint64      `json:"tokenSupply"`
}

// LiquidUnstake is emitted when derivative tokens are swapped out immediately
// through the liquidity pool.
type LiquidUnstake struct {
	Header
	TokenOwner           lsd.Address `json:"tokenOwner"`
	TokenAmount          uint64      `json:"tokenAmount"`
	SolLegBalance        uint64      `json:"solLegBalance"`
	TokenLegBalance      uint64      `json:"tokenLegBalance"`
	TreasuryTokenBalance *uint64     `json:"treasuryTokenBalance"`
	UserTokenBalance     uint64      `json:"userTokenBalance"`
	UserSolBalance       uint64      `json:"userSolBalance"`
	TokenFee             uint64      `json:"tokenFee"`
	TreasuryTokenCut     uint64      `json:"treasuryTokenCut"`
	SolAmount            uint64      `json:"solAmount"`
	LiquidityTarget      uint64      `json:"liquidityTarget"`
	MaxFee               fee.Fee     `json:"maxFee"`
	MinFee               fee.Fee     `json:"minFee"`
	TreasuryCut          fee.Fee     `json:"treasuryCut"`
}

// OrderUnstake is emitted when a delayed-unstake ticket is issued. Ticket
// counters are the values before the ticket was accounted.
type OrderUnstake struct {
	Header
	TicketEpoch                uint64      `json:"ticketEpoch"`
	Ticket                     lsd.Address `json:"ticket"`
	Beneficiary                lsd.Address `json:"beneficiary"`
	CirculatingTicketBalance   uint64      `json:"circulatingTicketBalance"`
	CirculatingTicketCount     uint64      `json:"circulatingTicketCount"`
	UserTokenBalance           uint64      `json:"userTokenBalance"`
	BurnedTokenAmount          uint64      `json:"burnedTokenAmount"`
	SolAmount                  uint64      `json:"solAmount"`
	FeeBpCents                 uint32      `json:"feeBpCents"`
	TotalVirtualStakedLamports uint64      `json:"totalVirtualStakedLamports"`
	TokenSupply                uint64      `json:"tokenSupply"`
}

// Claim is emitted when a ticket is paid out from the reserve. Counters and
// balances are the values before the payout.
type Claim struct {
	Header
	Ticket                   lsd.Address `json:"ticket"`
	Beneficiary              lsd.Address `json:"beneficiary"`
	CirculatingTicketBalance uint64      `json:"circulatingTicketBalance"`
	CirculatingTicketCount   uint64      `json:"circulatingTicketCount"`
	ReserveBalance           uint64      `json:"reserveBalance"`
	UserBalance              uint64      `json:"userBalance"`
	Amount                   uint64      `json:"amount"`
}

// UpdateDeactivated is emitted when the crank reconciles a deactivated stake.
// Aggregates are the values before the call.
type UpdateDeactivated struct {
	Header
	StakeIndex                  uint32            `json:"stakeIndex"`
	StakeAccount                lsd.Address       `json:"stakeAccount"`
	BalanceWithoutRentExempt    uint64            `json:"balanceWithoutRentExempt"`
	LastUpdateDelegatedLamports uint64            `json:"lastUpdateDelegatedLamports"`
	TokenFees                   *uint64           `json:"tokenFees"`
	PriceChange                 state.ValueChange `json:"priceChange"`
	RewardFeeUsed               fee.Fee           `json:"rewardFeeUsed"`
	OperationalSolBalance       uint64            `json:"operationalSolBalance"`
	TotalVirtualStakedLamports  uint64            `json:"totalVirtualStakedLamports"`
	TokenSupply                 uint64            `json:"tokenSupply"`
}

// Pause is emitted when the pool is paused.
type Pause struct {
	Header
}

// Resume is emitted when the pool is resumed.
type Resume struct {
	Header
}

// FeeChange is an old/new pair of a fee.
type FeeChange struct {
	Old fee.Fee `json:"old"`
	New fee.Fee `json:"new"`
}

// ConfigStader is emitted when the pool configuration changes. Only changed
// fields are set.
type ConfigStader struct {
	Header
	RewardFee         *FeeChange         `json:"rewardFee,omitempty"`
	DelayedUnstakeFee *FeeChange         `json:"delayedUnstakeFee,omitempty"`
	MinDeposit        *state.ValueChange `json:"minDeposit,omitempty"`
	MinWithdraw       *state.ValueChange `json:"minWithdraw,omitempty"`
	StakingCap        *state.ValueChange `json:"stakingCap,omitempty"`
}

// ConfigLp is emitted when the liquidity pool configuration changes. Only changed
// fields are set.
type ConfigLp struct {
	Header
	MinFee          *FeeChange         `json:"minFee,omitempty"`
	MaxFee          *FeeChange         `json:"maxFee,omitempty"`
	LiquidityTarget *state.ValueChange `json:"liquidityTarget,omitempty"`
	TreasuryCut     *FeeChange         `json:"treasuryCut,omitempty"`
}

func (h Header) Meta() Header { return h }

func (*Deposit) Kind() Kind           { return KindDeposit }
func (*LiquidUnstake) Kind() Kind     { return KindLiquidUnstake }
func (*OrderUnstake) Kind() Kind      { return KindOrderUnstake }
func (*Claim) Kind() Kind             { return KindClaim }
func (*UpdateDeactivated) Kind() Kind { return KindUpdateDeactivated }
func (*Pause) Kind() Kind             { return KindPause }
func (*Resume) Kind() Kind            { return KindResume }
func (*ConfigStader) Kind() Kind      { return KindConfigStader }
func (*ConfigLp) Kind() Kind          { return KindConfigLp }

// New returns an empty event of kind, for decoding.
func New(kind Kind) (Event, bool) {
	switch kind {
	case KindDeposit:
		return &Deposit{}, true
	case KindLiquidUnstake:
		return &LiquidUnstake{}, true
	case KindOrderUnstake:
		return &OrderUnstake{}, true
	case KindClaim:
		return &Claim{}, true
	case KindUpdateDeactivated:
		return &UpdateDeactivated{}, true
	case KindPause:
		return &Pause{}, true
	case KindResume:
		return &Resume{}, true
	case KindConfigStader:
		return &ConfigStader{}, true
	case KindConfigLp:
		return &ConfigLp{}, true
	default:
		return nil, false
	}
}
