// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

var (
	ErrProgramIsPaused = newKind(Paused, "program is paused")
	ErrAlreadyPaused   = New("program is already paused")
	ErrNotPaused       = New("program is not paused")

	ErrDepositAmountIsTooLow  = New("deposit amount is too low")
	ErrWithdrawAmountIsTooLow = New("withdraw amount is too low")
	ErrStakingIsCapped        = New("staking is capped")
	ErrUnregisteredMintSupply = New("derivative token minted outside of the pool")
	ErrInvalidFee             = New("invalid fee")
	ErrFeeTooHigh             = New("fee is too high")
	ErrLiquidityTargetTooLow  = New("liquidity target is too low")
	ErrInvalidMint            = New("invalid derivative mint")
	ErrWrongState             = New("account belongs to another state")

	ErrStakeIndexOutOfRange      = New("stake index out of range")
	ErrStakeIndexMismatch        = New("stake account does not match stake list entry")
	ErrStakeListFull             = New("stake list is full")
	ErrRequiredDelegatedStake    = New("stake account must be delegated")
	ErrRequiredDeactivatingStake = New("stake account must be deactivating")

	ErrAuthorityMismatch          = New("wrong token owner or delegate")
	ErrInsufficientTokenBalance   = newKind(InsufficientFunds, "not enough token balance")
	ErrInsufficientDelegatedToken = newKind(InsufficientFunds, "not enough delegated tokens")
	ErrNotEnoughUserFunds         = newKind(InsufficientFunds, "not enough user funds")
	ErrNotEnoughReserve           = newKind(InsufficientFunds, "not enough reserve to claim")

	ErrInsufficientLiquidity = newKind(InsufficientLiquidity, "insufficient liquidity")

	ErrTicketNotDue         = newPending("ticket is not due yet")
	ErrTicketAlreadyClaimed = New("ticket already claimed")
	ErrTicketNotFound       = New("ticket not found")

	ErrArithmeticOverflow = newKind(ArithmeticOverflow, "arithmetic overflow")
)
