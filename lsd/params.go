// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lsd

import "math"

// LamportsPerSol number of lamports in one unit of the base currency.
const LamportsPerSol uint64 = 1_000_000_000

// PriceDenominator is the fixed-point unit of the stored price snapshot.
const PriceDenominator uint64 = 0x1_0000_0000

// NoDeactivation marks a delegation that has not started deactivating.
const NoDeactivation uint64 = math.MaxUint64

// seeds for program-controlled addresses of a pool.
var (
	ReserveSeed               = []byte("reserve")
	MintAuthoritySeed         = []byte("st_mint")
	StakeWithdrawSeed         = []byte("withdraw")
	StakeDepositSeed          = []byte("deposit")
	SolLegSeed                = []byte("liq_sol")
	TokenLegAuthoritySeed     = []byte("liq_st_sol_authority")
	TokenLegSeed              = []byte("liq_st_sol")
	TreasuryTokenAccountSeed  = []byte("treasury")
	OperationalSolAccountSeed = []byte("operational")
	DerivativeMintSeed        = []byte("mint")
)
