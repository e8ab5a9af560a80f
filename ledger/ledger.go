// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger defines the external services the accounting engine moves funds
// through. Every call is atomic: it either fully succeeds or changes nothing.
package ledger

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/lsd"
)

// ErrAccountNotFound is returned by lookups of unknown accounts.
var ErrAccountNotFound = errors.New("account not found")

// Mint describes a token mint.
type Mint struct {
	Address   lsd.Address
	Authority lsd.Address
	Supply    uint64
}

// TokenAccount holds tokens of one mint for an owner.
type TokenAccount struct {
	Address         lsd.Address
	Mint            lsd.Address
	Owner           lsd.Address
	Amount          uint64
	Delegate        *lsd.Address
	DelegatedAmount uint64
}

// Delegation of a stake account to a validator.
type Delegation struct {
	Voter             lsd.Address
	Stake             uint64
	ActivationEpoch   uint64
	DeactivationEpoch uint64
}

// IsDeactivating reports whether deactivation was requested.
func (d *Delegation) IsDeactivating() bool {
	return d.DeactivationEpoch != lsd.NoDeactivation
}

// StakeAccount is a native stake account.
type StakeAccount struct {
	Address           lsd.Address
	Lamports          uint64
	RentExemptReserve uint64
	Withdrawer        lsd.Address
	Delegation        *Delegation
}

// Bank moves the base currency between native accounts.
type Bank interface {
	Balance(addr lsd.Address) (uint64, error)
	Transfer(from, to lsd.Address, amount uint64) error
}

// Tokens is the token-transfer service.
type Tokens interface {
	Mint(mint lsd.Address) (*Mint, error)
	Account(addr lsd.Address) (*TokenAccount, error)
	MintTo(mint, to, authority lsd.Address, amount uint64) error
	Burn(mint, from, authority lsd.Address, amount uint64) error
	Transfer(from, to, authority lsd.Address, amount uint64) error
}

// Stakes is the staking-ledger service.
type Stakes interface {
	StakeAccount(addr lsd.Address) (*StakeAccount, error)
	Withdraw(stake, to, authority lsd.Address, amount uint64) error
}

// Clock exposes the current consensus epoch.
type Clock interface {
	Epoch() uint64
}

// Services bundles every external collaborator of an operation.
type Services interface {
	Bank
	Clock
	Tokens() Tokens
	Stakes() Stakes
}

// Executor runs fn as one all-or-nothing unit: if fn fails, every fund movement
// made through the services during fn is discarded.
type Executor interface {
	Atomic(fn func() error) error
}

// Ledger is a full execution environment.
type Ledger interface {
	Services
	Executor
}
