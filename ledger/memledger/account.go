// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
)

type accountKind uint8

const (
	kindSystem accountKind = iota
	kindMint
	kindToken
	kindStake
)

func (k accountKind) String() string {
	switch k {
	case kindSystem:
		return "system"
	case kindMint:
		return "mint"
	case kindToken:
		return "token"
	case kindStake:
		return "stake"
	default:
		return "unknown"
	}
}

type mintData struct {
	Authority lsd.Address
	Supply    uint64
}

type tokenData struct {
	Mint            lsd.Address
	Owner           lsd.Address
	Amount          uint64
	Delegate        *lsd.Address `rlp:"nil"`
	DelegatedAmount uint64
}

type delegationData struct {
	Voter             lsd.Address
	Stake             uint64
	ActivationEpoch   uint64
	DeactivationEpoch uint64
}

type stakeData struct {
	RentExemptReserve uint64
	Withdrawer        lsd.Address
	Delegation        *delegationData `rlp:"nil"`
}

// account is the stored form of every account kind. Exactly one of the data
// fields is set for non-system accounts.
type account struct {
	Kind     accountKind
	Lamports uint64
	Mint     *mintData  `rlp:"nil"`
	Token    *tokenData `rlp:"nil"`
	Stake    *stakeData `rlp:"nil"`
}

func (a *account) copy() *account {
	cpy := *a
	if a.Mint != nil {
		m := *a.Mint
		cpy.Mint = &m
	}
	if a.Token != nil {
		t := *a.Token
		if t.Delegate != nil {
			d := *t.Delegate
			t.Delegate = &d
		}
		cpy.Token = &t
	}
	if a.Stake != nil {
		s := *a.Stake
		if s.Delegation != nil {
			d := *s.Delegation
			s.Delegation = &d
		}
		cpy.Stake = &s
	}
	return &cpy
}

func (a *account) encode() ([]byte, error) {
	return rlp.EncodeToBytes(a)
}

func decodeAccount(data []byte) (*account, error) {
	var a account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, errors.Wrap(err, "decode account")
	}
	return &a, nil
}

func (a *account) expect(addr lsd.Address, kind accountKind) error {
	if a.Kind != kind {
		return errors.Wrapf(ErrWrongAccountKind, "%s is a %s account, want %s", addr, a.Kind, kind)
	}
	return nil
}

func (a *account) toMint(addr lsd.Address) *ledger.Mint {
	return &ledger.Mint{
		Address:   addr,
		Authority: a.Mint.Authority,
		Supply:    a.Mint.Supply,
	}
}

func (a *account) toTokenAccount(addr lsd.Address) *ledger.TokenAccount {
	acc := &ledger.TokenAccount{
		Address:         addr,
		Mint:            a.Token.Mint,
		Owner:           a.Token.Owner,
		Amount:          a.Token.Amount,
		DelegatedAmount: a.Token.DelegatedAmount,
	}
	if a.Token.Delegate != nil {
		d := *a.Token.Delegate
		acc.Delegate = &d
	}
	return acc
}

func (a *account) toStakeAccount(addr lsd.Address) *ledger.StakeAccount {
	acc := &ledger.StakeAccount{
		Address:           addr,
		Lamports:          a.Lamports,
		RentExemptReserve: a.Stake.RentExemptReserve,
		Withdrawer:        a.Stake.Withdrawer,
	}
	if d := a.Stake.Delegation; d != nil {
		acc.Delegation = &ledger.Delegation{
			Voter:             d.Voter,
			Stake:             d.Stake,
			ActivationEpoch:   d.ActivationEpoch,
			DeactivationEpoch: d.DeactivationEpoch,
		}
	}
	return acc
}
