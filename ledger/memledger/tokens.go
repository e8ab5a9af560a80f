// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/lsd"
)

// tokens implements ledger.Tokens.
type tokens struct {
	l *Ledger
}

func (t tokens) Mint(mint lsd.Address) (*ledger.Mint, error) {
	acc, err := t.l.mustGet(mint, kindMint)
	if err != nil {
		return nil, err
	}
	return acc.toMint(mint), nil
}

func (t tokens) Account(addr lsd.Address) (*ledger.TokenAccount, error) {
	acc, err := t.l.mustGet(addr, kindToken)
	if err != nil {
		return nil, err
	}
	return acc.toTokenAccount(addr), nil
}

func (t tokens) tokenAccount(addr, mint lsd.Address) (*account, error) {
	acc, err := t.l.mustGet(addr, kindToken)
	if err != nil {
		return nil, err
	}
	if acc.Token.Mint != mint {
		return nil, errors.Wrapf(ErrMintMismatch, "%s holds %s, not %s", addr, acc.Token.Mint, mint)
	}
	return acc, nil
}

// debit removes amount from a token account on behalf of authority, which must be
// the owner or a delegate with enough allowance.
func debit(addr lsd.Address, acc *account, authority lsd.Address, amount uint64) error {
	tok := acc.Token
	switch {
	case authority == tok.Owner:
	case tok.Delegate != nil && *tok.Delegate == authority:
		if tok.DelegatedAmount < amount {
			return errors.Wrapf(ErrInsufficientTokens, "%s delegated %d, debit %d", addr, tok.DelegatedAmount, amount)
		}
	default:
		return errors.Wrapf(ErrInvalidAuthority, "%s is neither owner nor delegate of %s", authority, addr)
	}
	if tok.Amount < amount {
		return errors.Wrapf(ErrInsufficientTokens, "%s holds %d, debit %d", addr, tok.Amount, amount)
	}
	tok.Amount -= amount
	if authority != tok.Owner {
		tok.DelegatedAmount -= amount
		if tok.DelegatedAmount == 0 {
			tok.Delegate = nil
		}
	}
	return nil
}

func (t tokens) MintTo(mint, to, authority lsd.Address, amount uint64) error {
	return t.l.Atomic(func() error {
		m, err := t.l.mustGet(mint, kindMint)
		if err != nil {
			return err
		}
		if m.Mint.Authority != authority {
			return errors.Wrapf(ErrInvalidAuthority, "%s is not the authority of mint %s", authority, mint)
		}
		dst, err := t.tokenAccount(to, mint)
		if err != nil {
			return err
		}
		if m.Mint.Supply+amount < m.Mint.Supply {
			return errors.Wrapf(ErrOverflow, "mint %d of %s", amount, mint)
		}
		m.Mint.Supply += amount
		dst.Token.Amount += amount
		t.l.put(mint, m)
		t.l.put(to, dst)
		return nil
	})
}

func (t tokens) Burn(mint, from, authority lsd.Address, amount uint64) error {
	return t.l.Atomic(func() error {
		m, err := t.l.mustGet(mint, kindMint)
		if err != nil {
			return err
		}
		src, err := t.tokenAccount(from, mint)
		if err != nil {
			return err
		}
		if err := debit(from, src, authority, amount); err != nil {
			return err
		}
		if m.Mint.Supply < amount {
			return errors.Wrapf(ErrOverflow, "burn %d above supply of %s", amount, mint)
		}
		m.Mint.Supply -= amount
		t.l.put(mint, m)
		t.l.put(from, src)
		return nil
	})
}

func (t tokens) Transfer(from, to, authority lsd.Address, amount uint64) error {
	return t.l.Atomic(func() error {
		src, err := t.l.mustGet(from, kindToken)
		if err != nil {
			return err
		}
		dst, err := t.tokenAccount(to, src.Token.Mint)
		if err != nil {
			return err
		}
		if err := debit(from, src, authority, amount); err != nil {
			return err
		}
		t.l.put(from, src)
		if from == to {
			return nil
		}
		dst.Token.Amount += amount
		t.l.put(to, dst)
		return nil
	})
}
