// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memledger is an in-process execution environment implementing the
// ledger services. Accounts are stored rlp encoded in a kv store; changes made
// inside Atomic are journaled in a stacked map and written in one batch when the
// outermost Atomic call succeeds.
//
// A Ledger is not safe for concurrent use.
package memledger

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/kv"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/lvldb"
	"github.com/stakehouse/lsd/stackedmap"
)

var logger = log.WithContext("pkg", "memledger")

var (
	ErrInsufficientLamports = errors.New("insufficient lamports")
	ErrInsufficientTokens   = errors.New("insufficient tokens")
	ErrWrongAccountKind     = errors.New("wrong account kind")
	ErrAccountExists        = errors.New("account already exists")
	ErrInvalidAuthority     = errors.New("invalid authority")
	ErrMintMismatch         = errors.New("token account mint mismatch")
	ErrStakeNotWithdrawable = errors.New("stake is not withdrawable")
	ErrOverflow             = errors.New("amount overflow")
)

var _ ledger.Ledger = (*Ledger)(nil)

const accountBucket = kv.Bucket("a")

// Options of a Ledger.
type Options struct {
	// CacheSize is the number of decoded accounts kept in memory.
	CacheSize int
	// Epoch is the initial epoch of the clock.
	Epoch uint64
}

// Ledger implements ledger.Ledger over a kv store.
type Ledger struct {
	db      *lvldb.LevelDB
	store   kv.Store
	cache   *lru.Cache
	journal *stackedmap.StackedMap[lsd.Address, *account]
	epoch   uint64
}

// New creates a ledger over a fresh in-memory level db.
func New(opts Options) (*Ledger, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	return Open(db, opts)
}

// Open creates a ledger over db. Accounts already in db are kept.
func Open(db *lvldb.LevelDB, opts Options) (*Ledger, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new account cache")
	}
	l := &Ledger{
		db:    db,
		store: accountBucket.NewStore(db),
		cache: cache,
		epoch: opts.Epoch,
	}
	l.journal = stackedmap.New(l.load)
	return l, nil
}

// Close closes the underlying db.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) load(addr lsd.Address) (*account, bool, error) {
	if cached, ok := l.cache.Get(addr); ok {
		return cached.(*account), true, nil
	}
	data, err := l.store.Get(addr.Bytes())
	if err != nil {
		if l.store.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "load account")
	}
	acc, err := decodeAccount(data)
	if err != nil {
		return nil, false, err
	}
	l.cache.Add(addr, acc)
	return acc, true, nil
}

// get returns a private copy of the account, or nil if it does not exist.
func (l *Ledger) get(addr lsd.Address) (*account, error) {
	acc, ok, err := l.journal.Get(addr)
	if err != nil {
		return nil, err
	}
	if !ok || acc == nil {
		return nil, nil
	}
	return acc.copy(), nil
}

func (l *Ledger) mustGet(addr lsd.Address, kind accountKind) (*account, error) {
	acc, err := l.get(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(ledger.ErrAccountNotFound, "%s", addr)
	}
	if err := acc.expect(addr, kind); err != nil {
		return nil, err
	}
	return acc, nil
}

// put stages acc. A drained system account is removed.
func (l *Ledger) put(addr lsd.Address, acc *account) {
	if acc != nil && acc.Kind == kindSystem && acc.Lamports == 0 {
		acc = nil
	}
	l.journal.Put(addr, acc)
}

// Atomic runs fn. If fn fails, every change made during fn is discarded. Changes
// of the outermost call are committed to the store when fn succeeds.
func (l *Ledger) Atomic(fn func() error) error {
	depth := l.journal.Push()
	if err := fn(); err != nil {
		l.journal.PopTo(depth)
		return err
	}
	if depth > 1 {
		return nil
	}
	return l.commit()
}

func (l *Ledger) commit() error {
	defer l.journal.PopTo(1)

	changes := make(map[lsd.Address]*account)
	var order []lsd.Address
	l.journal.Journal(func(addr lsd.Address, acc *account) bool {
		if _, ok := changes[addr]; !ok {
			order = append(order, addr)
		}
		changes[addr] = acc
		return true
	})

	bulk := l.store.Bulk()
	for _, addr := range order {
		acc := changes[addr]
		if acc == nil {
			if err := bulk.Delete(addr.Bytes()); err != nil {
				return err
			}
			continue
		}
		data, err := acc.encode()
		if err != nil {
			return errors.Wrap(err, "encode account")
		}
		if err := bulk.Put(addr.Bytes(), data); err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit accounts")
	}

	for _, addr := range order {
		if acc := changes[addr]; acc != nil {
			l.cache.Add(addr, acc)
		} else {
			l.cache.Remove(addr)
		}
	}
	logger.Trace("committed", "accounts", len(order))
	return nil
}

// Epoch implements ledger.Clock.
func (l *Ledger) Epoch() uint64 { return l.epoch }

// AdvanceEpoch moves the clock n epochs forward.
func (l *Ledger) AdvanceEpoch(n uint64) uint64 {
	l.epoch += n
	logger.Debug("epoch advanced", "epoch", l.epoch)
	return l.epoch
}

// Balance implements ledger.Bank. Unknown accounts hold zero lamports.
func (l *Ledger) Balance(addr lsd.Address) (uint64, error) {
	acc, err := l.get(addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Lamports, nil
}

// Transfer implements ledger.Bank. Only system accounts can be debited; the
// recipient is created if it does not exist.
func (l *Ledger) Transfer(from, to lsd.Address, amount uint64) error {
	return l.Atomic(func() error {
		src, err := l.mustGet(from, kindSystem)
		if err != nil {
			return err
		}
		if src.Lamports < amount {
			return errors.Wrapf(ErrInsufficientLamports, "%s holds %d, transfer %d", from, src.Lamports, amount)
		}
		src.Lamports -= amount
		l.put(from, src)
		return l.credit(to, amount)
	})
}

func (l *Ledger) credit(to lsd.Address, amount uint64) error {
	dst, err := l.get(to)
	if err != nil {
		return err
	}
	if dst == nil {
		dst = &account{Kind: kindSystem}
	}
	if dst.Lamports+amount < dst.Lamports {
		return errors.Wrapf(ErrOverflow, "credit %d to %s", amount, to)
	}
	dst.Lamports += amount
	l.put(to, dst)
	return nil
}

// Tokens implements ledger.Services.
func (l *Ledger) Tokens() ledger.Tokens { return tokens{l} }

// Stakes implements ledger.Services.
func (l *Ledger) Stakes() ledger.Stakes { return stakes{l} }
