// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine runs the operations of one pool instance against a ledger.
//
// Operations are serialized. Each one runs inside the ledger's atomic execution;
// if it fails, the in-memory records (state, stake list, pool, tickets) are
// restored along with the ledger, so a failed call has no effect and can be
// retried. Events are emitted only for committed operations.
package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/ledger"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/metrics"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
	"github.com/stakehouse/lsd/ticket"
)

var (
	logger = log.WithContext("pkg", "engine")

	metricOps        = metrics.LazyLoadCounterVec("engine_ops_total", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("engine_op_duration_us", []string{"op"}, metrics.BucketMicros)
)

// ErrTicketNotFound is returned for unknown ticket addresses.
var ErrTicketNotFound = errors.New("ticket not found")

// Engine owns the records of one pool.
type Engine struct {
	mu sync.RWMutex

	st      *state.State
	list    *stakelist.List
	pool    *liqpool.Pool
	tickets map[lsd.Address]*ticket.Ticket
	nonce   uint64

	ledger ledger.Ledger
	sink   events.Sink
}

// New creates an engine. A nil sink drops events.
func New(st *state.State, list *stakelist.List, pool *liqpool.Pool, l ledger.Ledger, sink events.Sink) *Engine {
	if sink == nil {
		sink = events.Noop
	}
	return &Engine{
		st:      st,
		list:    list,
		pool:    pool,
		tickets: make(map[lsd.Address]*ticket.Ticket),
		ledger:  l,
		sink:    sink,
	}
}

type snapshot struct {
	st      *state.State
	list    *stakelist.List
	pool    *liqpool.Pool
	tickets map[lsd.Address]*ticket.Ticket
	nonce   uint64
}

func (e *Engine) snapshot() *snapshot {
	tickets := make(map[lsd.Address]*ticket.Ticket, len(e.tickets))
	for addr, t := range e.tickets {
		cpy := *t
		tickets[addr] = &cpy
	}
	return &snapshot{
		st:      e.st.Clone(),
		list:    e.list.Clone(),
		pool:    e.pool.Clone(),
		tickets: tickets,
		nonce:   e.nonce,
	}
}

func (e *Engine) restore(s *snapshot) {
	e.st = s.st
	e.list = s.list
	e.pool = s.pool
	e.tickets = s.tickets
	e.nonce = s.nonce
}

// run executes fn as one operation and emits its event on success.
func (e *Engine) run(op string, fn func() (events.Event, error)) (events.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() {
		metricOpDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op})
	}()

	snap := e.snapshot()
	var ev events.Event
	err := e.ledger.Atomic(func() (err error) {
		ev, err = fn()
		return err
	})
	if err != nil {
		e.restore(snap)
		result := "error"
		if kind, ok := reverts.KindOf(err); ok {
			result = kind.String()
		}
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": result})
		logger.Debug("operation failed", "op", op, "err", err)
		return nil, err
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	if ev != nil {
		e.sink.Emit(ev)
	}
	return ev, nil
}

// State returns a copy of the protocol state.
func (e *Engine) State() *state.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Clone()
}

// Stakes returns a copy of the stake list records.
func (e *Engine) Stakes() []stakelist.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.Records()
}

// Pool returns a copy of the liquidity pool.
func (e *Engine) Pool() *liqpool.Pool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pool.Clone()
}

// Ticket returns a copy of the ticket at addr.
func (e *Engine) Ticket(addr lsd.Address) (*ticket.Ticket, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tickets[addr]
	if !ok {
		return nil, errors.Wrapf(ErrTicketNotFound, "%s", addr)
	}
	cpy := *t
	return &cpy, nil
}

// Tickets returns copies of every ticket issued to beneficiary, or of every
// ticket if beneficiary is nil, ordered by creation epoch.
func (e *Engine) Tickets(beneficiary *lsd.Address) []ticket.Ticket {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []ticket.Ticket
	for _, t := range e.tickets {
		if beneficiary == nil || t.Beneficiary == *beneficiary {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedEpoch != out[j].CreatedEpoch {
			return out[i].CreatedEpoch < out[j].CreatedEpoch
		}
		return string(out[i].Address.Bytes()) < string(out[j].Address.Bytes())
	})
	return out
}

// ApplyExternal runs fn with write access to the records, under the same atomicity
// as operations. It serves the collaborators that move stake outside the
// engine, such as delegation and deactivation.
func (e *Engine) ApplyExternal(fn func(st *state.State, list *stakelist.List) error) error {
	_, err := e.run("external", func() (events.Event, error) {
		return nil, fn(e.st, e.list)
	})
	return err
}
