// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/api/pool"
	"github.com/stakehouse/lsd/engine"
	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/genesis"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
)

// stakeProgram receives the lamports moved from the reserve into stake accounts.
var stakeProgram = lsd.NamedAddress("stake-program")

type sim struct {
	sc      *Scenario
	ledger  *memledger.Ledger
	gen     *genesis.Genesis
	eng     *engine.Engine
	tickets []lsd.Address
}

func newSim(sc *Scenario, l *memledger.Ledger, sink events.Sink) (*sim, error) {
	g, err := genesis.Build(&sc.Genesis, l)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s: genesis", sc.Name)
	}
	return &sim{
		sc:     sc,
		ledger: l,
		gen:    g,
		eng:    engine.New(g.State, g.Stakes, g.Pool, l, sink),
	}, nil
}

// run executes every step, calling done after each one.
func (s *sim) run(ctx context.Context, done func()) error {
	for i, step := range s.sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.step(step)
		if err := expect(step, err); err != nil {
			return errors.Wrapf(err, "scenario %s: step %d (%s)", s.sc.Name, i, step.Op)
		}
		done()
	}
	return nil
}

// expect checks the outcome of a step against its expectation.
func expect(step Step, err error) error {
	if step.Expect == "" {
		return err
	}
	if err == nil {
		return errors.Errorf("succeeded, expected %q", step.Expect)
	}
	if kind, ok := reverts.KindOf(err); ok && kind.String() == step.Expect {
		return nil
	}
	if strings.Contains(err.Error(), step.Expect) {
		return nil
	}
	return errors.Wrapf(err, "expected %q", step.Expect)
}

func (s *sim) wallet(name string) (genesis.Wallet, error) {
	w, ok := s.gen.Wallets[name]
	if !ok {
		return genesis.Wallet{}, errors.Errorf("unknown account %q", name)
	}
	return w, nil
}

func (s *sim) stakeIndex(name string) (uint32, lsd.Address, error) {
	addr := lsd.NamedAddress(name)
	for i, r := range s.eng.Stakes() {
		if r.StakeAccount == addr {
			return uint32(i), addr, nil
		}
	}
	return 0, addr, errors.Errorf("stake %q is not tracked", name)
}

func (s *sim) step(step Step) error {
	switch step.Op {
	case opDeposit:
		w, err := s.wallet(step.Account)
		if err != nil {
			return err
		}
		_, err = s.eng.Deposit(w.Address, w.TokenAccount, step.Amount.Lamports())
		return err
	case opLiquidUnstake:
		w, err := s.wallet(step.Account)
		if err != nil {
			return err
		}
		_, err = s.eng.LiquidUnstake(w.TokenAccount, w.Address, w.Address, step.Amount.Lamports())
		return err
	case opOrderUnstake:
		w, err := s.wallet(step.Account)
		if err != nil {
			return err
		}
		ev, err := s.eng.OrderUnstake(w.TokenAccount, w.Address, step.Amount.Lamports())
		if err != nil {
			return err
		}
		s.tickets = append(s.tickets, ev.Ticket)
		return nil
	case opClaim:
		if step.Ticket < 0 || step.Ticket >= len(s.tickets) {
			return errors.Errorf("no ticket %d", step.Ticket)
		}
		_, err := s.eng.Claim(s.tickets[step.Ticket])
		return err
	case opAdvance:
		epochs := step.Epochs
		if epochs == 0 {
			epochs = 1
		}
		s.ledger.AdvanceEpoch(epochs)
		return nil
	case opStake:
		return s.stake(step)
	case opDeactivate:
		return s.deactivate(step)
	case opReward:
		return s.ledger.Reward(lsd.NamedAddress(step.Stake), step.Amount.Lamports())
	case opSlash:
		return s.ledger.Slash(lsd.NamedAddress(step.Stake), step.Amount.Lamports())
	case opCrank:
		index, addr, err := s.stakeIndex(step.Stake)
		if err != nil {
			return err
		}
		_, err = s.eng.UpdateDeactivated(index, addr)
		return err
	case opPause:
		_, err := s.eng.Pause()
		return err
	case opResume:
		_, err := s.eng.Resume()
		return err
	case opConfig:
		if step.Config == nil {
			return errors.New("config is required")
		}
		_, err := s.eng.ConfigStader(*step.Config)
		return err
	case opConfigLp:
		if step.ConfigLp == nil {
			return errors.New("config_lp is required")
		}
		_, err := s.eng.ConfigLp(*step.ConfigLp)
		return err
	default:
		return errors.Errorf("unknown op %q", step.Op)
	}
}

// stake moves lamports from the reserve into a new delegated stake account, as
// the staking crank would.
func (s *sim) stake(step Step) error {
	addr := lsd.NamedAddress(step.Stake)
	amount := step.Amount.Lamports()
	rent := s.sc.Genesis.StakeAccountRent
	voter := step.Voter
	if voter == "" {
		voter = "voter"
	}
	return s.eng.ApplyExternal(func(st *state.State, list *stakelist.List) error {
		if amount > st.AvailableReserveBalance {
			return errors.Wrapf(reverts.ErrNotEnoughReserve, "reserve holds %d, stake %d", st.AvailableReserveBalance, amount)
		}
		if err := s.ledger.Transfer(st.Reserve, stakeProgram, amount); err != nil {
			return err
		}
		// the rent exempt reserve is paid by the operator
		if err := s.ledger.CreateStakeAccount(addr, amount+rent, rent, st.StakeWithdrawAuthority); err != nil {
			return err
		}
		if err := s.ledger.Delegate(addr, lsd.NamedAddress(voter)); err != nil {
			return err
		}
		epoch := s.ledger.Epoch()
		if _, err := list.Append(stakelist.Record{
			StakeAccount:                addr,
			LastUpdateDelegatedLamports: amount,
			LastUpdateEpoch:             epoch,
		}); err != nil {
			return err
		}
		st.OnTransferFromReserve(amount)
		st.ActiveBalance += amount
		st.LastStakeDeltaEpoch = epoch
		return nil
	})
}

// deactivate starts cooling down a tracked stake.
func (s *sim) deactivate(step Step) error {
	index, addr, err := s.stakeIndex(step.Stake)
	if err != nil {
		return err
	}
	return s.eng.ApplyExternal(func(st *state.State, list *stakelist.List) error {
		rec, err := list.GetChecked(index, addr)
		if err != nil {
			return err
		}
		if err := s.ledger.Deactivate(addr); err != nil {
			return err
		}
		amount := min(rec.LastUpdateDelegatedLamports, st.ActiveBalance)
		st.ActiveBalance -= amount
		if step.Emergency {
			st.EmergencyCoolingDown += amount
			rec.IsEmergencyUnstaking = true
		} else {
			st.DelayedUnstakeCoolingDown += amount
		}
		rec.LastUpdateEpoch = s.ledger.Epoch()
		st.LastStakeDeltaEpoch = rec.LastUpdateEpoch
		return list.Set(index, rec)
	})
}

// summary is the final report line of a scenario.
func (s *sim) summary() string {
	st := s.eng.State()
	raw, err := st.TokenToLamports(lsd.PriceDenominator)
	if err != nil {
		raw = st.Price
	}
	open := 0
	for _, t := range s.eng.Tickets(nil) {
		if !t.Claimed {
			open++
		}
	}
	return fmt.Sprintf("%-20s steps=%-4d epoch=%-4d price=%s supply=%d virtual=%d reserve=%d stakes=%d open-tickets=%d",
		s.sc.Name, len(s.sc.Steps), s.ledger.Epoch(), pool.PriceToDecimal(raw),
		st.TokenSupply, st.TotalVirtualStakedLamports(), st.AvailableReserveBalance, len(s.eng.Stakes()), open)
}
