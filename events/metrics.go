// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/stakehouse/lsd/metrics"
)

var (
	metricEvents         = metrics.LazyLoadCounterVec("events_total", []string{"kind"})
	metricVolume         = metrics.LazyLoadCounterVec("volume_total", []string{"flow"})
	metricPrice          = metrics.LazyLoadGauge("price")
	metricTokenSupply    = metrics.LazyLoadGauge("token_supply")
	metricTicketBalance  = metrics.LazyLoadGauge("circulating_ticket_balance")
	metricReserveBalance = metrics.LazyLoadGauge("reserve_balance")
	metricPaused         = metrics.LazyLoadGauge("paused")
)

// MetricsSink updates the metrics service from events.
type MetricsSink struct{}

func volume(flow string, amount uint64) {
	metricVolume().AddWithLabel(int64(amount), map[string]string{"flow": flow})
}

func (MetricsSink) Emit(ev Event) {
	metricEvents().AddWithLabel(1, map[string]string{"kind": string(ev.Kind())})

	switch e := ev.(type) {
	case *Deposit:
		volume("deposited_lamports", e.SolDeposited)
		volume("swapped_lamports", e.SolSwapped)
		volume("minted_tokens", e.TokenMinted)
		metricTokenSupply().Set(int64(e.TokenSupply + e.TokenMinted))
	case *LiquidUnstake:
		volume("liquid_unstaked_tokens", e.TokenAmount)
		volume("liquid_unstake_fee_tokens", e.TokenFee)
	case *OrderUnstake:
		volume("ordered_lamports", e.SolAmount)
		volume("burned_tokens", e.BurnedTokenAmount)
		metricTicketBalance().Set(int64(e.CirculatingTicketBalance + e.SolAmount))
		metricTokenSupply().Set(int64(e.TokenSupply - e.BurnedTokenAmount))
	case *Claim:
		volume("claimed_lamports", e.Amount)
		metricTicketBalance().Set(int64(e.CirculatingTicketBalance - e.Amount))
		metricReserveBalance().Set(int64(e.ReserveBalance - e.Amount))
	case *UpdateDeactivated:
		metricPrice().Set(int64(e.PriceChange.New))
		if e.TokenFees != nil {
			volume("reward_fee_tokens", *e.TokenFees)
		}
	case *Pause:
		metricPaused().Set(1)
	case *Resume:
		metricPaused().Set(0)
	}
}
