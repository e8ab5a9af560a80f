// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool serves the protocol state, the exchange rate and the stake list.
package pool

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/stakehouse/lsd/api/restutil"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/stakelist"
	"github.com/stakehouse/lsd/state"
)

// Reader is the read side of an engine.
type Reader interface {
	State() *state.State
	Pool() *liqpool.Pool
	Stakes() []stakelist.Record
}

type Pool struct {
	reader Reader
}

func New(reader Reader) *Pool {
	return &Pool{reader}
}

// Summary is the pool state with its derived totals.
type Summary struct {
	State                      *state.State  `json:"state"`
	LiquidityPool              *liqpool.Pool `json:"liquidityPool"`
	TotalCoolingDown           uint64        `json:"totalCoolingDown"`
	TotalLamportsUnderControl  uint64        `json:"totalLamportsUnderControl"`
	TotalVirtualStakedLamports uint64        `json:"totalVirtualStakedLamports"`
}

// Price is the exchange rate of one derivative token.
type Price struct {
	// Lamports is the value of one whole token in whole units of the base
	// currency.
	Lamports decimal.Decimal `json:"lamports"`
	// Raw is the price over PriceDenominator.
	Raw                        uint64 `json:"raw"`
	TotalVirtualStakedLamports uint64 `json:"totalVirtualStakedLamports"`
	TokenSupply                uint64 `json:"tokenSupply"`
}

func (p *Pool) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	st := p.reader.State()
	return restutil.WriteJSON(w, &Summary{
		State:                      st,
		LiquidityPool:              p.reader.Pool(),
		TotalCoolingDown:           st.TotalCoolingDown(),
		TotalLamportsUnderControl:  st.TotalLamportsUnderControl(),
		TotalVirtualStakedLamports: st.TotalVirtualStakedLamports(),
	})
}

func (p *Pool) handleGetPrice(w http.ResponseWriter, _ *http.Request) error {
	st := p.reader.State()
	// the live rate, not the snapshot stored by the last price update
	raw, err := st.TokenToLamports(lsd.PriceDenominator)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Price{
		Lamports:                   PriceToDecimal(raw),
		Raw:                        raw,
		TotalVirtualStakedLamports: st.TotalVirtualStakedLamports(),
		TokenSupply:                st.TokenSupply,
	})
}

func (p *Pool) handleGetStakes(w http.ResponseWriter, _ *http.Request) error {
	records := p.reader.Stakes()
	if records == nil {
		records = []stakelist.Record{}
	}
	return restutil.WriteJSON(w, records)
}

// PriceToDecimal converts a raw price into a decimal rate, rounded to the
// lamport precision.
func PriceToDecimal(raw uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0).
		DivRound(decimal.NewFromBigInt(new(big.Int).SetUint64(lsd.PriceDenominator), 0), 9)
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/price").
		Methods(http.MethodGet).
		Name("GET /pool/price").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPrice))
	sub.Path("/stakes").
		Methods(http.MethodGet).
		Name("GET /pool/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetStakes))
}
