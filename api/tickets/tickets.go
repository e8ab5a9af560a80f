// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tickets serves delayed-unstake tickets.
package tickets

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/api/restutil"
	"github.com/stakehouse/lsd/engine"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/ticket"
)

// Reader looks tickets up.
type Reader interface {
	Ticket(addr lsd.Address) (*ticket.Ticket, error)
	Tickets(beneficiary *lsd.Address) []ticket.Ticket
}

type Tickets struct {
	reader Reader
}

func New(reader Reader) *Tickets {
	return &Tickets{reader}
}

func (t *Tickets) handleGetTicket(w http.ResponseWriter, req *http.Request) error {
	addr, err := lsd.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	tk, err := t.reader.Ticket(*addr)
	if err != nil {
		if errors.Is(err, engine.ErrTicketNotFound) {
			return restutil.NotFound(err)
		}
		return err
	}
	return restutil.WriteJSON(w, tk)
}

func (t *Tickets) handleGetTickets(w http.ResponseWriter, req *http.Request) error {
	var beneficiary *lsd.Address
	if s := req.URL.Query().Get("beneficiary"); s != "" {
		addr, err := lsd.ParseAddress(s)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "beneficiary"))
		}
		beneficiary = addr
	}
	list := t.reader.Tickets(beneficiary)
	if list == nil {
		list = []ticket.Ticket{}
	}
	return restutil.WriteJSON(w, list)
}

func (t *Tickets) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /tickets").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetTickets))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /tickets/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetTicket))
}
