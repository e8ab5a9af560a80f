// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events serves queries of the event journal.
package events

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/api/restutil"
	"github.com/stakehouse/lsd/eventdb"
	lsdevents "github.com/stakehouse/lsd/events"
)

// Journal is the query side of the event journal.
type Journal interface {
	Filter(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Record, error)
}

type Events struct {
	db    Journal
	limit uint64
}

func New(db Journal, limit uint64) *Events {
	return &Events{db, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Order != "" && filter.Order != eventdb.ASC && filter.Order != eventdb.DESC {
		return restutil.BadRequest(fmt.Errorf("order: unknown value %q", filter.Order))
	}
	for i, kind := range filter.Kinds {
		if _, ok := lsdevents.New(kind); !ok {
			return restutil.BadRequest(fmt.Errorf("kinds[%d]: unknown kind %q", i, kind))
		}
	}
	if filter.Options == nil {
		filter.Options = &eventdb.Options{Limit: e.limit}
	}

	records, err := e.db.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*eventdb.Record{}
	}
	return restutil.WriteJSON(w, records)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
