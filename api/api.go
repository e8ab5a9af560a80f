// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves a read-only HTTP view of a pool.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakehouse/lsd/api/events"
	"github.com/stakehouse/lsd/api/pool"
	"github.com/stakehouse/lsd/api/tickets"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/metrics"
)

var logger = log.WithContext("pkg", "api")

// DefaultEventsLimit caps the events returned by one query.
const DefaultEventsLimit = 1000

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	EnableReqLogger bool
	EnableMetrics   bool
}

// Engine is the read side of an engine.
type Engine interface {
	pool.Reader
	tickets.Reader
}

// New returns the api router. Event queries are served only with a journal.
func New(eng Engine, journal events.Journal, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = DefaultEventsLimit
	}

	router := mux.NewRouter()

	pool.New(eng).
		Mount(router, "/pool")
	tickets.New(eng).
		Mount(router, "/tickets")
	if journal != nil {
		events.New(journal, opts.EventsLimit).
			Mount(router, "/events")
	}

	if opts.EnableMetrics {
		if h := metrics.HTTPHandler(); h != nil {
			router.Path("/metrics").Name("GET /metrics").Handler(h)
		}
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler
}
