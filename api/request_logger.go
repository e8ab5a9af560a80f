// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/stakehouse/lsd/log"
)

// maxLoggedBody caps the part of a request body written to the log.
const maxLoggedBody = 1024

// RequestLoggerHandler returns a http handler that logs every served request
// with its status and duration.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("unexpected body read error", "err", err)
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}

		m := httpsnoop.CaptureMetrics(handler, w, r)
		logger.Info("API Request",
			"method", r.Method,
			"uri", r.URL.String(),
			"status", m.Code,
			"written", m.Written,
			"elapsed", m.Duration,
			"body", string(body),
		)
	})
}
