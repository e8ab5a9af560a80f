// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb journals events into sqlite for later queries.
package eventdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/metrics"
)

var (
	logger = log.WithContext("pkg", "eventdb")

	metricWritten = metrics.LazyLoadCounter("eventdb_written_total")
	metricDropped = metrics.LazyLoadCounter("eventdb_dropped_total")
)

const insertEvent = "INSERT INTO event(kind, state, epoch, account, data) VALUES(?, ?, ?, ?, ?)"

// EventDB is the sqlite event journal.
type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

var _ events.Sink = (*EventDB)(nil)

// New creates or opens the journal at path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// an in-memory database lives as long as its connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem creates a journal in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the journal.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Emit implements events.Sink. Events that cannot be written are logged and
// dropped.
func (db *EventDB) Emit(ev events.Event) {
	if err := db.Write(context.Background(), ev); err != nil {
		metricDropped().Add(1)
		logger.Warn("failed to journal event", "kind", ev.Kind(), "err", err)
	}
}

// Write journals evs in one transaction.
func (db *EventDB) Write(ctx context.Context, evs ...events.Event) error {
	stmt, err := db.stmtCache.Prepare(insertEvent)
	if err != nil {
		return err
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStmt := tx.StmtContext(ctx, stmt)
	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "encode %s event", ev.Kind())
		}
		var account []byte
		if addr := accountOf(ev); addr != nil {
			account = addr.Bytes()
		}
		h := ev.Meta()
		if _, err := txStmt.ExecContext(ctx, string(ev.Kind()), h.State.Bytes(), h.Epoch, account, data); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWritten().Add(int64(len(evs)))
	return nil
}

// Filter queries the journal. A nil filter returns every event in order.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Record, error) {
	if filter == nil {
		return db.query(ctx, "SELECT seq, kind, state, epoch, account, data FROM event ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT seq, kind, state, epoch, account, data FROM event WHERE 1"
	if len(filter.Kinds) > 0 {
		marks := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			args = append(args, string(k))
			marks = append(marks, "?")
		}
		stmt += " AND kind IN (" + strings.Join(marks, ",") + ")"
	}
	if filter.State != nil {
		args = append(args, filter.State.Bytes())
		stmt += " AND state = ?"
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ?"
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND epoch >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND epoch <= ?"
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Record, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			kind    string
			state   []byte
			epoch   uint64
			account []byte
			data    []byte
		)
		if err := rows.Scan(&seq, &kind, &state, &epoch, &account, &data); err != nil {
			return nil, err
		}
		ev, ok := events.New(events.Kind(kind))
		if !ok {
			return nil, errors.Errorf("unknown event kind %q at seq %d", kind, seq)
		}
		if err := json.Unmarshal(data, ev); err != nil {
			return nil, errors.Wrapf(err, "decode event %d", seq)
		}
		r := &Record{
			Seq:   seq,
			Kind:  events.Kind(kind),
			State: lsd.BytesToAddress(state),
			Epoch: epoch,
			Event: ev,
		}
		if len(account) > 0 {
			addr := lsd.BytesToAddress(account)
			r.Account = &addr
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
