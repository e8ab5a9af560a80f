// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	state BLOB NOT NULL,
	epoch INTEGER NOT NULL,
	account BLOB,
	data BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS kindIndex ON event(kind);
CREATE INDEX IF NOT EXISTS epochIndex ON event(epoch);
CREATE INDEX IF NOT EXISTS accountIndex ON event(account);
`
