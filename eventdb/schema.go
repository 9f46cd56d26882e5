// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	number INTEGER NOT NULL,
	time INTEGER NOT NULL,
	op TEXT NOT NULL,
	caller BLOB NOT NULL,
	contract BLOB NOT NULL,
	name TEXT NOT NULL,
	account BLOB NOT NULL,
	args TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS event_number ON event(number);
CREATE INDEX IF NOT EXISTS event_time ON event(time);
CREATE INDEX IF NOT EXISTS event_account ON event(account);
CREATE INDEX IF NOT EXISTS event_contract_name ON event(contract, name);
`
