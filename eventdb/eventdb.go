// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps contract events in sqlite for later filtering.
package eventdb

import (
	"database/sql"
	"encoding/json"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/log"
)

var logger = log.WithContext("pkg", "eventdb")

// EventDB manages all events.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db at path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every connection of an in-memory db is a distinct db
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create event table")
	}
	s, _, _ := sqlite3.Version()
	logger.Debug("event db opened", "path", path, "sqlite", s)
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert stores events in one transaction, in order.
func (db *EventDB) Insert(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, ev := range events {
		args, err := json.Marshal(ev.Args)
		if err != nil {
			tx.Rollback()
			return err
		}
		res, err := tx.Exec("INSERT INTO event(number, time, op, caller, contract, name, account, args) VALUES (?, ?, ?, ?, ?, ?, ?, ?);",
			ev.Number,
			ev.Time,
			ev.Op,
			ev.Caller.Bytes(),
			ev.Contract.Bytes(),
			ev.Name,
			ev.Account.Bytes(),
			string(args))
		if err != nil {
			tx.Rollback()
			return err
		}
		if ev.ID, err = res.LastInsertId(); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter returns events matching filter.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query("SELECT * FROM event ORDER BY id ASC")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		condition := "number"
		if filter.Range.Unit == Time {
			condition = "time"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if filter.Contract != nil {
		args = append(args, filter.Contract.Bytes())
		stmt += " AND contract = ? "
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if len(filter.Names) > 0 {
		stmt += " AND name IN (?" + strings.Repeat(", ?", len(filter.Names)-1) + ") "
		for _, n := range filter.Names {
			args = append(args, n)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY id DESC "
	} else {
		stmt += " ORDER BY id ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev       Event
			caller   []byte
			contract []byte
			account  []byte
			rawArgs  string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.Number,
			&ev.Time,
			&ev.Op,
			&caller,
			&contract,
			&ev.Name,
			&account,
			&rawArgs,
		); err != nil {
			return nil, err
		}
		ev.Caller = farm.BytesToAddress(caller)
		ev.Contract = farm.BytesToAddress(contract)
		ev.Account = farm.BytesToAddress(account)
		if err := json.Unmarshal([]byte(rawArgs), &ev.Args); err != nil {
			return nil, errors.Wrap(err, "decode event args")
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of stored events.
func (db *EventDB) Count() (uint64, error) {
	var n uint64
	if err := db.db.QueryRow("SELECT COUNT(*) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Path returns the db path.
func (db *EventDB) Path() string {
	return db.path
}

// SqliteVersion returns the version of the linked sqlite library.
func (db *EventDB) SqliteVersion() string {
	return db.sqliteVersion
}

// Close closes sqlite.
func (db *EventDB) Close() error {
	return db.db.Close()
}
