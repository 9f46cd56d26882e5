// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/xenv"
)

var (
	chefAddr = farm.BytesToAddress([]byte("Chef"))
	alice    = farm.BytesToAddress([]byte("alice"))
	bob      = farm.BytesToAddress([]byte("bob"))
)

func newEvents() []*eventdb.Event {
	var events []*eventdb.Event
	for i := range 100 {
		acc := alice
		name := "Deposit"
		if i%2 == 1 {
			acc = bob
			name = "Withdraw"
		}
		events = append(events, eventdb.NewEvent("deposit", acc, &xenv.Event{
			Contract: chefAddr,
			Name:     name,
			Account:  acc,
			Number:   uint64(i),
			Time:     uint64(1000 + i*10),
			Args:     map[string]string{"pid": "0", "amount": "100"},
		}))
	}
	return events
}

func TestEventDB(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	n, err := db.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	events := newEvents()
	require.NoError(t, db.Insert(events))
	assert.Equal(t, int64(1), events[0].ID)
	n, err = db.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), n)
	assert.Equal(t, int64(100), events[99].ID)

	all, err := db.Filter(nil)
	require.NoError(t, err)
	require.Len(t, all, 100)
	assert.Equal(t, events[3], all[3])

	los, err := db.Filter(&eventdb.Filter{
		Range:   &eventdb.Range{Unit: eventdb.Number, From: 0, To: 10},
		Options: &eventdb.Options{Offset: 0, Limit: 5},
		Order:   eventdb.DESC,
		Account: &alice,
	})
	require.NoError(t, err)
	require.Len(t, los, 5)
	assert.Equal(t, uint64(10), los[0].Number)
	assert.Equal(t, uint64(2), los[4].Number)
	for _, ev := range los {
		assert.Equal(t, alice, ev.Account)
	}

	los, err = db.Filter(&eventdb.Filter{
		Range:    &eventdb.Range{Unit: eventdb.Time, From: 1000, To: 1095},
		Contract: &chefAddr,
		Names:    []string{"Withdraw"},
	})
	require.NoError(t, err)
	assert.Len(t, los, 5)

	los, err = db.Filter(&eventdb.Filter{Names: []string{"Deposit", "Withdraw"}})
	require.NoError(t, err)
	assert.Len(t, los, 100)

	other := farm.BytesToAddress([]byte("other"))
	los, err = db.Filter(&eventdb.Filter{Contract: &other})
	require.NoError(t, err)
	assert.Empty(t, los)
}

func TestEventDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := eventdb.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Insert(newEvents()[:3]))
	require.NoError(t, db.Close())

	db, err = eventdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	all, err := db.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.NotEmpty(t, db.SqliteVersion())
}
