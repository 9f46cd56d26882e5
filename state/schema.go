// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/log"
)

// MetaBucket holds store wide metadata, e.g. the schema version.
const MetaBucket = kv.Bucket("m")

var schemaVersionKey = []byte("schema-version")

var logger = log.WithContext("pkg", "state")

// Migration upgrades persisted layout from Version-1 to Version.
type Migration struct {
	Version uint32
	Name    string
	Apply   func(store kv.Store) error
}

// Migrations is the ordered list of known migrations.
// The last entry defines SchemaVersion.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "initial layout",
		// contract storage under bucket "s", metadata under "m", runtime ticks under "r".
		Apply: func(kv.Store) error { return nil },
	},
}

// SchemaVersion is the layout version this build reads and writes.
var SchemaVersion = Migrations[len(Migrations)-1].Version

// ReadSchemaVersion returns the persisted schema version, 0 for a fresh store.
func ReadSchemaVersion(store kv.Getter) (uint32, error) {
	meta := MetaBucket.NewGetter(store)
	data, err := meta.Get(schemaVersionKey)
	if err != nil {
		if meta.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "read schema version")
	}
	if len(data) != 4 {
		return 0, errors.Errorf("corrupted schema version %x", data)
	}
	return binary.BigEndian.Uint32(data), nil
}

func writeSchemaVersion(store kv.Putter, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return MetaBucket.NewPutter(store).Put(schemaVersionKey, b[:])
}

// Migrate applies all migrations newer than the persisted version in order.
// progress, if not nil, is called after each applied migration with (done, total).
// A store written by a newer build is refused.
func Migrate(store kv.Store, migrations []Migration, progress func(done, total int)) (uint32, error) {
	current, err := ReadSchemaVersion(store)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return current, nil
	}
	latest := migrations[len(migrations)-1].Version
	if current > latest {
		return current, errors.Errorf("schema version %v is newer than supported %v", current, latest)
	}

	var pending []Migration
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	for i, m := range pending {
		logger.Info("applying migration", "version", m.Version, "name", m.Name)
		if err := m.Apply(store); err != nil {
			return current, errors.Wrapf(err, "migration %v (%v)", m.Version, m.Name)
		}
		if err := writeSchemaVersion(store, m.Version); err != nil {
			return current, errors.Wrap(err, "write schema version")
		}
		current = m.Version
		if progress != nil {
			progress(i+1, len(pending))
		}
	}
	return current, nil
}
