// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/state"
)

// migrateStore brings store to the current schema version. A bar is drawn on progress
// when it is not nil and there is something to apply.
func migrateStore(store kv.Store, progress io.Writer) (uint32, error) {
	current, err := state.ReadSchemaVersion(store)
	if err != nil {
		return 0, err
	}
	var bar *pb.ProgressBar
	if progress != nil && current < state.SchemaVersion {
		bar = pb.New(int(state.SchemaVersion - current)).SetMaxWidth(90)
		bar.Output = progress
		bar.Prefix("migrating")
		bar.Start()
		defer bar.Finish()
	}
	return state.Migrate(store, state.Migrations, func(done, _ int) {
		if bar != nil {
			bar.Set(done)
		}
	})
}

func migrateAction(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name), false)

	cfg, _, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx.String(dataDirFlag.Name), cfg)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(instanceDir, "main.db")); err != nil {
		return errors.Wrap(err, "no persisted state for this genesis")
	}
	db, err := openMainDB(instanceDir, normalizeCacheSize(ctx.Int(cacheFlag.Name)))
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := migrateStore(db, os.Stderr)
	if err != nil {
		return err
	}
	log.Info("schema up to date", "version", v)
	return nil
}
