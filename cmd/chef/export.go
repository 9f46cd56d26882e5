// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/log"
)

const exportPageSize = 1000

func exportEventsAction(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name), false)

	cfg, _, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx.String(dataDirFlag.Name), cfg)
	if err != nil {
		return err
	}
	path := filepath.Join(instanceDir, "events.db")
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "no persisted events for this genesis")
	}
	db, err := openEventDB(instanceDir)
	if err != nil {
		return err
	}
	defer db.Close()

	out := io.Writer(os.Stdout)
	if p := ctx.String(outputFlag.Name); p != "" {
		f, err := os.Create(p)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	n, err := exportEvents(db, out, os.Stderr)
	if err != nil {
		return err
	}
	log.Info("events exported", "count", n)
	return nil
}

// exportEvents writes every event as one JSON line, reporting progress to progress when not nil.
func exportEvents(db *eventdb.EventDB, out io.Writer, progress io.Writer) (uint64, error) {
	total, err := db.Count()
	if err != nil {
		return 0, err
	}

	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New64(int64(total)).SetMaxWidth(90)
		bar.Output = progress
		bar.Start()
		defer bar.Finish()
	}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	var written uint64
	for {
		page, err := db.Filter(&eventdb.Filter{
			Options: &eventdb.Options{Offset: written, Limit: exportPageSize},
		})
		if err != nil {
			return written, err
		}
		for _, ev := range page {
			if err := enc.Encode(ev); err != nil {
				return written, err
			}
		}
		written += uint64(len(page))
		if bar != nil {
			bar.Add(len(page))
		}
		if len(page) < exportPageSize {
			break
		}
	}
	if err := w.Flush(); err != nil {
		return written, err
	}
	if written != total {
		return written, fmt.Errorf("exported %d of %d events", written, total)
	}
	return written, nil
}
