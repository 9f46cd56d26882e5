// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket is a key prefix which splits one store into logical tables.
// The farm keeps contract storage, schema metadata and runtime ticks in
// separate buckets of the same leveldb.
type Bucket string

// Key returns the full key of k inside the bucket.
func (b Bucket) Key(k []byte) []byte {
	full := make([]byte, 0, len(b)+len(k))
	return append(append(full, b...), k...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.Key(key)) },
		func(key []byte) (bool, error) { return src.Has(b.Key(key)) },
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error { return src.Put(b.Key(key), val) },
		func(key []byte) error { return src.Delete(b.Key(key)) },
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Getter
				ReleaseFunc
			}{
				b.NewGetter(snapshot),
				snapshot.Release,
			}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				EnableAutoFlushFunc
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.EnableAutoFlush,
				bulk.Write,
			}
		},
		func(r Range) Iterator {
			r.Start = b.Key(r.Start)
			if len(r.Limit) == 0 {
				r.Limit = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.Limit = b.Key(r.Limit)
			}
			iter := src.Iterate(r)
			return &struct {
				FirstFunc
				LastFunc
				NextFunc
				PrevFunc
				KeyFunc
				ValueFunc
				ReleaseFunc
				ErrorFunc
			}{
				iter.First,
				iter.Last,
				iter.Next,
				iter.Prev,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
				iter.Release,
				iter.Error,
			}
		},
	}
}
