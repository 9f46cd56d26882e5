// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb provides the leveldb backed kv.Store.
package lvldb

import (
	"github.com/firofarm/chef/kv"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ kv.Closer = (*LevelDB)(nil)

// bulk writes are flushed when the batch grows past this size if auto flush is enabled.
const autoFlushSize = 256 * 1024

// Options options for creating level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
	ReadOnly               bool
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps level db impls.
type LevelDB struct {
	db *leveldb.DB
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, opts.ReadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return openLevelDB(storage.NewMemStorage(), Options{})
}

func openLevelDB(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := opts.CacheSize
	if cacheSize < 16 {
		cacheSize = 16
	}

	openFilesCacheCapacity := opts.OpenFilesCacheCapacity
	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
		ReadOnly:               opts.ReadOnly,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value fo give key.
func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

// Delete deletes the give key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Snapshot returns a consistent read view. It must be released.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	snap, err := ldb.db.GetSnapshot()
	if err != nil {
		return &struct {
			kv.GetFunc
			kv.HasFunc
			kv.IsNotFoundFunc
			kv.ReleaseFunc
		}{
			func([]byte) ([]byte, error) { return nil, err },
			func([]byte) (bool, error) { return false, err },
			ldb.IsNotFound,
			func() {},
		}
	}
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.ReleaseFunc
	}{
		func(key []byte) ([]byte, error) { return snap.Get(key, &readOpt) },
		func(key []byte) (bool, error) { return snap.Has(key, &readOpt) },
		ldb.IsNotFound,
		snap.Release,
	}
}

// Bulk creates a batch of writing ops, written atomically by Write.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{db: ldb.db, batch: &leveldb.Batch{}}
}

// Iterate creates an iterator over the range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

type bulk struct {
	db        *leveldb.DB
	batch     *leveldb.Batch
	autoFlush bool
}

func (b *bulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return b.maybeFlush()
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return b.maybeFlush()
}

func (b *bulk) EnableAutoFlush() {
	b.autoFlush = true
}

func (b *bulk) maybeFlush() error {
	if b.autoFlush && len(b.batch.Dump()) >= autoFlushSize {
		return b.Write()
	}
	return nil
}

func (b *bulk) Write() error {
	if b.batch.Len() == 0 {
		return nil
	}
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return err
	}
	b.batch.Reset()
	return nil
}
