// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/metrics"
	"github.com/firofarm/chef/stackedmap"
	"github.com/pkg/errors"
	"github.com/qianbin/directcache"
)

// StorageBucket is the kv bucket holding committed contract storage.
const StorageBucket = kv.Bucket("s")

const defaultCacheSize = 16 * 1024 * 1024

var metricSlotAccess = metrics.LazyLoadCounterVec("state_slot_access_count", []string{"type"})

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr farm.Address
	key  farm.Bytes32
}

func (k storageKey) encode() []byte {
	return append(k.addr.Bytes(), k.key[:]...)
}

// State manages the contract storage of the farm.
// It's not safe for concurrent use; callers serialize access.
type State struct {
	db    kv.Store
	store kv.Store // db within StorageBucket
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
	cache *directcache.Cache // committed slots
}

// New create state object over the given store.
// cacheSize is the size in bytes of the committed slot cache, a default is used when <= 0.
func New(store kv.Store, cacheSize int) *State {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	s := &State{
		db:    store,
		store: StorageBucket.NewStore(store),
		cache: directcache.New(cacheSize),
	}
	s.sm = stackedmap.New(s.committedGetter)
	return s
}

// committedGetter implements stackedmap.MapGetter.
func (s *State) committedGetter(k storageKey) (rlp.RawValue, bool, error) {
	key := k.encode()
	var cached rlp.RawValue
	if s.cache.AdvGet(key, func(val []byte) {
		if len(val) > 0 {
			cached = bytes.Clone(val)
		}
	}, false) {
		metricSlotAccess().AddWithLabel(1, map[string]string{"type": "cache"})
		return cached, true, nil
	}
	metricSlotAccess().AddWithLabel(1, map[string]string{"type": "store"})
	data, err := s.store.Get(key)
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		data = nil
	}
	// empty slots are cached as empty values
	_ = s.cache.Set(key, data)
	return data, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr farm.Address, key farm.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr farm.Address, key farm.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value as Bytes32 for the given address and key.
func (s *State) GetStorage(addr farm.Address, key farm.Bytes32) (farm.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return farm.Bytes32{}, err
	}
	if len(raw) == 0 {
		return farm.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return farm.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, return hash of raw data
		return farm.Blake2b(raw), nil
	}
	return farm.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr farm.Address, key, value farm.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr farm.Address, key farm.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr farm.Address, key farm.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Change is a pending slot write.
type Change struct {
	Addr  farm.Address
	Key   farm.Bytes32
	Value rlp.RawValue
}

// Stage returns the net pending changes since last commit, sorted by address then key.
func (s *State) Stage() []Change {
	latest := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		latest[k] = v
		return true
	})
	changes := make([]Change, 0, len(latest))
	for k, v := range latest {
		changes = append(changes, Change{k.addr, k.key, v})
	}
	sort.Slice(changes, func(i, j int) bool {
		if c := bytes.Compare(changes[i].Addr[:], changes[j].Addr[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0
	})
	return changes
}

// Commit writes all pending changes into the store atomically and resets the journal.
// extra, if not nil, writes additional keys of the raw store within the same bulk.
func (s *State) Commit(extra func(kv.Putter) error) (int, error) {
	changes := s.Stage()

	bulk := s.db.Bulk()
	storage := StorageBucket.NewPutter(bulk)
	for _, c := range changes {
		k := storageKey{c.Addr, c.Key}.encode()
		var err error
		if len(c.Value) == 0 {
			err = storage.Delete(k)
		} else {
			err = storage.Put(k, c.Value)
		}
		if err != nil {
			return 0, &Error{errors.Wrap(err, "stage")}
		}
	}
	if extra != nil {
		if err := extra(bulk); err != nil {
			return 0, &Error{errors.Wrap(err, "extra")}
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{errors.Wrap(err, "write")}
	}
	for _, c := range changes {
		_ = s.cache.Set(storageKey{c.Addr, c.Key}.encode(), c.Value)
	}
	s.sm = stackedmap.New(s.committedGetter)
	return len(changes), nil
}
