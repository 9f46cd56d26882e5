// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes farm operations one at a time against the state.
// Each call runs under a checkpoint and is either committed as a whole or reverted.
package runtime

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/builtin/vesting"
	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/state"
	"github.com/firofarm/chef/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// TickBucket holds the last ticks seen by a committed call.
const TickBucket = kv.Bucket("r")

var (
	numberKey = []byte("number")
	timeKey   = []byte("time")
)

// Contracts are the farm contracts bound to the runtime state.
type Contracts struct {
	Chef    *chef.Chef
	Vesting *vesting.Vesting
	Locking *locking.Locking
	Tokens  *token.Ledger
}

// Options configures a runtime.
type Options struct {
	RewardClock   clock.Clock // drives accrual, defaults to a manual clock at 0
	ScheduleClock clock.Clock // drives vesting and lock maturity, defaults to the wall clock
	CacheSize     int
	EventDB       *eventdb.EventDB // optional
	Faucet        bool             // allow anyone to mint tokens
}

// Receipt describes a committed call.
type Receipt struct {
	Op     string           `json:"op"`
	Caller farm.Address     `json:"caller"`
	Number uint64           `json:"number"`
	Time   uint64           `json:"time"`
	Events []*eventdb.Event `json:"events"`
}

// Runtime serializes all calls on the farm state.
type Runtime struct {
	mu            sync.Mutex
	store         kv.Store
	state         *state.State
	contracts     *Contracts
	rewardClock   clock.Clock
	scheduleClock clock.Clock
	lastNumber    uint64
	lastTime      uint64
	events        *eventdb.EventDB
	faucet        bool
	feed          event.Feed
}

// New creates a runtime over store, restoring the last persisted ticks.
func New(store kv.Store, opts Options) (*Runtime, error) {
	if opts.RewardClock == nil {
		opts.RewardClock = clock.NewManual(0)
	}
	if opts.ScheduleClock == nil {
		opts.ScheduleClock = clock.Wall{}
	}
	st := state.New(store, opts.CacheSize)
	rt := &Runtime{
		store: store,
		state: st,
		contracts: &Contracts{
			Chef:    builtin.Chef.WithState(st),
			Vesting: builtin.Vesting.WithState(st),
			Locking: builtin.Locking.WithState(st),
			Tokens:  builtin.Tokens.WithState(st),
		},
		rewardClock:   opts.RewardClock,
		scheduleClock: opts.ScheduleClock,
		events:        opts.EventDB,
		faucet:        opts.Faucet,
	}

	ticks := TickBucket.NewGetter(store)
	var err error
	if rt.lastNumber, err = readTick(ticks, numberKey); err != nil {
		return nil, err
	}
	if rt.lastTime, err = readTick(ticks, timeKey); err != nil {
		return nil, err
	}
	return rt, nil
}

func readTick(g kv.Getter, key []byte) (uint64, error) {
	data, err := g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "read tick %s", key)
	}
	if len(data) != 8 {
		return 0, errors.Errorf("corrupted tick %s: %x", key, data)
	}
	return binary.BigEndian.Uint64(data), nil
}

func writeTick(p kv.Putter, key []byte, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return p.Put(key, b[:])
}

// RewardClock returns the clock driving accrual.
func (rt *Runtime) RewardClock() clock.Clock { return rt.rewardClock }

// ScheduleClock returns the clock driving vesting and lock maturity.
func (rt *Runtime) ScheduleClock() clock.Clock { return rt.scheduleClock }

// blockContext reads both clocks, never going behind the last committed ticks.
func (rt *Runtime) blockContext() *xenv.BlockContext {
	return &xenv.BlockContext{
		Number: max(rt.rewardClock.Now(), rt.lastNumber),
		Time:   max(rt.scheduleClock.Now(), rt.lastTime),
	}
}

// BlockContext returns the ticks the next call would run at.
func (rt *Runtime) BlockContext() *xenv.BlockContext {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.blockContext()
}

// Execute runs fn as caller. Every state change of fn is committed if it returns nil,
// and reverted otherwise.
func (rt *Runtime) Execute(caller farm.Address, op string, fn func(env *xenv.Environment, c *Contracts) error) (receipt *Receipt, err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	startTime := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			if reverts.IsRevertErr(err) {
				result = "revert"
			}
		}
		metricCallCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricCallDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"op": op})
	}()

	blockCtx := rt.blockContext()
	env := xenv.New(caller, blockCtx)
	checkpoint := rt.state.NewCheckpoint()

	if err := fn(env, rt.contracts); err != nil {
		rt.state.RevertTo(checkpoint)
		logger.Debug("call reverted", "op", op, "caller", caller, "err", err)
		return nil, err
	}

	if _, err := rt.state.Commit(func(p kv.Putter) error {
		ticks := TickBucket.NewPutter(p)
		if err := writeTick(ticks, numberKey, blockCtx.Number); err != nil {
			return err
		}
		return writeTick(ticks, timeKey, blockCtx.Time)
	}); err != nil {
		rt.state.RevertTo(checkpoint)
		logger.Error("failed to commit", "op", op, "err", err)
		return nil, err
	}
	rt.lastNumber, rt.lastTime = blockCtx.Number, blockCtx.Time

	receipt = &Receipt{
		Op:     op,
		Caller: caller,
		Number: blockCtx.Number,
		Time:   blockCtx.Time,
	}
	for _, ev := range env.Events() {
		receipt.Events = append(receipt.Events, eventdb.NewEvent(op, caller, ev))
	}
	if rt.events != nil {
		if err := rt.events.Insert(receipt.Events); err != nil {
			// state is committed, the event log is best effort
			logger.Warn("failed to store events", "op", op, "err", err)
		}
	}
	rt.observe(receipt.Events)
	if len(receipt.Events) > 0 {
		rt.feed.Send(receipt.Events)
	}
	logger.Debug("call committed", "op", op, "caller", caller, "number", blockCtx.Number, "time", blockCtx.Time, "events", len(receipt.Events))
	return receipt, nil
}

// Call runs fn against the current state and discards every change it makes.
func (rt *Runtime) Call(fn func(blockCtx *xenv.BlockContext, c *Contracts) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return fn(rt.blockContext(), rt.contracts)
}

// SubscribeEvents delivers the events of every committed call to ch.
// Receivers must keep up, a blocked channel stalls execution.
func (rt *Runtime) SubscribeEvents(ch chan<- []*eventdb.Event) event.Subscription {
	return rt.feed.Subscribe(ch)
}

// EventDB returns the event db, nil if events are not stored.
func (rt *Runtime) EventDB() *eventdb.EventDB {
	return rt.events
}
