// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the tick sources the farm reads.
// A tick is either a block-like counter or a unix timestamp, the farm does not care which.
package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Clock is a read-only source of a non-decreasing tick.
type Clock interface {
	Now() uint64
}

// Func adapts a function to Clock.
type Func func() uint64

func (f Func) Now() uint64 { return f() }

// Manual is a clock moved only by explicit calls. Tests and devnets use it.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual creates a manual clock at start.
func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Moving backwards is refused.
func (m *Manual) Set(t uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t < m.now {
		return errors.Errorf("clock can't go backwards: %v < %v", t, m.now)
	}
	m.now = t
	return nil
}

// Advance moves the clock forward by d and returns the new tick.
func (m *Manual) Advance(d uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}

// Wall reads unix seconds of the system clock.
type Wall struct{}

func (Wall) Now() uint64 {
	return uint64(time.Now().Unix())
}

// Counter is a monotonic counter, like a block height.
// It's advanced explicitly or by Run at a fixed interval.
type Counter struct {
	n atomic.Uint64
}

// NewCounter creates a counter at start.
func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

func (c *Counter) Now() uint64 {
	return c.n.Load()
}

// Advance adds d and returns the new tick.
func (c *Counter) Advance(d uint64) uint64 {
	return c.n.Add(d)
}

// Set moves the counter to t. Moving backwards is refused.
func (c *Counter) Set(t uint64) error {
	for {
		cur := c.n.Load()
		if t < cur {
			return errors.Errorf("clock can't go backwards: %v < %v", t, cur)
		}
		if c.n.CompareAndSwap(cur, t) {
			return nil
		}
	}
}

// Run advances the counter by one every interval until ctx is done.
func (c *Counter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.n.Add(1)
		}
	}
}

// Settable is a clock that can be moved by an operator, used by the API on devnets.
type Settable interface {
	Clock
	Set(t uint64) error
	Advance(d uint64) uint64
}

var (
	_ Settable = (*Manual)(nil)
	_ Settable = (*Counter)(nil)
)
