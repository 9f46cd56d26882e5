// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"

	"github.com/firofarm/chef/runtime"
)

type TickProgress struct {
	Tick      uint64     `json:"tick"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy     bool          `json:"healthy"`
	Progress    *TickProgress `json:"progress"`
	Initialized bool          `json:"initialized"`
}

// Health watches the reward clock. A farm is healthy once its genesis is built
// and, when the reward clock is auto-advanced, the tick keeps moving.
type Health struct {
	lock         sync.RWMutex
	rt           *runtime.Runtime
	tickInterval time.Duration
	lastTick     uint64
	lastTickAt   time.Time
	initialized  bool
}

// New creates a health watcher. A zero tickInterval disables the progress check.
func New(rt *runtime.Runtime, tickInterval time.Duration) *Health {
	return &Health{
		rt:           rt,
		tickInterval: tickInterval,
		lastTick:     rt.BlockContext().Number,
		lastTickAt:   time.Now(),
	}
}

const delayBuffer = 5 * time.Second

// Run samples the reward clock every second until ctx is done.
func (h *Health) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.observe()
		}
	}
}

func (h *Health) observe() {
	tick := h.rt.BlockContext().Number
	h.lock.Lock()
	defer h.lock.Unlock()
	if tick != h.lastTick {
		h.lastTick = tick
		h.lastTickAt = time.Now()
	}
}

// Initialized marks the genesis as built.
func (h *Health) Initialized(v bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.initialized = v
}

func (h *Health) Status() *Status {
	h.observe()

	h.lock.RLock()
	defer h.lock.RUnlock()

	at := h.lastTickAt
	healthy := h.initialized &&
		(h.tickInterval == 0 || time.Since(h.lastTickAt) <= h.tickInterval+delayBuffer)

	return &Status{
		Healthy:     healthy,
		Progress:    &TickProgress{Tick: h.lastTick, Timestamp: &at},
		Initialized: h.initialized,
	}
}
