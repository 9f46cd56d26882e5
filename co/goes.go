// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small goroutine helpers.
package co

import (
	"sync"
)

// Goes runs goroutines and waits for them on shutdown.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every goroutine started by Go returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every goroutine returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
